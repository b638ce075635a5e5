package bridgewatch

import (
	"fmt"
	"io"
	"time"
)

// Reporter writes human-readable session progress.
//
// Output is intended for a terminal, not for machine parsing. Structured
// operational logs go through the monitor's [slog.Logger] instead.
type Reporter struct {
	w io.Writer
}

// NewReporter creates a [Reporter] writing to w. A nil writer discards output.
func NewReporter(w io.Writer) *Reporter {
	if w == nil {
		w = io.Discard
	}
	return &Reporter{w: w}
}

// Banner prints the session header.
func (r *Reporter) Banner(start time.Time, address string, interval, maxDuration time.Duration) {
	fmt.Fprintf(r.w, "Starting bridge monitoring at %s\n", start.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.w, "Address: %s\n", address)
	fmt.Fprintf(r.w, "Will check every %s for up to %.1f minutes\n\n", interval, maxDuration.Minutes())
}

// Checking prints the header line of an iteration.
func (r *Reporter) Checking(iteration int, at time.Time, elapsed time.Duration) {
	fmt.Fprintf(r.w, "[%d] Checking at %s (elapsed: %.1fs)...\n", iteration, at.Format("15:04:05"), elapsed.Seconds())
}

// TransactionCount prints how many transactions the response held.
func (r *Reporter) TransactionCount(n int) {
	fmt.Fprintf(r.w, "    Found %d transaction(s)\n", n)
	if n == 0 {
		fmt.Fprintln(r.w, "    (no transactions yet)")
	}
}

// Transaction prints one transaction line. index is zero-based.
func (r *Reporter) Transaction(index int, tx Transaction) {
	fmt.Fprintf(r.w, "    Tx #%d: status=%s, hash=%s, amount=%s\n",
		index+1, tx.Status, tx.DisplayHash(), tx.DisplayAmount())
}

// Error prints a non-fatal iteration error.
func (r *Reporter) Error(err error) {
	fmt.Fprintf(r.w, "    ERROR: %v\n", err)
}

// Success prints the matched transaction in full.
func (r *Reporter) Success(tx Transaction) {
	fmt.Fprintf(r.w, "\n✓ SUCCESS: Found %s transaction!\n", tx.Status)
	fmt.Fprintln(r.w, "  Full transaction data:")
	fmt.Fprintln(r.w, tx.PrettyJSON())
}

// Timeout prints the final line of a session that found no match.
func (r *Reporter) Timeout(maxDuration time.Duration) {
	fmt.Fprintf(r.w, "\n✗ TIMEOUT: No %s transaction found after %.1f minutes\n", StatusCompleted, maxDuration.Minutes())
}
