package bridgewatch

// Matcher reports whether a [Transaction] is the one the monitor waits for.
//
// Matchers should be pure functions of the transaction. They are called
// within a panic recovery boundary: a panicking matcher turns the current
// iteration into an error with a correlation ID, and polling continues.
type Matcher func(tx Transaction) bool

// StatusIs returns a [Matcher] that matches transactions whose status equals
// status exactly. The comparison is case-sensitive, so "completed" does not
// match [StatusCompleted].
//
// Example:
//
//	matcher := bridgewatch.StatusIs("FAILED")
func StatusIs(status string) Matcher {
	return func(tx Transaction) bool {
		return tx.Status == status
	}
}

// AnyOf returns a [Matcher] that matches when any of the given matchers does.
// Matchers are tried in order and nil entries are skipped.
//
// With no matchers, AnyOf matches nothing.
//
// Example:
//
//	// stop on success or on a terminal failure
//	matcher := bridgewatch.AnyOf(
//	    bridgewatch.StatusIs(bridgewatch.StatusCompleted),
//	    bridgewatch.StatusIs("FAILED"),
//	)
func AnyOf(matchers ...Matcher) Matcher {
	return func(tx Transaction) bool {
		for _, m := range matchers {
			if m != nil && m(tx) {
				return true
			}
		}
		return false
	}
}

// DefaultMatcher matches transactions with status [StatusCompleted].
var DefaultMatcher = StatusIs(StatusCompleted)
