package bridgewatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// StatusCompleted is the terminal success status of a bridge transaction.
	StatusCompleted = "COMPLETED"

	// StatusUnknown is reported when a transaction carries no status field.
	StatusUnknown = "UNKNOWN"

	// notAvailable is displayed for missing hash and amount fields.
	notAvailable = "N/A"

	// hashDisplayLen is how many characters of a transaction hash are printed.
	hashDisplayLen = 16
)

// Transaction is a single bridge transaction as reported by the status API.
//
// Decoding is lenient: fields that are missing or of an unexpected type never
// cause an error. A non-string status or hash is kept as its JSON text so it
// can still be displayed, and it will never compare equal to [StatusCompleted].
type Transaction struct {
	// Status is the transaction status, or [StatusUnknown] if absent.
	Status string

	// TransactionHash is the on-chain hash. Empty if absent.
	TransactionHash string

	// Amount is the transferred amount as text. Empty if absent.
	Amount string

	// Raw is the transaction object exactly as returned by the server.
	Raw json.RawMessage
}

// StatusResponse is the decoded body of a bridge status request.
type StatusResponse struct {
	// Transactions are kept in server order. No ordering is assumed.
	Transactions []Transaction
}

// ParseStatusResponse decodes a status body.
//
// The body must be a UTF-8 JSON object. A missing, null or non-array
// "transactions" field yields an empty transaction list rather than an error.
func ParseStatusResponse(body []byte) (StatusResponse, error) {
	if !utf8.Valid(body) {
		return StatusResponse{}, errors.New("failed to decode response: body is not valid UTF-8")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return StatusResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if top == nil {
		return StatusResponse{}, errors.New("failed to decode response: body is not a JSON object")
	}

	var items []json.RawMessage
	if raw, ok := top["transactions"]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			// not an array, treat as no transactions
			items = nil
		}
	}

	resp := StatusResponse{Transactions: make([]Transaction, 0, len(items))}
	for _, item := range items {
		resp.Transactions = append(resp.Transactions, decodeTransaction(item))
	}
	return resp, nil
}

// decodeTransaction extracts the known fields from a single transaction object.
func decodeTransaction(raw json.RawMessage) Transaction {
	tx := Transaction{
		Status: StatusUnknown,
		Raw:    append(json.RawMessage(nil), raw...),
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return tx
	}

	if s, ok := fieldText(fields["status"]); ok {
		tx.Status = s
	}
	tx.TransactionHash, _ = fieldText(fields["transactionHash"])
	tx.Amount, _ = fieldText(fields["amount"])

	return tx
}

// fieldText renders a JSON value as display text. Strings are unquoted, other
// values keep their compact JSON form. Absent and null values report false.
func fieldText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw), true
	}
	return buf.String(), true
}

// DisplayHash returns the first 16 characters of the hash followed by an
// ellipsis, or "N/A" when the hash is missing.
func (tx Transaction) DisplayHash() string {
	return TruncateHash(tx.TransactionHash)
}

// DisplayAmount returns the amount, or "N/A" when it is missing.
func (tx Transaction) DisplayAmount() string {
	if tx.Amount == "" {
		return notAvailable
	}
	return tx.Amount
}

// PrettyJSON returns the raw transaction indented by two spaces, preserving
// the server's key order.
func (tx Transaction) PrettyJSON() string {
	if len(tx.Raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, tx.Raw, "", "  "); err != nil {
		return string(tx.Raw)
	}
	return buf.String()
}

// TruncateHash shortens a hash for display.
//
// Empty hashes are shown as "N/A". Otherwise the first 16 characters are
// kept and "..." is appended.
func TruncateHash(hash string) string {
	if hash == "" {
		return notAvailable
	}
	runes := []rune(hash)
	if len(runes) > hashDisplayLen {
		runes = runes[:hashDisplayLen]
	}
	return string(runes) + "..."
}
