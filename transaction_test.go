package bridgewatch

import (
	"strings"
	"testing"
)

func TestParseStatusResponse(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantErr      bool
		wantStatuses []string
	}{
		{
			name:         "two transactions in server order",
			body:         `{"transactions":[{"status":"PENDING"},{"status":"COMPLETED"}]}`,
			wantStatuses: []string{"PENDING", "COMPLETED"},
		},
		{
			name:         "missing transactions field",
			body:         `{"address":"abc"}`,
			wantStatuses: []string{},
		},
		{
			name:         "null transactions",
			body:         `{"transactions":null}`,
			wantStatuses: []string{},
		},
		{
			name:         "transactions is not a list",
			body:         `{"transactions":{"status":"COMPLETED"}}`,
			wantStatuses: []string{},
		},
		{
			name:         "missing status falls back to UNKNOWN",
			body:         `{"transactions":[{"amount":"5"}]}`,
			wantStatuses: []string{StatusUnknown},
		},
		{
			name:         "non-object element",
			body:         `{"transactions":["COMPLETED", 42]}`,
			wantStatuses: []string{StatusUnknown, StatusUnknown},
		},
		{
			name:         "non-string status is kept as JSON text",
			body:         `{"transactions":[{"status":3}]}`,
			wantStatuses: []string{"3"},
		},
		{
			name:    "invalid JSON",
			body:    `{"transactions":[`,
			wantErr: true,
		},
		{
			name:    "top level array",
			body:    `[{"status":"COMPLETED"}]`,
			wantErr: true,
		},
		{
			name:    "invalid UTF-8",
			body:    "{\"transactions\":[{\"status\":[\"\xff\"]}]}",
			wantErr: true,
		},
		{
			name:    "null body",
			body:    `null`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseStatusResponse([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseStatusResponse() expected error, got nil")
				}
				if !strings.Contains(err.Error(), "failed to decode response") {
					t.Errorf("error = %v, want it to mention 'failed to decode response'", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatusResponse() error = %v", err)
			}

			if len(resp.Transactions) != len(tt.wantStatuses) {
				t.Fatalf("len(Transactions) = %d, want %d", len(resp.Transactions), len(tt.wantStatuses))
			}
			for i, want := range tt.wantStatuses {
				if got := resp.Transactions[i].Status; got != want {
					t.Errorf("Transactions[%d].Status = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestParseStatusResponse_Fields(t *testing.T) {
	body := `{"transactions":[
		{"status":"COMPLETED","transactionHash":"0xabcdef0123456789abcdef","amount":"12.5"},
		{"status":"PENDING","amount":1000000},
		{"status":"PENDING","transactionHash":null,"amount":null}
	]}`

	resp, err := ParseStatusResponse([]byte(body))
	if err != nil {
		t.Fatalf("ParseStatusResponse() error = %v", err)
	}

	tests := []struct {
		idx        int
		wantHash   string
		wantAmount string
	}{
		{0, "0xabcdef01234567...", "12.5"},
		{1, "N/A", "1000000"},
		{2, "N/A", "N/A"},
	}

	for _, tt := range tests {
		tx := resp.Transactions[tt.idx]
		if got := tx.DisplayHash(); got != tt.wantHash {
			t.Errorf("Transactions[%d].DisplayHash() = %q, want %q", tt.idx, got, tt.wantHash)
		}
		if got := tx.DisplayAmount(); got != tt.wantAmount {
			t.Errorf("Transactions[%d].DisplayAmount() = %q, want %q", tt.idx, got, tt.wantAmount)
		}
	}

	if resp.Transactions[0].TransactionHash != "0xabcdef0123456789abcdef" {
		t.Errorf("TransactionHash = %q, want full hash", resp.Transactions[0].TransactionHash)
	}
}

func TestTruncateHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
		want string
	}{
		{"missing", "", "N/A"},
		{"longer than sixteen", "0x1234567890abcdef1234", "0x1234567890abcd..."},
		{"exactly sixteen", "0123456789abcdef", "0123456789abcdef..."},
		{"shorter", "0xabc", "0xabc..."},
		{"multibyte counts characters", "ääääääääääääääääää", "ääääääääääääääää..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateHash(tt.hash); got != tt.want {
				t.Errorf("TruncateHash(%q) = %q, want %q", tt.hash, got, tt.want)
			}
		})
	}
}

func TestTransaction_PrettyJSONPreservesKeyOrder(t *testing.T) {
	resp, err := ParseStatusResponse([]byte(`{"transactions":[{"status":"COMPLETED","amount":"1","fromChainId":"1151111081099710"}]}`))
	if err != nil {
		t.Fatalf("ParseStatusResponse() error = %v", err)
	}

	want := "{\n  \"status\": \"COMPLETED\",\n  \"amount\": \"1\",\n  \"fromChainId\": \"1151111081099710\"\n}"
	if got := resp.Transactions[0].PrettyJSON(); got != want {
		t.Errorf("PrettyJSON() =\n%s\nwant\n%s", got, want)
	}

	if got := (Transaction{}).PrettyJSON(); got != "{}" {
		t.Errorf("PrettyJSON() of empty transaction = %q, want {}", got)
	}
}
