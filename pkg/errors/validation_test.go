package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid uuid", "1b4e28ba-2fa1-11d2-883f-0016d3cca427", false},
		{"valid simple", "journey-1", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"control character", "journey\x00one", true},
		{"whitespace", "journey one", true},
		{"newline", "journey\none", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidInput {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateOrderedIDs(t *testing.T) {
	tests := []struct {
		name     string
		ids      []string
		wantErr  bool
		wantCode Code
	}{
		{"valid", []string{"a", "b", "c"}, false, ""},
		{"empty list", nil, true, ErrCodeInvalidOrder},
		{"duplicate", []string{"a", "b", "a"}, true, ErrCodeInvalidOrder},
		{"invalid id", []string{"a", ""}, true, ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrderedIDs(tt.ids)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateOrderedIDs(%v) error = %v, wantErr %v", tt.ids, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != tt.wantCode {
				t.Errorf("code = %v, want %v", GetCode(err), tt.wantCode)
			}
		})
	}
}
