package util

import (
	"strings"
	"testing"
)

func TestValidateLocationID_Valid(t *testing.T) {
	valid := []string{
		"7gQ2xLoc",
		"ab",
		"loc_1",
		"location-with-hyphens",
		"UPPERCASE",
		"MiXeD123",
		"123numeric",
	}
	for _, id := range valid {
		t.Run(id, func(t *testing.T) {
			if err := ValidateLocationID(id); err != nil {
				t.Errorf("expected %q to be valid, got error: %v", id, err)
			}
		})
	}
}

func TestValidateLocationID_Invalid(t *testing.T) {
	tests := []struct {
		id      string
		wantMsg string
	}{
		{"", "at least 2 characters"},
		{"a", "at least 2 characters"},
		{"loc 1", "invalid characters"},
		{"loc/1", "invalid characters"},
		{"../etc", "invalid characters"},
		{"loc@crm", "invalid characters"},
		{"loc\t1", "invalid characters"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateLocationID(tt.id)
			if err == nil {
				t.Errorf("expected %q to be invalid, got nil", tt.id)
				return
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := NormalizeKey("  Default-Location "); got != "default-location" {
		t.Errorf("NormalizeKey = %q, want %q", got, "default-location")
	}
}
