package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhoneNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		region string
		want   bool
	}{
		{"bulgarian mobile with country code", "+359888111222", "BG", true},
		{"bulgarian mobile in national format", "0888111222", "BG", true},
		{"foreign number with explicit country code", "+14155552671", "BG", true},
		{"too short", "12345", "BG", false},
		{"letters", "abcdef", "BG", false},
		{"empty", "", "BG", false},
		{"placeholder zeros", "0000000000", "BG", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPhoneNumber(tt.number, tt.region))
		})
	}
}
