package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+256 771-999302", "256771999302"},
		{"0771999302", "0771999302"},
		{" 0771 999 302 ", "0771999302"},
		{"(256) 771 999302", "256771999302"},
		{"", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizePhone(tc.in), "input %q", tc.in)
	}
}

func TestIsValidUgandanPhone(t *testing.T) {
	valid := []string{"256771999302", "0771999302"}
	for _, number := range valid {
		assert.True(t, IsValidUgandanPhone(number), "expected %q to be valid", number)
	}

	invalid := []string{
		"",
		"771999302",      // missing prefix
		"25677199930",    // too short
		"2567719993021",  // too long
		"1771999302",     // wrong country
		"+256771999302",  // not normalized
		"256 771 999302", // not normalized
	}
	for _, number := range invalid {
		assert.False(t, IsValidUgandanPhone(number), "expected %q to be invalid", number)
	}
}

func TestNewTrackingID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewTrackingID()
		assert.Regexp(t, `^TRK-[0-9A-F]{8}$`, id)
		assert.False(t, seen[id], "duplicate tracking id %s", id)
		seen[id] = true
	}
}
