package pkg

import (
	"regexp"
	"strings"
)

var (
	nonDigits     = regexp.MustCompile(`\D`)
	ugandanNumber = regexp.MustCompile(`^(256|0)\d{9}$`)
)

// NormalizePhone strips everything but digits so "+256 771-999302" and
// "0771999302" compare equal after validation.
func NormalizePhone(phone string) string {
	return nonDigits.ReplaceAllString(strings.TrimSpace(phone), "")
}

// IsValidUgandanPhone accepts local (07XXXXXXXX) and international
// (256XXXXXXXXX) forms of an already-normalized number.
func IsValidUgandanPhone(normalized string) bool {
	return ugandanNumber.MatchString(normalized)
}
