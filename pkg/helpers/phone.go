package helpers

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ValidPhoneNumber reports whether the input is a valid phone number for the
// given default region. Numbers with an international prefix are validated
// against their own country, everything else against region.
func ValidPhoneNumber(number, region string) bool {
	if strings.TrimSpace(number) == "" {
		return false
	}
	parsed, err := phonenumbers.Parse(number, region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(parsed)
}
