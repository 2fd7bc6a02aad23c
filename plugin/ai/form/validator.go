package form

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// minNameLength and maxNameLength bound the normalized full name.
	minNameLength = 2
	maxNameLength = 100

	// minPhoneDigits is the plausibility floor for a phone number.
	minPhoneDigits = 7
)

var (
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	nonDigitPattern = regexp.MustCompile(`\D`)
)

// validateName normalizes a full name to title case.
// Returns the normalized value, or a corrective hint when invalid.
func validateName(text string) (value string, hint string, ok bool) {
	parts := strings.Fields(text)
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	cleaned := strings.Join(parts, " ")
	if utf8.RuneCountInString(cleaned) < minNameLength {
		return "", "Please provide your full name.", false
	}
	if utf8.RuneCountInString(cleaned) > maxNameLength {
		return "", "That name looks too long. Please provide your full name.", false
	}
	return cleaned, "", true
}

// validatePhone normalizes a phone number to +<cc> nnn-nnn-nnnn form.
func validatePhone(text string) (value string, hint string, ok bool) {
	digits := nonDigitPattern.ReplaceAllString(text, "")
	if len(digits) < minPhoneDigits {
		return "", fmt.Sprintf("Please provide a valid phone number with at least %d digits.", minPhoneDigits), false
	}

	switch {
	case len(digits) == 10:
		return fmt.Sprintf("+1 %s-%s-%s", digits[0:3], digits[3:6], digits[6:]), "", true
	case len(digits) > 10:
		n := len(digits)
		return fmt.Sprintf("+%s %s-%s-%s", digits[:n-10], digits[n-10:n-7], digits[n-7:n-4], digits[n-4:]), "", true
	default:
		// Local numbers without an area code keep a bare grouped form.
		return fmt.Sprintf("%s-%s", digits[:len(digits)-4], digits[len(digits)-4:]), "", true
	}
}

// validateEmail checks the local@domain shape and lowercases the address.
func validateEmail(text string) (value string, hint string, ok bool) {
	text = strings.TrimSpace(text)
	if !emailPattern.MatchString(text) {
		return "", "That doesn't look like a valid email. Could you recheck it?", false
	}
	return strings.ToLower(text), "", true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
