package service

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrPhoneFormat = errors.New("invalid phone number format")
	ErrPhoneLength = errors.New("invalid phone number length")
	ErrPhoneSpam   = errors.New("phone number looks fake")
)

const (
	minPhoneLength = 10
	maxPhoneLength = 16
	// столько одинаковых цифр подряд в начале номера считается фейком
	repeatedDigitRun = 10
)

var (
	phoneShape     = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	phoneNonDigits = regexp.MustCompile(`[^\d+]`)
	spamPatterns   = []*regexp.Regexp{
		regexp.MustCompile(`^\+1{10,}`),
		regexp.MustCompile(`^\+0+`),
		regexp.MustCompile(`^\+1234567890`),
	}
)

// NormalizePhone приводит номер к виду +<цифры>.
// 11 цифр с ведущей 8 или 7 считаются российским номером и получают +7.
func NormalizePhone(raw string) string {
	cleaned := phoneNonDigits.ReplaceAllString(raw, "")

	switch {
	case len(cleaned) == 11 && strings.HasPrefix(cleaned, "8"):
		return "+7" + cleaned[1:]
	case len(cleaned) == 11 && strings.HasPrefix(cleaned, "7"):
		return "+" + cleaned
	case !strings.HasPrefix(cleaned, "+"):
		return "+" + cleaned
	}
	return cleaned
}

// ValidatePhoneNumber нормализует номер и проверяет его форму, длину и стоп-лист.
func ValidatePhoneNumber(raw string) (string, error) {
	phone := NormalizePhone(raw)

	if !phoneShape.MatchString(phone) {
		return "", ErrPhoneFormat
	}
	if len(phone) < minPhoneLength || len(phone) > maxPhoneLength {
		return "", ErrPhoneLength
	}
	if isSpamPhone(phone) {
		return "", ErrPhoneSpam
	}
	return phone, nil
}

func isSpamPhone(phone string) bool {
	for _, re := range spamPatterns {
		if re.MatchString(phone) {
			return true
		}
	}
	return hasLeadingRun(strings.TrimPrefix(phone, "+"), repeatedDigitRun)
}

// hasLeadingRun true, если первые n символов совпадают с первым.
func hasLeadingRun(digits string, n int) bool {
	if len(digits) < n {
		return false
	}
	for i := 1; i < n; i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
