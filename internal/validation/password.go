package validation

import (
	"regexp"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var (
	upperRe  = regexp.MustCompile(`[A-Z]`)
	lowerRe  = regexp.MustCompile(`[a-z]`)
	digitRe  = regexp.MustCompile(`\d`)
	symbolRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

var (
	strengthLabels  = [...]string{"", "Very Weak", "Weak", "Fair", "Strong"}
	strengthClasses = [...]string{"", "very-weak", "weak", "fair", "strong"}
)

// Strength is a 0..4 password score with its display label and style class.
type Strength struct {
	Score int    `json:"score"`
	Label string `json:"label"`
	Class string `json:"class"`
}

// PasswordStrength scores pw: one point each for length >= 6 and >= 8, and
// one per character class present, capped at 4.
func PasswordStrength(pw string) Strength {
	score := PasswordScore(pw)
	return Strength{Score: score, Label: strengthLabels[score], Class: strengthClasses[score]}
}

// PasswordScore is the numeric part of PasswordStrength.
func PasswordScore(pw string) int {
	if pw == "" {
		return 0
	}
	score := 0
	n := utf8.RuneCountInString(pw)
	if n >= 6 {
		score++
	}
	if n >= 8 {
		score++
	}
	for _, re := range []*regexp.Regexp{upperRe, lowerRe, digitRe, symbolRe} {
		if re.MatchString(pw) {
			score++
		}
	}
	if score > 4 {
		score = 4
	}
	return score
}

// PasswordsMatch reports whether the confirmation equals the password.
func PasswordsMatch(password, confirm string) bool {
	return password == confirm
}
