// Package passwd scores password strength for client-side prompts. The
// score is advisory; the server never rejects a password based on it.
package passwd

import "unicode"

// Strength is a coarse password score from 0 (unusable) to 4 (strong).
type Strength int

const (
	VeryWeak Strength = iota
	Weak
	Fair
	Good
	Strong
)

// Label returns the display name for the score.
func (s Strength) Label() string {
	switch s {
	case VeryWeak:
		return "very weak"
	case Weak:
		return "weak"
	case Fair:
		return "fair"
	case Good:
		return "good"
	case Strong:
		return "strong"
	}
	return "unknown"
}

// Score rates a password by length and character class variety. Four
// classes count: lowercase, uppercase, digits, and everything else.
func Score(password string) Strength {
	if len(password) < 8 {
		return VeryWeak
	}

	var lower, upper, digit, other bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}

	classes := 0
	for _, ok := range []bool{lower, upper, digit, other} {
		if ok {
			classes++
		}
	}

	score := classes - 1
	if len(password) >= 12 {
		score++
	}
	if score > int(Strong) {
		score = int(Strong)
	}
	if score < int(Weak) {
		score = int(Weak)
	}
	return Strength(score)
}
