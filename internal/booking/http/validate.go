package http

import (
	"net/mail"
	"strings"
	"unicode"
)

// passwordProblems checks a candidate password against the account policy and
// returns every violated rule, one message each.
func passwordProblems(pw string) []string {
	var problems []string

	if len(pw) < 8 {
		problems = append(problems, "password must be at least 8 characters long")
	}

	var lower, upper, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if !lower {
		problems = append(problems, "password must contain a lowercase letter")
	}
	if !upper {
		problems = append(problems, "password must contain an uppercase letter")
	}
	if !digit {
		problems = append(problems, "password must contain a digit")
	}
	if !special {
		problems = append(problems, "password must contain a special character")
	}
	return problems
}

// checkPassword collapses the policy result into a single description, empty
// when the password passes.
func checkPassword(pw string) string {
	return strings.Join(passwordProblems(pw), "; ")
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
