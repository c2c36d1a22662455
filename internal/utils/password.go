package utils

import (
	"strconv"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// PasswordPolicy is the strength rule applied on registration and password resets.
type PasswordPolicy struct {
	MinLength         int
	RequireComplexity bool
}

// Check returns one message per violated rule; an empty slice means the password is accepted.
func (p PasswordPolicy) Check(plain string) []string {
	var problems []string
	if len([]rune(plain)) < p.MinLength {
		problems = append(problems, "Password must be at least "+strconv.Itoa(p.MinLength)+" characters long")
	}
	// bcrypt silently truncates past 72 bytes
	if len(plain) > 72 {
		problems = append(problems, "Password must be at most 72 bytes long")
	}
	if !p.RequireComplexity {
		return problems
	}
	var upper, lower, digit, symbol bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !upper {
		problems = append(problems, "Password must contain an uppercase letter")
	}
	if !lower {
		problems = append(problems, "Password must contain a lowercase letter")
	}
	if !digit {
		problems = append(problems, "Password must contain a number")
	}
	if !symbol {
		problems = append(problems, "Password must contain a special character")
	}
	return problems
}
