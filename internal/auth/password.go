package auth

import (
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// EmailPattern is the email shape shared with the web client: non-blank
// local part and a dotted domain.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail returns the canonical form of an address. Every store
// write and lookup goes through this, so matching is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Password policy. Go's RE2 engine has no lookahead, so each required
// character class is a pattern of its own; the whole password is also
// restricted to the policy alphabet.
var (
	passwordAlphabet  = regexp.MustCompile(`^[A-Za-z0-9@$!%*?&#]+$`)
	passwordLowercase = regexp.MustCompile(`[a-z]`)
	passwordUppercase = regexp.MustCompile(`[A-Z]`)
	passwordDigit     = regexp.MustCompile(`[0-9]`)
	passwordSpecial   = regexp.MustCompile(`[@$!%*?&#]`)
)

const MinPasswordLength = 8

// WeakPasswordMessage is the client-facing text for any policy violation.
const WeakPasswordMessage = "Password must contain at least 8 characters, including uppercase, lowercase, number, and special character (@$!%*?&#)"

// ValidPassword reports whether password satisfies the policy: minimum
// length, only characters from the policy alphabet, and one character from
// each required class.
func ValidPassword(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}

	return passwordAlphabet.MatchString(password) &&
		passwordLowercase.MatchString(password) &&
		passwordUppercase.MatchString(password) &&
		passwordDigit.MatchString(password) &&
		passwordSpecial.MatchString(password)
}

// HashPassword derives a bcrypt hash from the plaintext. The cost and salt
// are embedded in the hash itself, nothing else needs to be stored.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash. A
// malformed hash verifies as false rather than failing.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
