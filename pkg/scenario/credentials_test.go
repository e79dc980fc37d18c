package scenario

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var emailSyntax = regexp.MustCompile(`^test_\d+_[0-9a-f]{8}@example\.com$`)

func TestCredentialGenerator_Syntax(t *testing.T) {
	gen := NewCredentialGenerator("example.com", "password123")

	creds := gen.Next()
	assert.Regexp(t, emailSyntax, creds.Email)
	assert.Equal(t, "password123", creds.Password)
}

func TestCredentialGenerator_UniqueWithinSameSecond(t *testing.T) {
	gen := NewCredentialGenerator("example.com", "password123")
	fixed := time.Unix(1700000000, 0)
	gen.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		email := gen.Next().Email
		assert.Regexp(t, emailSyntax, email)
		assert.False(t, seen[email], "duplicate email %s", email)
		seen[email] = true
	}
}

func TestCredentialGenerator_Deterministic(t *testing.T) {
	gen := NewCredentialGenerator("school.test", "pw")
	gen.now = func() time.Time { return time.Unix(1712345678, 0) }
	gen.suffix = func() string { return "0a1b2c3d" }

	assert.Equal(t, Credentials{Email: "test_1712345678_0a1b2c3d@school.test", Password: "pw"}, gen.Next())
}
