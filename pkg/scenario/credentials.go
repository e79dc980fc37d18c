package scenario

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Credentials identify the throwaway account a login run registers.
type Credentials struct {
	Email    string
	Password string
}

// CredentialGenerator mints a fresh email per run:
// test_<unix-seconds>_<8 hex>@<domain>. The hex part is random so runs
// started within the same second still get distinct addresses.
type CredentialGenerator struct {
	domain   string
	password string

	now    func() time.Time
	suffix func() string
}

// NewCredentialGenerator creates a generator for the given email domain and
// fixed password.
func NewCredentialGenerator(domain, password string) *CredentialGenerator {
	return &CredentialGenerator{
		domain:   domain,
		password: password,
		now:      time.Now,
		suffix:   randomSuffix,
	}
}

// Next returns a new set of credentials.
func (g *CredentialGenerator) Next() Credentials {
	return Credentials{
		Email:    fmt.Sprintf("test_%d_%s@%s", g.now().Unix(), g.suffix(), g.domain),
		Password: g.password,
	}
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
