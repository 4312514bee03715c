package ledger

import (
	"github.com/tellerd-dev/tellerd/internal/model"
)

// Authenticator simulates an authentication backend. The outcome is a
// uniform coin flip independent of tier: synthetic test scaffolding standing
// in for a real verifier, not business logic.
type Authenticator struct {
	rand Rand
}

// NewAuthenticator creates an Authenticator over the given randomness source.
func NewAuthenticator(rnd Rand) *Authenticator {
	return &Authenticator{rand: rnd}
}

// Simulate reports whether the holder passed the given tier.
func (a *Authenticator) Simulate(_ model.AuthTier) bool {
	return a.rand.Intn(2) == 0
}
