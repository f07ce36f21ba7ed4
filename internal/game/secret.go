package game

import "github.com/lox/liarspoker/internal/randutil"

const (
	// SecretMin and SecretMax bound the hidden secrets dealt at join.
	SecretMin = 10000
	SecretMax = 99999

	// SecretDigits is the decimal width of every secret.
	SecretDigits = 5
)

// SecretSource deals hidden secrets. Implementations must be
// deterministic: the same seed always yields the same secret, and
// results must fall within [SecretMin, SecretMax]. The manager derives
// a fresh seed per join, so implementations can stay stateless.
type SecretSource interface {
	GenerateSecret(seed int64) int
}

// pcgSecrets derives each secret from its seed through a fresh PCG
// stream.
type pcgSecrets struct{}

// NewSecretSource returns the production secret source.
func NewSecretSource() SecretSource {
	return pcgSecrets{}
}

func (pcgSecrets) GenerateSecret(seed int64) int {
	rng := randutil.New(seed)
	return SecretMin + rng.IntN(SecretMax-SecretMin+1)
}
