package game

import "testing"

func TestSecretSourceRange(t *testing.T) {
	t.Parallel()

	source := NewSecretSource()
	for seed := int64(0); seed < 1000; seed++ {
		secret := source.GenerateSecret(seed)
		if secret < SecretMin || secret > SecretMax {
			t.Fatalf("GenerateSecret(%d) = %d, outside [%d, %d]", seed, secret, SecretMin, SecretMax)
		}
	}
}

func TestSecretSourceDeterministic(t *testing.T) {
	t.Parallel()

	source := NewSecretSource()
	for _, seed := range []int64{0, 1, 42, -7, 1 << 40} {
		first := source.GenerateSecret(seed)
		second := source.GenerateSecret(seed)
		if first != second {
			t.Errorf("GenerateSecret(%d) not deterministic: %d then %d", seed, first, second)
		}
	}
}
