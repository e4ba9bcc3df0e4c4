package phone_test

import (
	"testing"

	"github.com/formaops/messaging-gateway/pkg/phone"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("strips formatting characters", func(t *testing.T) {
		assert.Equal(t, "33612345678", phone.Normalize("+33 6 12 34 56 78"))
		assert.Equal(t, "33612345678", phone.Normalize("+33-6-12-34-56-78"))
		assert.Equal(t, "33612345678", phone.Normalize("(33) 6.12.34.56.78"))
	})

	t.Run("is idempotent", func(t *testing.T) {
		inputs := []string{"+33 6 12 34 56 78", "0612345678", "  ", "+1 (555) 010-0199"}
		for _, in := range inputs {
			once := phone.Normalize(in)
			assert.Equal(t, once, phone.Normalize(once))
		}
	})
}

func TestInternational(t *testing.T) {
	assert.Equal(t, "+33612345678", phone.International("33 6 12 34 56 78"))
	assert.Equal(t, "", phone.International("  "))
}

func TestVariants(t *testing.T) {
	t.Run("international number yields national form", func(t *testing.T) {
		variants := phone.Variants("+33612345678", "33")
		assert.Contains(t, variants, "33612345678")
		assert.Contains(t, variants, "+33612345678")
		assert.Contains(t, variants, "0612345678")
	})

	t.Run("national number yields international forms", func(t *testing.T) {
		variants := phone.Variants("0612345678", "33")
		assert.Contains(t, variants, "0612345678")
		assert.Contains(t, variants, "33612345678")
		assert.Contains(t, variants, "+33612345678")
	})

	t.Run("canonical form comes first", func(t *testing.T) {
		variants := phone.Variants("+33612345678", "33")
		assert.Equal(t, "33612345678", variants[0])
	})

	t.Run("empty input yields nothing", func(t *testing.T) {
		assert.Nil(t, phone.Variants("---", "33"))
	})
}
