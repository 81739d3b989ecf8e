package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSection(t *testing.T) {
	t.Run("valid section", func(t *testing.T) {
		err := ValidateSection(&Section{
			TenantId: 1,
			Type:     "faq",
			Title:    "Shipping",
			Text:     "We offer free shipping on orders over $50",
		})
		assert.NoError(t, err)
	})

	t.Run("nil section", func(t *testing.T) {
		err := ValidateSection(nil)
		assert.ErrorIs(t, err, ErrInvalidSection)
	})

	t.Run("blank title", func(t *testing.T) {
		err := ValidateSection(&Section{Title: "   ", Text: "body"})
		assert.ErrorIs(t, err, ErrEmptyTitle)
	})

	t.Run("blank text", func(t *testing.T) {
		err := ValidateSection(&Section{Title: "Shipping", Text: " \n\t"})
		assert.ErrorIs(t, err, ErrEmptyContent)
	})
}

func TestValidateVector(t *testing.T) {
	assert.NoError(t, ValidateVector([]float32{1, 2, 3}, 3))
	assert.ErrorIs(t, ValidateVector([]float32{1, 2}, 3), ErrDimensionMismatch)
	// Dimension 0 disables the check.
	assert.NoError(t, ValidateVector([]float32{1, 2}, 0))
}

func TestTokenCount(t *testing.T) {
	assert.Equal(t, 0, TokenCount(""))
	assert.Equal(t, 0, TokenCount("   "))
	assert.Equal(t, 3, TokenCount("one two three"))
	assert.Equal(t, 2, TokenCount("  leading   trailing  "))
}
