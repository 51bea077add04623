package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListCategoriesReturnsFixedSet(t *testing.T) {
	svc := NewMedicalExpenseService(&fakeMedicalRepo{})

	// the category list is the full enum in display order, not just the
	// categories the user has recorded expenses under
	assert.Equal(t,
		[]string{"consultation", "medication", "test", "supplement", "other"},
		svc.ListCategories())
}
