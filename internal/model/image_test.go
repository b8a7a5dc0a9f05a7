package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePrompt(t *testing.T) {
	assert.Equal(t, "a cat, Cartoon, HDR", DerivePrompt("  a cat ", "Cartoon", "HDR"))
	assert.Equal(t, "a cat", DerivePrompt("a cat", "", ""))
}

func TestCatalogueValidation(t *testing.T) {
	assert.True(t, ValidAspectRatio("16:9"))
	assert.False(t, ValidAspectRatio("4:3"))
	assert.True(t, ValidStyle(DefaultStyle))
	assert.False(t, ValidStyle("realistic"))
	assert.True(t, ValidQuality(DefaultQuality))
	assert.False(t, ValidQuality("HD"))
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, User{Role: RoleAdmin}.IsAdmin())
	assert.False(t, User{Role: RoleUser}.IsAdmin())
}

func TestValidIssueType(t *testing.T) {
	assert.True(t, ValidIssueType("Technical Issue"))
	assert.False(t, ValidIssueType("Other"))
}

func TestDefaultCreditPackages(t *testing.T) {
	assert.Equal(t, []CreditPackage{
		{Credits: 75, Price: 5, Description: "Best for starters"},
		{Credits: 150, Price: 9, Description: "Most popular"},
		{Credits: 300, Price: 17, Description: "Best value"},
	}, DefaultCreditPackages)
}
