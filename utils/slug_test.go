package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Latte", "latte"},
		{"Caramel Macchiato", "caramel-macchiato"},
		{"  Flat White  ", "flat-white"},
		{"Iced!! Coffee??", "iced-coffee"},
		{"Crème Brûlée", "crme-brle"},
		{"--double--dash--", "double-dash"},
		{"12 oz Cold Brew", "12-oz-cold-brew"},
		{"", "item"},
		{"???", "item"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.name), "Slugify(%q)", tt.name)
	}
}

func TestUniqueSlugFreeImmediately(t *testing.T) {
	slug, err := UniqueSlug("latte", func(string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, "latte", slug)
}

func TestUniqueSlugAppendsSuffix(t *testing.T) {
	taken := map[string]bool{"latte": true, "latte-1": true}
	slug, err := UniqueSlug("latte", func(s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.Equal(t, "latte-2", slug)
}

func TestUniqueSlugPropagatesLookupError(t *testing.T) {
	_, err := UniqueSlug("latte", func(string) (bool, error) { return false, fmt.Errorf("db gone") })
	assert.Error(t, err)
}
