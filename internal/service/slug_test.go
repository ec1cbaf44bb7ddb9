package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeSlug(t *testing.T) {
	slug := makeSlug("How do I use Goroutines?!")
	assert.True(t, strings.HasPrefix(slug, "how-do-i-use-goroutines-"), slug)

	// The random suffix keeps identical titles distinct.
	assert.NotEqual(t, makeSlug("Same title"), makeSlug("Same title"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", slugify("  Hello,   World!  "))
	assert.Equal(t, "go-1-22-generics", slugify("Go 1.22 generics"))
	assert.Equal(t, "", slugify("???"))
}
