package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByName(t *testing.T) {
	th, ok := ByName("gruvbox")
	assert.True(t, ok)
	assert.Equal(t, Gruvbox.Name, th.Name)

	_, ok = ByName("solarized")
	assert.False(t, ok)
}

func TestNextWraps(t *testing.T) {
	assert.Equal(t, "dracula", Next("nord").Name)
	assert.Equal(t, "nord", Next("catppuccin").Name)
	assert.Equal(t, "nord", Next("unknown").Name)
}

func TestEveryThemeHasChecklistColors(t *testing.T) {
	for _, th := range Available() {
		assert.NotEmpty(t, th.Done, th.Name)
		assert.NotEmpty(t, th.Pending, th.Name)
		assert.NotEmpty(t, th.Tree, th.Name)
		assert.NotEmpty(t, th.ECTag, th.Name)
	}
}
