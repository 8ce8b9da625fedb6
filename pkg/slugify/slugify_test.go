package slugify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Red Rose Bouquet", "red-rose-bouquet"},
		{"  Tulip  ", "tulip"},
		{"Café Crème", "cafe-creme"},
		{"Роза", "roza"},
		{"!!!", "product"},
		{"", "product"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Base(tt.input))
		})
	}
}

func TestUnique(t *testing.T) {
	assert.Equal(t, "rose", Unique("rose", map[string]bool{}))
	assert.Equal(t, "rose-2", Unique("rose", map[string]bool{"rose": true}))
	assert.Equal(t, "rose-4", Unique("rose", map[string]bool{"rose": true, "rose-2": true, "rose-3": true}))
	assert.Equal(t, "rose-2", Unique("rose", map[string]bool{"rose": true, "rose-3": true}))
}
