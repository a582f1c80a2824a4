package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Apple   iPhone 15\n(128GB) ", "Apple iPhone 15 (128GB)"},
		{"Samsung™ Galaxy S24 – Black!", "Samsung Galaxy S24 Black"},
		{"AT&T [Refurbished] - Pixel 8", "AT&T [Refurbished] - Pixel 8"},
		{"***", ""},
		{"Pokémon Scarlet", "Pokémon Scarlet"},
		{"Nestlé Crème Brûlée", "Nestlé Crème Brûlée"},
		{"Sony α7 IV™", "Sony α7 IV"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanName(tt.in))
		})
	}
}
