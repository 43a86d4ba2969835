package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Minimalist Concrete Lamp", "minimalist-concrete-lamp"},
		{"Eames-Style Lounge Chair", "eames-style-lounge-chair"},
		{"  Crème Brûlée Torch!! ", "creme-brulee-torch"},
		{"Ceramic Pour-Over Set (2 cups)", "ceramic-pour-over-set-2-cups"},
		{"***", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestGenerateSlug(t *testing.T) {
	at := time.UnixMilli(1700000000000)

	slug := GenerateSlug("Smart Air Purifier", at)
	assert.True(t, strings.HasPrefix(slug, "smart-air-purifier-"))
	assert.Equal(t, "smart-air-purifier-"+"loyw3v28", slug)

	assert.Equal(t, "loyw3v28", GenerateSlug("???", at))
}
