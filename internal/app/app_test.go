package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginAllowed(t *testing.T) {
	patterns := []string{"gratitree.example.com", "*.gratitree.example.com"}

	assert.True(t, originAllowed(patterns, "https://gratitree.example.com"))
	assert.True(t, originAllowed(patterns, "https://app.gratitree.example.com"))
	assert.True(t, originAllowed(patterns, "gratitree.example.com"))

	assert.False(t, originAllowed(patterns, "https://evil.example.com"))
	assert.False(t, originAllowed(patterns, "https://gratitree.example.com.evil.com"))
	assert.False(t, originAllowed(nil, "https://gratitree.example.com"))
}

func TestOriginAllowedWithPort(t *testing.T) {
	patterns := []string{"localhost:5173"}

	assert.True(t, originAllowed(patterns, "http://localhost:5173"))
	assert.False(t, originAllowed(patterns, "http://localhost:8080"))
}
