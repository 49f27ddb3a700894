package embeddings

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("  abc \n"))
	assert.Equal(t, "", Truncate("   "))

	long := strings.Repeat("é", maxInputChars+10)
	out := Truncate(long)
	assert.Equal(t, maxInputChars, len([]rune(out)))
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.GenerateEmbedding(context.Background(), "x")
	assert.ErrorIs(t, err, ErrDisabled)
}
