package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameKnown(t *testing.T) {
	t.Parallel()

	for _, n := range []Name{GameStart, NumberCalled, Bingo, RoundLost, Alert} {
		assert.True(t, n.Known(), n)
	}
	assert.False(t, Name("shuffle").Known())
	assert.False(t, Name("").Known())
}

func TestPlayer_PlayBeforeInitIsNoop(t *testing.T) {
	t.Parallel()

	p := NewPlayer(t.TempDir())
	assert.Equal(t, 0, p.Loaded())
	assert.NotPanics(t, func() {
		p.Play(Bingo)
		p.Close()
	})
}
