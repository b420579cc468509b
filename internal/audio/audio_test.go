package audio_test

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/plus3/tetrs/internal/audio"
	"github.com/plus3/tetrs/internal/game"
	"github.com/stretchr/testify/assert"
)

func TestTones(t *testing.T) {
	assert.Nil(t, audio.Tones(game.Event{Kind: game.EventSpawn}))
	assert.Nil(t, audio.Tones(game.Event{Kind: game.EventLineClear}))

	for lines := 1; lines <= 4; lines++ {
		tones := audio.Tones(game.Event{Kind: game.EventLineClear, Lines: lines})
		assert.NotEmpty(t, tones, "lines=%d", lines)
	}
	assert.Len(t, audio.Tones(game.Event{Kind: game.EventLineClear, Lines: 4}), 3)
}

func TestRenderLength(t *testing.T) {
	tones := []audio.Tone{
		{Frequency: 440, Duration: 100 * time.Millisecond, Volume: 0.5},
		{Frequency: 660, Duration: 50 * time.Millisecond, Volume: 0.5},
	}
	pcm := audio.Render(tones, 1)

	frames := 4410 + 441 + 2205
	assert.Len(t, pcm, frames*4)
	assert.Empty(t, audio.Render(nil, 1))
}

func TestRenderAmplitude(t *testing.T) {
	tone := audio.Tone{Frequency: 440, Duration: 50 * time.Millisecond, Volume: 0.5}
	pcm := audio.Render([]audio.Tone{tone}, 0.5)

	scale := 0.25
	limit := int16(scale*(1<<15-1)) + 1
	var peak int16
	for i := 0; i < len(pcm); i += 4 {
		left := int16(binary.LittleEndian.Uint16(pcm[i:]))
		right := int16(binary.LittleEndian.Uint16(pcm[i+2:]))
		assert.Equal(t, left, right)
		peak = max(peak, left)
	}
	assert.LessOrEqual(t, peak, limit)
	assert.Positive(t, peak)

	assert.Zero(t, int16(binary.LittleEndian.Uint16(pcm)), "starts faded in")
}

func TestSilentPlayer(t *testing.T) {
	p := audio.NewPlayer(nil, 1)
	assert.NotPanics(t, func() {
		p.Play(game.Event{Kind: game.EventLock})
	})
}
