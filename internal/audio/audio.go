// Package audio synthesizes short sound effects for game events and plays
// them through ebiten's audio context.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/plus3/tetrs/internal/game"
)

// SampleRate of every rendered effect.
const SampleRate = 44100

const (
	bytesPerSample = 4 // 16-bit little endian stereo
	toneGap        = 10 * time.Millisecond
	fade           = 3 * time.Millisecond
)

// Tone is one sine note.
type Tone struct {
	Frequency float64
	Duration  time.Duration
	Volume    float64
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// Tones returns the notes played for ev, or nil for silent events.
func Tones(ev game.Event) []Tone {
	switch ev.Kind {
	case game.EventMove:
		return []Tone{{380, ms(25), 0.18}}
	case game.EventRotate:
		return []Tone{{520, ms(40), 0.25}}
	case game.EventHardDrop:
		return []Tone{{240, ms(55), 0.22}}
	case game.EventHold:
		return []Tone{{300, ms(40), 0.2}, {400, ms(40), 0.2}}
	case game.EventLock:
		return []Tone{{220, ms(70), 0.3}}
	case game.EventLineClear:
		return lineTones(ev.Lines)
	case game.EventLevelUp:
		return []Tone{{523, ms(80), 0.25}, {659, ms(80), 0.25}, {784, ms(120), 0.25}}
	case game.EventGameOver:
		return []Tone{{180, ms(160), 0.28}}
	case game.EventPause, game.EventResume:
		return []Tone{{260, ms(24), 0.16}}
	case game.EventRestart:
		return []Tone{{520, ms(70), 0.2}}
	}
	return nil
}

func lineTones(lines int) []Tone {
	switch {
	case lines >= 4:
		return []Tone{{660, ms(80), 0.3}, {880, ms(80), 0.3}, {990, ms(120), 0.3}}
	case lines == 3:
		return []Tone{{440, ms(70), 0.3}, {660, ms(70), 0.3}, {880, ms(90), 0.3}}
	case lines == 2:
		return []Tone{{440, ms(70), 0.3}, {660, ms(90), 0.3}}
	case lines == 1:
		return []Tone{{440, ms(90), 0.3}}
	}
	return nil
}

func samples(d time.Duration) int {
	return int(float64(SampleRate) * d.Seconds())
}

// Render writes tones back to back, separated by a short gap, as 16-bit
// little endian stereo PCM scaled by master.
func Render(tones []Tone, master float64) []byte {
	total := 0
	for i, t := range tones {
		total += samples(t.Duration)
		if i < len(tones)-1 {
			total += samples(toneGap)
		}
	}

	buf := make([]byte, total*bytesPerSample)
	at := 0
	master = min(max(master, 0), 1)
	for _, t := range tones {
		n := samples(t.Duration)
		renderTone(buf[at:at+n*bytesPerSample], t, t.Volume*master)
		at += (n + samples(toneGap)) * bytesPerSample
	}
	return buf
}

func renderTone(buf []byte, t Tone, volume float64) {
	const maxInt16 = 1<<15 - 1
	n := len(buf) / bytesPerSample
	edge := samples(fade)
	for i := range n {
		env := 1.0
		switch {
		case i < edge:
			env = float64(i) / float64(edge)
		case i > n-edge:
			env = float64(n-i) / float64(edge)
		}
		v := int16(math.Sin(2*math.Pi*t.Frequency*float64(i)/SampleRate) * volume * env * maxInt16)
		buf[i*4] = byte(v)
		buf[i*4+1] = byte(v >> 8)
		buf[i*4+2] = byte(v)
		buf[i*4+3] = byte(v >> 8)
	}
}

// Player plays event sounds. Rendered effects are cached per event shape.
type Player struct {
	ctx    *audio.Context
	volume float64

	mu      sync.Mutex
	cache   map[cacheKey][]byte
	playing []*audio.Player
}

type cacheKey struct {
	kind  game.EventKind
	lines int
}

// NewPlayer plays through ctx, which must run at SampleRate. A nil ctx
// makes a silent player.
func NewPlayer(ctx *audio.Context, volume float64) *Player {
	return &Player{
		ctx:    ctx,
		volume: volume,
		cache:  make(map[cacheKey][]byte),
	}
}

// NewContext returns the process audio context, creating it on first use.
func NewContext() *audio.Context {
	if ctx := audio.CurrentContext(); ctx != nil {
		return ctx
	}
	return audio.NewContext(SampleRate)
}

func (p *Player) Play(ev game.Event) {
	if p.ctx == nil || p.volume <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := cacheKey{kind: ev.Kind, lines: ev.Lines}
	pcm, ok := p.cache[key]
	if !ok {
		pcm = Render(Tones(ev), p.volume)
		p.cache[key] = pcm
	}
	if len(pcm) == 0 {
		return
	}

	// Players stop when collected, so keep the ones still sounding.
	live := p.playing[:0]
	for _, pl := range p.playing {
		if pl.IsPlaying() {
			live = append(live, pl)
		}
	}
	pl := p.ctx.NewPlayerFromBytes(pcm)
	pl.Play()
	p.playing = append(live, pl)
}
