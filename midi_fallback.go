// midi_fallback.go - sine-tone synth used when no real MIDI output port is
// available at the configured index. Adapted from audio_backend_oto.go's
// OtoPlayer: same oto.Context/oto.Player setup and Read-callback streaming
// design, but generating a single live sine tone from pitch/velocity
// instead of pulling samples from a SoundChip ring buffer.

package main

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

const fallbackSampleRate = 44100

type midiFallback struct {
	ctx    *oto.Context
	player *oto.Player

	mu      sync.Mutex
	freq    atomic.Uint64 // math.Float64bits of current tone frequency, 0 = silent
	gain    atomic.Uint64 // math.Float64bits of current gain 0..1
	phase   float64
	started bool
}

func NewMIDIFallback() (MIDIBackend, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   fallbackSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	m := &midiFallback{ctx: ctx}
	m.player = ctx.NewPlayer(m)
	return m, nil
}

// Read synthesizes one stretch of sine samples at the currently set
// frequency/gain, implementing io.Reader the same way OtoPlayer does so it
// can be handed straight to oto.Context.NewPlayer.
func (m *midiFallback) Read(p []byte) (int, error) {
	freq := math.Float64frombits(m.freq.Load())
	gain := math.Float64frombits(m.gain.Load())
	n := len(p) / 4
	for i := 0; i < n; i++ {
		var s float32
		if freq > 0 {
			s = float32(math.Sin(m.phase) * gain)
			m.phase += 2 * math.Pi * freq / fallbackSampleRate
			if m.phase > 2*math.Pi {
				m.phase -= 2 * math.Pi
			}
		}
		bits := math.Float32bits(s)
		p[i*4] = byte(bits)
		p[i*4+1] = byte(bits >> 8)
		p[i*4+2] = byte(bits >> 16)
		p[i*4+3] = byte(bits >> 24)
	}
	return n * 4, nil
}

func midiPitchToFreq(pitch uint8) float64 {
	return 440.0 * math.Pow(2, (float64(pitch)-69)/12)
}

func (m *midiFallback) PlayNote(pitch, instrument, velocity uint8, duration time.Duration, waitForEnd bool) {
	_ = instrument // the synthesized fallback has no timbre concept
	m.mu.Lock()
	if !m.started {
		m.player.Play()
		m.started = true
	}
	m.mu.Unlock()

	m.freq.Store(math.Float64bits(midiPitchToFreq(pitch)))
	m.gain.Store(math.Float64bits(float64(velocity) / 127))

	stop := func() {
		time.Sleep(duration)
		m.freq.Store(0)
	}
	if waitForEnd {
		stop()
	} else {
		go stop()
	}
}

func (m *midiFallback) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.player != nil {
		m.player.Close()
	}
}
