// midi_backend.go - C10's MIDI device: plays notes via the host's MIDI
// output when a device is available at the configured port, identified by
// a port index set at startup per SPEC_FULL.md. Grounded on audio_backend_oto.go's
// role as "the thing program_executor.go hands audio requests to"; the
// actual transport here is gitlab.com/gomidi/midi/v2 instead of oto, since
// the ecall wants real instrument/velocity semantics rather than raw PCM.

package main

import (
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// MIDIBackend is what ecall.go's MidiOut/MidiOutSync handlers drive;
// midiFallback (midi_fallback.go) implements the same interface over a
// synthesized tone when no real output port is present.
type MIDIBackend interface {
	PlayNote(pitch, instrument, velocity uint8, duration time.Duration, sync bool)
	Close()
}

type realMIDI struct {
	drv  *rtmididrv.Driver
	out  drivers.Out
	prog uint8
}

// OpenMIDI opens the given output port index. If anything about the
// driver or port fails, the caller should fall back to midiFallback
// instead of treating it as a fatal startup error.
func OpenMIDI(port int) (MIDIBackend, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, err
	}
	outs, err := drv.Outs()
	if err != nil {
		drv.Close()
		return nil, err
	}
	if port < 0 || port >= len(outs) {
		drv.Close()
		return nil, errPortRange
	}
	out := outs[port]
	if err := out.Open(); err != nil {
		drv.Close()
		return nil, err
	}
	return &realMIDI{drv: drv, out: out, prog: 255}, nil
}

var errPortRange = portRangeErr("midi port index out of range")

type portRangeErr string

func (e portRangeErr) Error() string { return string(e) }

func (r *realMIDI) PlayNote(pitch, instrument, velocity uint8, duration time.Duration, waitForEnd bool) {
	send, err := midi.SendTo(r.out)
	if err != nil {
		return
	}
	if instrument != r.prog {
		send(midi.ProgramChange(0, instrument))
		r.prog = instrument
	}
	send(midi.NoteOn(0, pitch, velocity))
	play := func() {
		time.Sleep(duration)
		send(midi.NoteOff(0, pitch))
	}
	if waitForEnd {
		play()
	} else {
		go play()
	}
}

func (r *realMIDI) Close() {
	r.out.Close()
	r.drv.Close()
}
