package prettymidi

import (
	"testing"

	"github.com/Garik-/prettymidi/pkg/midi"
	"github.com/stretchr/testify/require"
)

func at(tick uint32, e *midi.Event) TimedEvent {
	return TimedEvent{Tick: Ticks(tick), Event: e}
}

func noteOn(tick uint32, ch, key, vel uint8) TimedEvent {
	return at(tick, &midi.Event{Kind: midi.NoteOn, Channel: ch, Note: key, Velocity: vel})
}

func noteOff(tick uint32, ch, key uint8) TimedEvent {
	return at(tick, &midi.Event{Kind: midi.NoteOff, Channel: ch, Note: key})
}

func program(tick uint32, ch, p uint8) TimedEvent {
	return at(tick, &midi.Event{Kind: midi.ProgramChange, Channel: ch, Program: p})
}

func bend(tick uint32, ch uint8, b uint16) TimedEvent {
	return at(tick, &midi.Event{Kind: midi.PitchBend, Channel: ch, Bend: b})
}

func control(tick uint32, ch, number, value uint8) TimedEvent {
	return at(tick, &midi.Event{Kind: midi.ControlChange, Channel: ch, Controller: number, Value: value})
}

func tempo(tick, micros uint32) TimedEvent {
	return at(tick, &midi.Event{Kind: midi.MetaTempo, Tempo: micros})
}

func trackName(tick uint32, name string) TimedEvent {
	return at(tick, &midi.Event{Kind: midi.MetaTrackName, Data: []byte(name)})
}

// track turns absolute-tick events back into a delta-timed track.
func track(events ...TimedEvent) *midi.Track {
	t := new(midi.Track)
	var last Ticks
	for _, e := range events {
		ev := *e.Event
		ev.TimeDelta = uint32(e.Tick - last)
		last = e.Tick
		t.Events = append(t.Events, &ev)
	}
	t.Events = append(t.Events, &midi.Event{Kind: midi.MetaEndOfTrack})
	return t
}

func sequence(tracks ...*midi.Track) *midi.Sequence {
	return &midi.Sequence{
		Format:              midi.MultiTrack,
		TimeFormat:          midi.MetricalTF,
		TicksPerQuarterNote: 480,
		Tracks:              tracks,
	}
}

func replay(t *testing.T, events ...TimedEvent) *trackState {
	t.Helper()

	decodeName, err := textDecoder("utf-8")
	require.NoError(t, err)

	state := newTrackState(decodeName)
	for _, e := range events {
		require.NoError(t, state.applyEvent(e))
	}
	return state
}
