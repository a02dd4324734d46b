package prettymidi

import (
	"github.com/Garik-/prettymidi/pkg/midi"
	"github.com/pkg/errors"
)

// trackState replays one track's events into its 16 channels.
type trackState struct {
	name       string
	hasName    bool
	decodeName func([]byte) string
	channels   [numChannels]*channelState

	// events counts everything but end-of-track markers
	events int
}

func newTrackState(decodeName func([]byte) string) *trackState {
	t := &trackState{decodeName: decodeName}
	for i := range t.channels {
		t.channels[i] = newChannelState(i == drumChannel)
	}
	return t
}

func (t *trackState) channel(ch uint8) (*channelState, error) {
	if int(ch) >= numChannels {
		return nil, errors.Wrapf(ErrChannelRange, "channel %d", ch)
	}
	return t.channels[ch], nil
}

func (t *trackState) applyEvent(e TimedEvent) error {
	if e.Kind != midi.MetaEndOfTrack {
		t.events++
	}

	switch {
	case e.Kind.IsChannelVoice():
		return t.applyVoiceMsg(e)
	case e.Kind == midi.MetaTrackName:
		if !t.hasName {
			t.name = t.decodeName(e.Data)
			t.hasName = true
		}
	}

	// other meta events, sysex and escapes carry nothing we extract
	return nil
}

func (t *trackState) applyVoiceMsg(e TimedEvent) error {
	c, err := t.channel(e.Channel)
	if err != nil {
		return err
	}

	switch e.Kind {
	case midi.ProgramChange:
		c.programChange(e.Program)
	case midi.NoteOn:
		if e.Velocity > 0 {
			return c.noteOn(e.Tick, e.Note, e.Velocity)
		}
		return c.noteOff(e.Tick, e.Note)
	case midi.NoteOff:
		return c.noteOff(e.Tick, e.Note)
	case midi.PitchBend:
		c.pitchBend(e.Tick, e.Bend)
	case midi.ControlChange:
		c.controlChange(e.Tick, e.Controller, e.Value)
	case midi.PolyAftertouch, midi.ChannelAftertouch:
		// aftertouch is not extracted
	}

	return nil
}

func (t *trackState) unmatched() int {
	n := 0
	for _, c := range t.channels {
		n += c.unmatched()
	}
	return n
}
