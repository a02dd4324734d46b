package midi

import (
	"math"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

// FromSMF converts a file parsed by gomidi into a Sequence, so both decoders
// feed the same extraction code.
func FromSMF(s *smf.SMF) (*Sequence, error) {
	if s == nil {
		return nil, errors.Wrap(ErrUnexpectedData, "nil SMF")
	}

	seq := &Sequence{
		Format: Format(s.Format()),
		Tracks: make([]*Track, 0, len(s.Tracks)),
	}

	if ticks, ok := s.TimeFormat.(smf.MetricTicks); ok {
		seq.TimeFormat = MetricalTF
		seq.TicksPerQuarterNote = uint16(ticks)
	} else {
		seq.TimeFormat = TimeCodeTF
	}

	for i, tr := range s.Tracks {
		track := &Track{Events: make([]*Event, 0, len(tr))}
		for j, ev := range tr {
			e, err := fromMessage(ev.Message)
			if err != nil {
				return nil, errors.Wrapf(err, "track %d event %d", i, j)
			}
			e.TimeDelta = ev.Delta
			track.Events = append(track.Events, e)
		}
		seq.Tracks = append(seq.Tracks, track)
	}

	return seq, nil
}

func fromMessage(msg smf.Message) (*Event, error) {
	var (
		ch, key, vel, value uint8
		rel                 int16
		abs                 uint16
		bpm                 float64
		text                string
	)

	e := new(Event)

	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		e.Kind, e.Channel, e.Note, e.Velocity = NoteOn, ch, key, vel
	case msg.GetNoteOff(&ch, &key, &vel):
		e.Kind, e.Channel, e.Note, e.Velocity = NoteOff, ch, key, vel
	case msg.GetPolyAfterTouch(&ch, &key, &value):
		e.Kind, e.Channel, e.Note, e.Value = PolyAftertouch, ch, key, value
	case msg.GetControlChange(&ch, &key, &value):
		e.Kind, e.Channel, e.Controller, e.Value = ControlChange, ch, key, value
	case msg.GetProgramChange(&ch, &value):
		e.Kind, e.Channel, e.Program = ProgramChange, ch, value
	case msg.GetAfterTouch(&ch, &value):
		e.Kind, e.Channel, e.Value = ChannelAftertouch, ch, value
	case msg.GetPitchBend(&ch, &rel, &abs):
		e.Kind, e.Channel, e.Bend = PitchBend, ch, abs
	case msg.GetMetaTempo(&bpm):
		if bpm <= 0 {
			return nil, errors.Wrapf(ErrUnexpectedData, "tempo %f bpm", bpm)
		}
		e.Kind, e.MetaType = MetaTempo, metaTempo
		e.Tempo = uint32(math.Round(6e7 / bpm))
	case msg.GetMetaTrackName(&text):
		e.Kind, e.MetaType = MetaTrackName, metaTrackName
		e.Data = []byte(text)
	case msg.Is(smf.MetaEndOfTrackMsg):
		e.Kind, e.MetaType = MetaEndOfTrack, metaEndOfTrack
	case len(msg) > 1 && msg[0] == 0xFF:
		e.Kind, e.MetaType = MetaOther, msg[1]
		e.Data = append([]byte(nil), msg[2:]...)
	case len(msg) > 0 && msg[0] == 0xF0:
		e.Kind = SysEx
		e.Data = append([]byte(nil), msg[1:]...)
	case len(msg) > 0 && msg[0] == 0xF7:
		e.Kind = Escape
		e.Data = append([]byte(nil), msg[1:]...)
	default:
		return nil, errors.Wrapf(ErrUnexpectedData, "message % X", []byte(msg))
	}

	return e, nil
}
