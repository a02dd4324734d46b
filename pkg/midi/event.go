package midi

// Kind classifies the payload of an Event.
type Kind uint8

const (
	NoteOff Kind = iota + 1
	NoteOn
	PolyAftertouch
	ControlChange
	ProgramChange
	ChannelAftertouch
	PitchBend

	MetaTrackName
	MetaTempo
	MetaEndOfTrack
	MetaOther

	SysEx
	Escape
)

var kindNames = map[Kind]string{
	NoteOff:           "note-off",
	NoteOn:            "note-on",
	PolyAftertouch:    "poly-aftertouch",
	ControlChange:     "control-change",
	ProgramChange:     "program-change",
	ChannelAftertouch: "channel-aftertouch",
	PitchBend:         "pitch-bend",
	MetaTrackName:     "meta-track-name",
	MetaTempo:         "meta-tempo",
	MetaEndOfTrack:    "meta-end-of-track",
	MetaOther:         "meta",
	SysEx:             "sysex",
	Escape:            "escape",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsChannelVoice reports whether the kind is scoped to one of the 16 channels.
func (k Kind) IsChannelVoice() bool {
	return NoteOff <= k && k <= PitchBend
}

// IsMeta reports whether the kind is a meta message.
func (k Kind) IsMeta() bool {
	return MetaTrackName <= k && k <= MetaOther
}

// Event is one decoded track event. Which fields are meaningful depends on Kind:
//
//	NoteOff, NoteOn          Channel, Note, Velocity
//	PolyAftertouch           Channel, Note, Value (pressure)
//	ControlChange            Channel, Controller, Value
//	ProgramChange            Channel, Program
//	ChannelAftertouch        Channel, Value (pressure)
//	PitchBend                Channel, Bend (0..16383, 8192 is center)
//	MetaTempo                Tempo (microseconds per quarter note)
//	MetaTrackName, MetaOther MetaType, Data
//	SysEx, Escape            Data
type Event struct {
	TimeDelta uint32
	Kind      Kind

	Channel    uint8
	Note       uint8
	Velocity   uint8
	Controller uint8
	Value      uint8
	Program    uint8
	Bend       uint16
	Tempo      uint32

	MetaType uint8
	Data     []byte
}

type Track struct {
	Events []*Event
}

// Format is the SMF header format word.
type Format uint16

const (
	SingleTrack Format = iota
	MultiTrack
	MultiSong
)

func (f Format) String() string {
	switch f {
	case SingleTrack:
		return "single-track"
	case MultiTrack:
		return "multi-track"
	case MultiSong:
		return "multi-song"
	}
	return "unknown"
}

type TimeFormat int

const (
	MetricalTF TimeFormat = iota + 1
	TimeCodeTF
)

func (tf TimeFormat) String() string {
	switch tf {
	case MetricalTF:
		return "metrical"
	case TimeCodeTF:
		return "timecode"
	}
	return "unknown"
}

// Sequence is a fully decoded standard MIDI file.
type Sequence struct {
	Format              Format
	TimeFormat          TimeFormat
	TicksPerQuarterNote uint16
	Tracks              []*Track
}
