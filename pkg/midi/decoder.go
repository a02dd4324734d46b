package midi

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	headerSize = 6

	metaTrackName  = 0x03
	metaTempo      = 0x51
	metaEndOfTrack = 0x2F
)

var (
	headerChunkID = [4]byte{0x4D, 0x54, 0x68, 0x64}
	trackChunkID  = [4]byte{0x4D, 0x54, 0x72, 0x6B}

	// ErrFmtNotSupported is a generic error reporting an unknown format.
	ErrFmtNotSupported = errors.New("format not supported")
	// ErrUnexpectedData is a generic error reporting that the parser encountered unexpected data.
	ErrUnexpectedData = errors.New("unexpected data content")
	// ErrTruncated reports that the input ended in the middle of a chunk or event.
	ErrTruncated = errors.New("truncated data")
)

// Decoder reads a standard MIDI file into its embedded Sequence.
type Decoder struct {
	r             io.ReadSeeker
	offset        int64
	trackEnd      int64
	runningStatus byte
	currentTrack  *Track
	numTracks     uint16

	Log *zap.Logger
	Sequence
}

func NewDecoder(r io.ReadSeeker) *Decoder {
	return &Decoder{r: r, Log: zap.NewNop()}
}

// Decode parses the whole input. The reader is rewound before and after.
func (d *Decoder) Decode() error {
	if _, err := d.r.Seek(0, io.SeekStart); err != nil {
		return err
	}

	d.offset = 0
	d.Sequence = Sequence{}

	if err := d.parseHeader(); err != nil {
		return err
	}

	for i := 0; i < int(d.numTracks); i++ {
		if err := d.parseTrack(); err != nil {
			return errors.Wrapf(err, "track %d", i)
		}
	}

	d.Log.Debug("decoded",
		zap.Stringer("format", d.Format),
		zap.Stringer("timeFormat", d.TimeFormat),
		zap.Uint16("ticksPerQuarterNote", d.TicksPerQuarterNote),
		zap.Int("tracks", len(d.Tracks)))

	_, err := d.r.Seek(0, io.SeekStart)
	return err
}

func (d *Decoder) parseHeader() error {
	var code [4]byte
	if err := d.read(&code); err != nil {
		return err
	}

	if code != headerChunkID {
		return errors.Wrapf(ErrFmtNotSupported, "header chunk ID %v", code)
	}

	var size uint32
	if err := d.read(&size); err != nil {
		return err
	}

	if size != headerSize {
		return errors.Wrapf(ErrFmtNotSupported, "expected header size to be %d, was %d", headerSize, size)
	}

	var format, division uint16
	if err := d.read(&format); err != nil {
		return err
	}
	if err := d.read(&d.numTracks); err != nil {
		return err
	}
	if err := d.read(&division); err != nil {
		return err
	}

	d.Format = Format(format)

	if (division & 0x8000) == 0 {
		d.TicksPerQuarterNote = division & 0x7FFF
		d.TimeFormat = MetricalTF
	} else {
		d.TimeFormat = TimeCodeTF
	}

	return nil
}

func (d *Decoder) parseTrack() error {
	id, size, err := d.IDnSize()
	if err != nil {
		return err
	}
	if id != trackChunkID {
		return errors.Wrapf(ErrUnexpectedData, "expected track chunk ID %v, got %v", trackChunkID, id)
	}

	d.currentTrack = new(Track)
	d.Tracks = append(d.Tracks, d.currentTrack)
	d.runningStatus = 0
	d.trackEnd = d.offset + int64(size)

	for d.offset < d.trackEnd {
		e, err := d.parseEvent()
		if err != nil {
			return err
		}

		d.currentTrack.Events = append(d.currentTrack.Events, e)

		if e.Kind == MetaEndOfTrack {
			break
		}
	}

	if d.offset > d.trackEnd {
		return errors.Wrapf(ErrUnexpectedData, "track overruns its chunk by %d bytes", d.offset-d.trackEnd)
	}

	// bytes after end-of-track inside the chunk are ignored
	if d.offset < d.trackEnd {
		if _, err := d.r.Seek(d.trackEnd, io.SeekStart); err != nil {
			return err
		}
		d.offset = d.trackEnd
	}

	return nil
}

func (d *Decoder) parseEvent() (*Event, error) {
	timeDelta, err := d.varLen()
	if err != nil {
		return nil, err
	}

	// status byte give us the msg type and channel.
	statusByte, err := d.readByte()
	if err != nil {
		return nil, err
	}

	e := &Event{TimeDelta: timeDelta}

	if statusByte&0x80 == 0 {
		if d.runningStatus == 0 {
			return nil, errors.Wrapf(ErrUnexpectedData, "data byte %#x at offset %d without running status", statusByte, d.offset-1)
		}
		if err := d.unreadByte(); err != nil {
			return nil, err
		}
		statusByte = d.runningStatus
	}

	switch {
	case statusByte == 0xFF:
		d.runningStatus = 0
		return e, d.parseMetaMsg(e)

	case statusByte == 0xF0, statusByte == 0xF7:
		d.runningStatus = 0
		e.Kind = SysEx
		if statusByte == 0xF7 {
			e.Kind = Escape
		}
		e.Data, err = d.varLenData()
		return e, err

	case statusByte >= 0xF0:
		return nil, errors.Wrapf(ErrUnexpectedData, "status byte %#x at offset %d", statusByte, d.offset-1)
	}

	d.runningStatus = statusByte
	return e, d.parseVoiceMsg(e, statusByte)
}

func (d *Decoder) parseVoiceMsg(e *Event, statusByte byte) error {
	var err error

	e.Channel = statusByte & 0x0F

	// Extract values based on message type
	switch statusByte >> 4 {
	case 0x8, 0x9:
		e.Kind = NoteOff
		if statusByte>>4 == 0x9 {
			e.Kind = NoteOn
		}
		if e.Note, err = d.uint7(); err != nil {
			return err
		}
		e.Velocity, err = d.uint7()

	case 0xA:
		e.Kind = PolyAftertouch
		if e.Note, err = d.uint7(); err != nil {
			return err
		}
		e.Value, err = d.uint7()

	case 0xB:
		e.Kind = ControlChange
		if e.Controller, err = d.uint7(); err != nil {
			return err
		}
		e.Value, err = d.uint7()

	case 0xC:
		e.Kind = ProgramChange
		e.Program, err = d.uint7()

	case 0xD:
		e.Kind = ChannelAftertouch
		e.Value, err = d.uint7()

	case 0xE:
		e.Kind = PitchBend
		var lsb, msb uint8
		if lsb, err = d.uint7(); err != nil {
			return err
		}
		if msb, err = d.uint7(); err != nil {
			return err
		}
		e.Bend = uint16(msb)<<7 | uint16(lsb)
	}

	return err
}

func (d *Decoder) parseMetaMsg(e *Event) error {
	metaType, err := d.readByte()
	if err != nil {
		return err
	}

	data, err := d.varLenData()
	if err != nil {
		return err
	}

	e.MetaType = metaType

	switch metaType {
	case metaTrackName:
		e.Kind = MetaTrackName
		e.Data = data

	case metaTempo:
		if len(data) != 3 {
			return errors.Wrapf(ErrUnexpectedData, "tempo event with %d data bytes", len(data))
		}
		e.Kind = MetaTempo
		e.Tempo = uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])

	case metaEndOfTrack:
		e.Kind = MetaEndOfTrack

	default:
		e.Kind = MetaOther
		e.Data = data
	}

	return nil
}
