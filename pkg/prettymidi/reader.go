// Package prettymidi extracts notes, pitch bends and controller changes from
// a decoded multi-track MIDI sequence, grouped into instruments per track,
// channel and program, and converts their times from ticks to seconds with
// the sequence's tempo map.
package prettymidi

import (
	"io"
	"os"
	"sort"

	"github.com/Garik-/prettymidi/pkg/midi"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
	"go.uber.org/zap"
)

type Stats struct {
	Events int `json:"events"`
	// UnmatchedNoteOns are note-ons still pending when their track ended.
	UnmatchedNoteOns int `json:"unmatched_note_ons"`
	// Orphans are straggler instruments never promoted to a program.
	Orphans int `json:"orphans"`
}

type Result struct {
	Resolution  uint16                 `json:"resolution"`
	TickScales  []TickScale            `json:"tick_scales"`
	Instruments []*Instrument[Seconds] `json:"instruments"`
	TrackNames  []string               `json:"track_names"`
	MaxTick     Ticks                  `json:"max_tick"`
	Stats       Stats                  `json:"stats"`
}

// EndTime returns the latest time of any event of any instrument.
func (r *Result) EndTime() Seconds {
	var end Seconds
	for _, i := range r.Instruments {
		if t := i.EndTime(); t > end {
			end = t
		}
	}
	return end
}

// Reader converts sequences. It holds no state between reads, so one Reader
// may be used from several goroutines.
type Reader struct {
	opts Options
	log  *zap.Logger
}

func NewReader(opts Options) *Reader {
	opts = opts.withDefaults()
	return &Reader{opts: opts, log: opts.Logger.Named("reader")}
}

// ReadFile opens, decodes and converts a standard MIDI file.
func (r *Reader) ReadFile(name string) (*Result, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, newError(KindIO, "open", err)
	}
	defer f.Close()

	return r.ReadFrom(f)
}

// ReadFrom decodes with the built-in decoder and converts.
func (r *Reader) ReadFrom(rs io.ReadSeeker) (*Result, error) {
	decoder := midi.NewDecoder(rs)
	decoder.Log = r.opts.Logger.Named("decoder")

	if err := decoder.Decode(); err != nil {
		return nil, decodeError("decode", err)
	}

	return r.Read(&decoder.Sequence)
}

// ReadSMF converts a file already parsed by gomidi.
func (r *Reader) ReadSMF(s *smf.SMF) (*Result, error) {
	seq, err := midi.FromSMF(s)
	if err != nil {
		return nil, newError(KindDecode, "decode", err)
	}
	return r.Read(seq)
}

// Read converts a decoded sequence. The first track only feeds the tempo map;
// instruments come from the remaining tracks in track, channel, program order.
func (r *Reader) Read(seq *midi.Sequence) (*Result, error) {
	if seq.TimeFormat != midi.MetricalTF {
		return nil, newError(KindUnsupported, "read", errors.Wrapf(ErrNonMetrical, "time format %s", seq.TimeFormat))
	}
	if seq.Format != midi.MultiTrack {
		return nil, newError(KindUnsupported, "read", errors.Wrapf(ErrFormat, "format %s", seq.Format))
	}
	if len(seq.Tracks) == 0 {
		return nil, newError(KindDecode, "read", ErrNoTracks)
	}

	decodeName, err := textDecoder(r.opts.Charset)
	if err != nil {
		return nil, newError(KindGeneric, "read", err)
	}

	tracks := make([][]TimedEvent, len(seq.Tracks))
	for i, t := range seq.Tracks {
		if tracks[i], err = Absolute(t); err != nil {
			return nil, newError(KindDecode, "read", errors.Wrapf(err, "track %d", i))
		}
	}

	resolution := seq.TicksPerQuarterNote
	if r.opts.Resolution > 0 {
		resolution = r.opts.Resolution
	}

	scales, err := TickScales(tracks[0], resolution, r.opts)
	if err != nil {
		return nil, newError(KindDecode, "tempo", err)
	}

	converter, err := NewConverter(scales, r.opts.EndTime)
	if err != nil {
		return nil, newError(KindInternal, "tempo", err)
	}

	res := &Result{
		Resolution: resolution,
		TickScales: scales,
		MaxTick:    MaxTick(tracks),
	}

	for i, events := range tracks[1:] {
		n := i + 1
		state := newTrackState(decodeName)

		for _, e := range events {
			if err := state.applyEvent(e); err != nil {
				return nil, newError(KindInternal, "replay", errors.Wrapf(err, "track %d tick %d", n, e.Tick))
			}
		}

		instruments, err := r.extract(n, state, converter, &res.Stats)
		if err != nil {
			return nil, err
		}

		res.Instruments = append(res.Instruments, instruments...)
		res.TrackNames = append(res.TrackNames, state.name)
		res.Stats.Events += state.events
	}

	r.log.Debug("read",
		zap.Uint16("resolution", resolution),
		zap.Int("tickScales", len(scales)),
		zap.Int("tracks", len(seq.Tracks)),
		zap.Int("instruments", len(res.Instruments)))

	return res, nil
}

func (r *Reader) extract(n int, state *trackState, converter *Converter, stats *Stats) ([]*Instrument[Seconds], error) {
	log := r.log.With(zap.Int("track", n), zap.String("name", state.name))

	if unmatched := state.unmatched(); unmatched > 0 {
		stats.UnmatchedNoteOns += unmatched
		log.Warn("note-ons without note-off", zap.Int("count", unmatched))
	}

	var out []*Instrument[Seconds]

	for ch, c := range state.channels {
		instruments, orphan := c.drain(r.opts.Orphans == KeepOrphans)
		if orphan != nil {
			stats.Orphans++
			log.Warn("events before any program",
				zap.Int("channel", ch),
				zap.Int("notes", len(orphan.Notes)),
				zap.Int("pitchBends", len(orphan.PitchBends)),
				zap.Int("controlChanges", len(orphan.ControlChanges)),
				zap.Bool("kept", r.opts.Orphans == KeepOrphans))
		}

		for _, i := range instruments {
			sortByTick(i)
			if r.opts.NameFromTrack {
				i.Name = state.name
			}

			converted, err := converter.Convert(i)
			if err != nil {
				return nil, newError(KindInternal, "convert", errors.Wrapf(err, "track %d channel %d program %d", n, ch, i.Program))
			}
			out = append(out, converted)
		}
	}

	log.Debug("track replayed", zap.Int("events", state.events), zap.Int("instruments", len(out)))

	return out, nil
}

// sortByTick orders notes by start tick, keeping the closing order of notes
// that start together.
func sortByTick(i *Instrument[Ticks]) {
	sort.SliceStable(i.Notes, func(a, b int) bool { return i.Notes[a].Start < i.Notes[b].Start })
	sort.SliceStable(i.PitchBends, func(a, b int) bool { return i.PitchBends[a].Time < i.PitchBends[b].Time })
	sort.SliceStable(i.ControlChanges, func(a, b int) bool { return i.ControlChanges[a].Time < i.ControlChanges[b].Time })
}

// Read converts seq with opts.
func Read(seq *midi.Sequence, opts Options) (*Result, error) {
	return NewReader(opts).Read(seq)
}

// ReadFile converts the standard MIDI file name with opts.
func ReadFile(name string, opts Options) (*Result, error) {
	return NewReader(opts).ReadFile(name)
}
