package prettymidi

import (
	"go.uber.org/zap"
)

const (
	DefaultTempo = 120.0
)

// EndTimeMode selects which tempo segment a note's end tick is resolved in.
type EndTimeMode int

const (
	// EndAtStartSegment converts the end tick with the segment active at the
	// note's start, even when the note spans a tempo change.
	EndAtStartSegment EndTimeMode = iota
	// EndAtOwnSegment converts the end tick with the segment it falls in.
	EndAtOwnSegment
)

// OrphanPolicy decides what happens to events that never got a program.
type OrphanPolicy int

const (
	DropOrphans OrphanPolicy = iota
	// KeepOrphans emits them as a program 0 instrument after the channel's
	// other instruments.
	KeepOrphans
)

// Options configures a Reader. The zero value is ready to use.
type Options struct {
	// Resolution overrides the header ticks per quarter note in the tempo map.
	Resolution uint16
	// InitialTempo is the BPM of the implied breakpoint at tick 0.
	InitialTempo float64
	EndTime      EndTimeMode
	Orphans      OrphanPolicy
	// Charset of track name text: "utf-8" or "shift-jis".
	Charset string
	// NameFromTrack copies the track name into each of the track's instruments.
	NameFromTrack bool

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.InitialTempo <= 0 {
		o.InitialTempo = DefaultTempo
	}
	if o.Charset == "" {
		o.Charset = "utf-8"
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
