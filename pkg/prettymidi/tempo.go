package prettymidi

import (
	"math"

	"github.com/Garik-/prettymidi/pkg/midi"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// TickScale is a tempo breakpoint: from Tick onward each tick lasts
// SecondsPerTick until the next breakpoint.
type TickScale struct {
	Tick           Ticks   `json:"tick"`
	SecondsPerTick float32 `json:"seconds_per_tick"`
}

// TimedEvent is a decoded event placed at an absolute tick.
type TimedEvent struct {
	Tick Ticks
	*midi.Event
}

// Absolute turns the relative deltas of one track into absolute ticks.
func Absolute(track *midi.Track) ([]TimedEvent, error) {
	out := make([]TimedEvent, 0, len(track.Events))

	var tick uint64
	for _, e := range track.Events {
		tick += uint64(e.TimeDelta)
		if tick > math.MaxUint32 {
			return nil, ErrTickOverflow
		}
		out = append(out, TimedEvent{Tick: Ticks(tick), Event: e})
	}

	return out, nil
}

func secondsPerTick(microsPerBeat uint32, resolution uint16) float32 {
	return 60.0 / ((6e7 / float32(microsPerBeat)) * float32(resolution))
}

func bpmSecondsPerTick(bpm float64, resolution uint16) float32 {
	return 60.0 / (float32(bpm) * float32(resolution))
}

// TickScales builds the tempo map of a track whose events carry absolute
// ticks. Consecutive breakpoints never share a scale, and the first one is
// always at tick 0: when the track has no tempo event there, a breakpoint at
// opts.InitialTempo is prepended.
func TickScales(track []TimedEvent, resolution uint16, opts Options) ([]TickScale, error) {
	if resolution == 0 {
		return nil, ErrResolution
	}

	opts = opts.withDefaults()
	log := opts.Logger.Named("tempo")

	var scales []TickScale
	last := float32(-1)

	for _, e := range track {
		if e.Kind != midi.MetaTempo {
			continue
		}
		if e.Tempo == 0 {
			log.Warn("skipping zero tempo", zap.Uint32("tick", uint32(e.Tick)))
			continue
		}

		scale := secondsPerTick(e.Tempo, resolution)
		if scale == last {
			continue
		}
		last = scale
		scales = append(scales, TickScale{Tick: e.Tick, SecondsPerTick: scale})
	}

	if len(scales) == 0 || scales[0].Tick > 0 {
		initial := TickScale{Tick: 0, SecondsPerTick: bpmSecondsPerTick(opts.InitialTempo, resolution)}
		if len(scales) > 0 && scales[0].SecondsPerTick == initial.SecondsPerTick {
			// same tempo as the implied one, only its start moves
			scales[0].Tick = 0
		} else {
			scales = append([]TickScale{initial}, scales...)
		}
	}

	for _, s := range scales {
		log.Debug("breakpoint", zap.Uint32("tick", uint32(s.Tick)), zap.Float32("secondsPerTick", s.SecondsPerTick))
	}

	return scales, nil
}

// MaxTick returns one past the latest absolute tick of all tracks.
func MaxTick(tracks [][]TimedEvent) Ticks {
	var max Ticks
	for _, t := range tracks {
		if len(t) > 0 && t[len(t)-1].Tick > max {
			max = t[len(t)-1].Tick
		}
	}
	return max + 1
}

func validateScales(scales []TickScale) error {
	if len(scales) == 0 {
		return ErrNoScales
	}
	for i := 1; i < len(scales); i++ {
		if scales[i].Tick < scales[i-1].Tick {
			return errors.Wrapf(ErrUnorderedScales, "tick scale %d at tick %d precedes %d", i, scales[i].Tick, scales[i-1].Tick)
		}
	}
	return nil
}
