package prettymidi

import (
	"math"

	"github.com/pkg/errors"
)

// Converter rescales tick-timed instruments into seconds with a tempo map.
//
// Each record kind is converted in one forward scan over the tempo segments,
// so notes must be ordered by start tick and bends and controller changes by
// tick. Out of order input is rejected with ErrUnorderedNotes.
//
// With EndAtStartSegment a note's end is computed in the segment of its start,
// which is off for notes held across a tempo change.
type Converter struct {
	scales  []TickScale
	anchors []Ticks
	offsets []float64
	mode    EndTimeMode
}

func NewConverter(scales []TickScale, mode EndTimeMode) (*Converter, error) {
	if err := validateScales(scales); err != nil {
		return nil, err
	}

	c := &Converter{
		scales:  scales,
		anchors: make([]Ticks, len(scales)),
		offsets: make([]float64, len(scales)),
		mode:    mode,
	}

	for i := 1; i < len(scales); i++ {
		c.anchors[i] = scales[i].Tick
		c.offsets[i] = c.offsets[i-1] + float64(scales[i].Tick-c.anchors[i-1])*float64(scales[i-1].SecondsPerTick)
	}

	return c, nil
}

// upper is the last tick segment i is used for.
func (c *Converter) upper(i int) Ticks {
	if i+1 < len(c.scales) {
		return c.scales[i+1].Tick
	}
	return math.MaxUint32
}

func (c *Converter) seconds(seg int, tick Ticks) Seconds {
	return Seconds(float64(tick-c.anchors[seg])*float64(c.scales[seg].SecondsPerTick) + c.offsets[seg])
}

// Seconds converts a single tick in its own segment.
func (c *Converter) Seconds(tick Ticks) Seconds {
	return c.seconds(c.segment(0, tick), tick)
}

// segment returns the segment of tick, scanning forward from seg.
func (c *Converter) segment(seg int, tick Ticks) int {
	for tick > c.upper(seg) {
		seg++
	}
	return seg
}

type cursor struct {
	c    *Converter
	seg  int
	last Ticks
}

func (cur *cursor) seek(tick Ticks) error {
	if tick < cur.last {
		return errors.Wrapf(ErrUnorderedNotes, "tick %d after tick %d", tick, cur.last)
	}
	cur.last = tick
	cur.seg = cur.c.segment(cur.seg, tick)
	return nil
}

func (c *Converter) Convert(in *Instrument[Ticks]) (*Instrument[Seconds], error) {
	out := &Instrument[Seconds]{
		Program:        in.Program,
		Name:           in.Name,
		IsDrum:         in.IsDrum,
		Notes:          make([]Note[Seconds], 0, len(in.Notes)),
		PitchBends:     make([]PitchBend[Seconds], 0, len(in.PitchBends)),
		ControlChanges: make([]ControlChange[Seconds], 0, len(in.ControlChanges)),
	}

	notes := cursor{c: c}
	for i, n := range in.Notes {
		if n.End < n.Start {
			return nil, errors.Wrapf(ErrUnorderedNotes, "note %d ends at %d before its start %d", i, n.End, n.Start)
		}
		if err := notes.seek(n.Start); err != nil {
			return nil, errors.Wrapf(err, "note %d", i)
		}

		endSeg := notes.seg
		if c.mode == EndAtOwnSegment {
			// End >= Start, so this only moves forward
			endSeg = c.segment(notes.seg, n.End)
		}

		out.Notes = append(out.Notes, Note[Seconds]{
			Pitch:    n.Pitch,
			Velocity: n.Velocity,
			Start:    c.seconds(notes.seg, n.Start),
			End:      c.seconds(endSeg, n.End),
		})
	}

	bends := cursor{c: c}
	for i, b := range in.PitchBends {
		if err := bends.seek(b.Time); err != nil {
			return nil, errors.Wrapf(err, "pitch bend %d", i)
		}
		out.PitchBends = append(out.PitchBends, PitchBend[Seconds]{Bend: b.Bend, Time: c.seconds(bends.seg, b.Time)})
	}

	controls := cursor{c: c}
	for i, cc := range in.ControlChanges {
		if err := controls.seek(cc.Time); err != nil {
			return nil, errors.Wrapf(err, "control change %d", i)
		}
		out.ControlChanges = append(out.ControlChanges, ControlChange[Seconds]{
			Number: cc.Number,
			Value:  cc.Value,
			Time:   c.seconds(controls.seg, cc.Time),
		})
	}

	return out, nil
}
