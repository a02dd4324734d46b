package prettymidi

import (
	"sort"

	"github.com/pkg/errors"
)

const (
	numChannels = 16
	numPitches  = 128
	drumChannel = 9
)

type pendingNote struct {
	start    Ticks
	velocity uint8
}

// channelState collects the instruments of one channel of one track.
//
// Events that arrive while no instrument exists for the current program go to
// the straggler. The first get-or-create for any program takes the straggler
// over as that program's instrument, so early events are merged into the
// first instrument materialized on the channel.
type channelState struct {
	pending     [numPitches][]pendingNote
	program     uint8
	isDrum      bool
	straggler   *Instrument[Ticks]
	instruments map[uint8]*Instrument[Ticks]
}

func newChannelState(isDrum bool) *channelState {
	return &channelState{
		isDrum:      isDrum,
		instruments: make(map[uint8]*Instrument[Ticks]),
	}
}

func checkPitch(pitch uint8) error {
	if pitch >= numPitches {
		return errors.Wrapf(ErrPitchRange, "pitch %d", pitch)
	}
	return nil
}

func (c *channelState) programChange(program uint8) {
	c.program = program
}

func (c *channelState) noteOn(tick Ticks, pitch, velocity uint8) error {
	if err := checkPitch(pitch); err != nil {
		return err
	}
	c.pending[pitch] = append(c.pending[pitch], pendingNote{start: tick, velocity: velocity})
	return nil
}

// noteOff closes every pending note on pitch that did not start at tick.
// Notes starting at tick stay pending for a later note-off. Closed notes go
// to the current program's instrument, never to a straggler left open by
// another program.
func (c *channelState) noteOff(tick Ticks, pitch uint8) error {
	if err := checkPitch(pitch); err != nil {
		return err
	}

	pending := c.pending[pitch]
	if len(pending) == 0 {
		return nil
	}

	instrument := c.instrumentFor(c.program)

	kept := pending[:0]
	for _, p := range pending {
		if p.start == tick {
			kept = append(kept, p)
			continue
		}
		instrument.Notes = append(instrument.Notes, Note[Ticks]{
			Pitch:    pitch,
			Velocity: p.velocity,
			Start:    p.start,
			End:      tick,
		})
	}
	c.pending[pitch] = kept

	return nil
}

func (c *channelState) pitchBend(tick Ticks, bend uint16) {
	i := c.current()
	i.PitchBends = append(i.PitchBends, PitchBend[Ticks]{Bend: bend, Time: tick})
}

func (c *channelState) controlChange(tick Ticks, number, value uint8) {
	i := c.current()
	i.ControlChanges = append(i.ControlChanges, ControlChange[Ticks]{Number: number, Value: value, Time: tick})
}

// instrumentFor gets the instrument of program, promoting the straggler when
// the program has none yet.
func (c *channelState) instrumentFor(program uint8) *Instrument[Ticks] {
	if i, ok := c.instruments[program]; ok {
		return i
	}

	i := c.straggler
	c.straggler = nil
	if i == nil {
		i = newInstrument[Ticks](program)
	}
	i.Program = program
	i.IsDrum = c.isDrum
	c.instruments[program] = i

	return i
}

// current returns the active instrument: straggler, then the current
// program's instrument, then a new straggler.
func (c *channelState) current() *Instrument[Ticks] {
	if c.straggler != nil {
		return c.straggler
	}
	if i, ok := c.instruments[c.program]; ok {
		return i
	}
	c.straggler = newInstrument[Ticks](0)
	c.straggler.IsDrum = c.isDrum
	return c.straggler
}

// unmatched counts note-ons that never met a note-off.
func (c *channelState) unmatched() int {
	n := 0
	for _, p := range c.pending {
		n += len(p)
	}
	return n
}

// drain hands over the channel's instruments ordered by program number. An
// orphaned straggler is appended last when keepOrphan is set.
func (c *channelState) drain(keepOrphan bool) (instruments []*Instrument[Ticks], orphan *Instrument[Ticks]) {
	programs := make([]int, 0, len(c.instruments))
	for p := range c.instruments {
		programs = append(programs, int(p))
	}
	sort.Ints(programs)

	for _, p := range programs {
		instruments = append(instruments, c.instruments[uint8(p)])
	}

	orphan = c.straggler
	if orphan != nil && keepOrphan {
		instruments = append(instruments, orphan)
	}

	c.instruments = make(map[uint8]*Instrument[Ticks])
	c.straggler = nil

	return instruments, orphan
}
