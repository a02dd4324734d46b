package prettymidi

// Ticks is a position in MIDI ticks.
type Ticks uint32

// Seconds is a position in real time.
type Seconds float64

// Time is the unit a record is measured in. Tick-timed records are produced
// by extraction and only become Seconds through a Converter.
type Time interface {
	Ticks | Seconds
}

type Note[T Time] struct {
	Pitch    uint8 `json:"pitch"`
	Velocity uint8 `json:"velocity"`
	Start    T     `json:"start"`
	End      T     `json:"end"`
}

// Duration returns End - Start.
func (n Note[T]) Duration() T {
	return n.End - n.Start
}

type PitchBend[T Time] struct {
	// Bend is the raw 14 bit value, 8192 is center.
	Bend uint16 `json:"bend"`
	Time T      `json:"time"`
}

// Relative returns the bend in -8192..8191.
func (p PitchBend[T]) Relative() int {
	return int(p.Bend) - 8192
}

type ControlChange[T Time] struct {
	Number uint8 `json:"number"`
	Value  uint8 `json:"value"`
	Time   T     `json:"time"`
}

type Instrument[T Time] struct {
	Program        uint8              `json:"program"`
	Name           string             `json:"name"`
	IsDrum         bool               `json:"is_drum"`
	Notes          []Note[T]          `json:"notes"`
	PitchBends     []PitchBend[T]     `json:"pitch_bends"`
	ControlChanges []ControlChange[T] `json:"control_changes"`
}

func newInstrument[T Time](program uint8) *Instrument[T] {
	return &Instrument[T]{Program: program}
}

// EndTime returns the latest note end, bend or controller time.
func (i *Instrument[T]) EndTime() T {
	var end T
	for _, n := range i.Notes {
		if n.End > end {
			end = n.End
		}
	}
	for _, b := range i.PitchBends {
		if b.Time > end {
			end = b.Time
		}
	}
	for _, c := range i.ControlChanges {
		if c.Time > end {
			end = c.Time
		}
	}
	return end
}
