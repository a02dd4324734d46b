package prettymidi

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1024 ticks per second, then 512 ticks per second from tick 1024
var twoSegments = []TickScale{
	{Tick: 0, SecondsPerTick: 1.0 / 1024},
	{Tick: 1024, SecondsPerTick: 1.0 / 512},
}

func assertNote(t *testing.T, start, end float64, n Note[Seconds]) {
	t.Helper()
	assert.InDelta(t, start, float64(n.Start), 1e-9, "start")
	assert.InDelta(t, end, float64(n.End), 1e-9, "end")
}

func spanningInstrument() *Instrument[Ticks] {
	return &Instrument[Ticks]{
		Program: 3,
		Name:    "lead",
		Notes: []Note[Ticks]{
			{Pitch: 60, Velocity: 100, Start: 0, End: 512},
			{Pitch: 61, Velocity: 101, Start: 512, End: 1536},
			{Pitch: 62, Velocity: 102, Start: 1024, End: 1536},
			{Pitch: 63, Velocity: 103, Start: 1536, End: 2048},
		},
		PitchBends:     []PitchBend[Ticks]{{Bend: 0, Time: 0}, {Bend: 16383, Time: 2048}},
		ControlChanges: []ControlChange[Ticks]{{Number: 64, Value: 127, Time: 1024}},
	}
}

func TestConverter_EndAtStartSegment(t *testing.T) {
	c, err := NewConverter(twoSegments, EndAtStartSegment)
	require.NoError(t, err)

	out, err := c.Convert(spanningInstrument())
	require.NoError(t, err)

	assert.Equal(t, uint8(3), out.Program)
	assert.Equal(t, "lead", out.Name)
	require.Len(t, out.Notes, 4)

	assertNote(t, 0, 0.5, out.Notes[0])
	// held across the tempo change, the end stays in the first segment
	assertNote(t, 0.5, 1.5, out.Notes[1])
	// starting on the breakpoint still uses the segment before it
	assertNote(t, 1.0, 1.5, out.Notes[2])
	assertNote(t, 2.0, 3.0, out.Notes[3])

	assert.InDelta(t, 1.0, float64(out.Notes[1].Duration()), 1e-9)
	assert.Equal(t, uint8(61), out.Notes[1].Pitch)
	assert.Equal(t, uint8(101), out.Notes[1].Velocity)

	require.Len(t, out.PitchBends, 2)
	assert.InDelta(t, 0, float64(out.PitchBends[0].Time), 1e-9)
	assert.InDelta(t, 3.0, float64(out.PitchBends[1].Time), 1e-9)
	assert.Equal(t, 8191, out.PitchBends[1].Relative())

	require.Len(t, out.ControlChanges, 1)
	assert.InDelta(t, 1.0, float64(out.ControlChanges[0].Time), 1e-9)
	assert.Equal(t, uint8(64), out.ControlChanges[0].Number)
}

func TestConverter_EndAtOwnSegment(t *testing.T) {
	c, err := NewConverter(twoSegments, EndAtOwnSegment)
	require.NoError(t, err)

	out, err := c.Convert(spanningInstrument())
	require.NoError(t, err)
	require.Len(t, out.Notes, 4)

	assertNote(t, 0, 0.5, out.Notes[0])
	assertNote(t, 0.5, 2.0, out.Notes[1])
	assertNote(t, 1.0, 2.0, out.Notes[2])
	assertNote(t, 2.0, 3.0, out.Notes[3])
}

func TestConverter_AccumulatesSegments(t *testing.T) {
	scales := append(append([]TickScale(nil), twoSegments...), TickScale{Tick: 2048, SecondsPerTick: 1.0 / 256})

	c, err := NewConverter(scales, EndAtStartSegment)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, float64(c.Seconds(1024)), 1e-9)
	assert.InDelta(t, 3.0, float64(c.Seconds(2048)), 1e-9)
	assert.InDelta(t, 7.0, float64(c.Seconds(3072)), 1e-9)

	out, err := c.Convert(&Instrument[Ticks]{Notes: []Note[Ticks]{
		{Pitch: 1, Start: 100, End: 200},
		{Pitch: 2, Start: 3072, End: 3328},
	}})
	require.NoError(t, err)
	assertNote(t, 100.0/1024, 200.0/1024, out.Notes[0])
	assertNote(t, 7.0, 8.0, out.Notes[1])
}

func TestConverter_RejectsUnordered(t *testing.T) {
	c, err := NewConverter(twoSegments, EndAtStartSegment)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   *Instrument[Ticks]
	}{
		{"notes", &Instrument[Ticks]{Notes: []Note[Ticks]{{Start: 100, End: 200}, {Start: 50, End: 60}}}},
		{"end before start", &Instrument[Ticks]{Notes: []Note[Ticks]{{Start: 100, End: 50}}}},
		{"pitch bends", &Instrument[Ticks]{PitchBends: []PitchBend[Ticks]{{Time: 10}, {Time: 5}}}},
		{"control changes", &Instrument[Ticks]{ControlChanges: []ControlChange[Ticks]{{Time: 10}, {Time: 5}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Convert(tt.in)
			assert.True(t, errors.Is(err, ErrUnorderedNotes), "got %v", err)
		})
	}
}

func TestNewConverter_Errors(t *testing.T) {
	_, err := NewConverter(nil, EndAtStartSegment)
	assert.True(t, errors.Is(err, ErrNoScales))

	_, err = NewConverter([]TickScale{{Tick: 0, SecondsPerTick: 1}, {Tick: 20, SecondsPerTick: 2}, {Tick: 10, SecondsPerTick: 3}}, EndAtStartSegment)
	assert.True(t, errors.Is(err, ErrUnorderedScales))
	assert.False(t, errors.Is(err, ErrUnorderedNotes))
}

func TestInstrument_EndTime(t *testing.T) {
	i := spanningInstrument()
	assert.Equal(t, Ticks(2048), i.EndTime())

	i.PitchBends = nil
	assert.Equal(t, Ticks(2048), i.EndTime())

	i.Notes = i.Notes[:1]
	assert.Equal(t, Ticks(1024), i.EndTime())

	assert.Equal(t, Seconds(0), (&Instrument[Seconds]{}).EndTime())
}
