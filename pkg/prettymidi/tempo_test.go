package prettymidi

import (
	"math"
	"testing"

	"github.com/Garik-/prettymidi/pkg/midi"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reference scale computed in float64, independent of the float32 code path
func scaleOf(bpm float64, resolution uint16) float64 {
	return 60 / (bpm * float64(resolution))
}

func assertScales(t *testing.T, want []struct {
	tick uint32
	bpm  float64
}, resolution uint16, got []TickScale) {
	t.Helper()

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, Ticks(want[i].tick), got[i].Tick, "breakpoint %d", i)
		assert.InDelta(t, scaleOf(want[i].bpm, resolution), float64(got[i].SecondsPerTick), 1e-9, "breakpoint %d", i)
	}
}

func TestTickScales_NoTempo(t *testing.T) {
	scales, err := TickScales([]TimedEvent{noteOn(0, 0, 60, 1)}, 480, Options{})
	require.NoError(t, err)

	assertScales(t, []struct {
		tick uint32
		bpm  float64
	}{{0, 120}}, 480, scales)
}

func TestTickScales_InitialTempo(t *testing.T) {
	scales, err := TickScales(nil, 96, Options{InitialTempo: 100})
	require.NoError(t, err)

	assertScales(t, []struct {
		tick uint32
		bpm  float64
	}{{0, 100}}, 96, scales)
}

func TestTickScales_Dedup(t *testing.T) {
	events := []TimedEvent{
		tempo(0, 500000),
		tempo(100, 500000),
		tempo(200, 400000),
		noteOn(250, 0, 60, 1),
		tempo(300, 400000),
		tempo(400, 500000),
	}

	scales, err := TickScales(events, 480, Options{})
	require.NoError(t, err)

	assertScales(t, []struct {
		tick uint32
		bpm  float64
	}{{0, 120}, {200, 150}, {400, 120}}, 480, scales)

	for i := 1; i < len(scales); i++ {
		assert.NotEqual(t, scales[i-1].SecondsPerTick, scales[i].SecondsPerTick)
	}
}

func TestTickScales_LateFirstTempo(t *testing.T) {
	scales, err := TickScales([]TimedEvent{tempo(960, 600000)}, 480, Options{})
	require.NoError(t, err)

	assertScales(t, []struct {
		tick uint32
		bpm  float64
	}{{0, 120}, {960, 100}}, 480, scales)
}

func TestTickScales_LateFirstTempoMatchingDefault(t *testing.T) {
	scales, err := TickScales([]TimedEvent{tempo(960, 500000), tempo(1920, 1000000)}, 480, Options{})
	require.NoError(t, err)

	assertScales(t, []struct {
		tick uint32
		bpm  float64
	}{{0, 120}, {1920, 60}}, 480, scales)
}

func TestTickScales_ZeroTempoSkipped(t *testing.T) {
	scales, err := TickScales([]TimedEvent{tempo(0, 0), tempo(10, 1000000)}, 480, Options{})
	require.NoError(t, err)

	assertScales(t, []struct {
		tick uint32
		bpm  float64
	}{{0, 120}, {10, 60}}, 480, scales)
}

func TestTickScales_Idempotent(t *testing.T) {
	events := []TimedEvent{tempo(0, 450000), tempo(480, 450000), tempo(960, 300000)}

	first, err := TickScales(events, 480, Options{})
	require.NoError(t, err)
	second, err := TickScales(events, 480, Options{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTickScales_ZeroResolution(t *testing.T) {
	_, err := TickScales(nil, 0, Options{})
	assert.True(t, errors.Is(err, ErrResolution))
}

func TestAbsolute(t *testing.T) {
	tr := &midi.Track{Events: []*midi.Event{
		{TimeDelta: 0, Kind: midi.NoteOn},
		{TimeDelta: 10, Kind: midi.NoteOff},
		{TimeDelta: 20, Kind: midi.MetaEndOfTrack},
	}}

	events, err := Absolute(tr)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, Ticks(0), events[0].Tick)
	assert.Equal(t, Ticks(10), events[1].Tick)
	assert.Equal(t, Ticks(30), events[2].Tick)
	assert.Same(t, tr.Events[1], events[1].Event)
}

func TestAbsolute_Overflow(t *testing.T) {
	tr := &midi.Track{Events: []*midi.Event{
		{TimeDelta: math.MaxUint32},
		{TimeDelta: 1},
	}}

	_, err := Absolute(tr)
	assert.True(t, errors.Is(err, ErrTickOverflow))
}

func TestMaxTick(t *testing.T) {
	tracks := [][]TimedEvent{
		{tempo(0, 500000), noteOn(100, 0, 1, 1)},
		nil,
		{noteOn(10, 0, 1, 1), noteOff(960, 0, 1)},
	}

	assert.Equal(t, Ticks(961), MaxTick(tracks))
	assert.Equal(t, Ticks(1), MaxTick(nil))
}
