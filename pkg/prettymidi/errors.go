package prettymidi

import (
	"fmt"

	"github.com/Garik-/prettymidi/pkg/midi"
	"github.com/pkg/errors"
)

// Kind tells a host how to render an Error.
type Kind int

const (
	KindGeneric Kind = iota
	// KindIO is a failure opening or reading the input.
	KindIO
	// KindDecode is malformed input bytes or a structurally invalid sequence.
	KindDecode
	// KindUnsupported is a valid sequence in a shape this package rejects.
	KindUnsupported
	// KindInternal is a broken decoder contract, e.g. a channel outside 0..15.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindDecode:
		return "decode"
	case KindUnsupported:
		return "unsupported"
	case KindInternal:
		return "internal"
	}
	return "generic"
}

var (
	ErrNonMetrical     = errors.New("non metrical timing not supported")
	ErrFormat          = errors.New("only multi-track (format 1) sequences are supported")
	ErrNoTracks        = errors.New("sequence has no tracks")
	ErrResolution      = errors.New("resolution must be greater than zero")
	ErrChannelRange    = errors.New("channel out of range")
	ErrPitchRange      = errors.New("pitch out of range")
	ErrUnorderedNotes  = errors.New("events are not ordered by tick")
	ErrNoScales        = errors.New("at least one tick scale is required")
	ErrUnorderedScales = errors.New("tick scales are not ordered by tick")
	ErrTickOverflow    = errors.New("absolute tick overflows 32 bits")
	ErrCharset         = errors.New("unknown charset")
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("prettymidi: %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGeneric
}

// decodeError sorts decoder failures into malformed input and plain I/O errors.
func decodeError(op string, err error) error {
	switch {
	case errors.Is(err, midi.ErrFmtNotSupported),
		errors.Is(err, midi.ErrUnexpectedData),
		errors.Is(err, midi.ErrTruncated):
		return newError(KindDecode, op, err)
	}
	return newError(KindIO, op, err)
}
