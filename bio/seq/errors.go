package seq

import (
	"errors"
	"fmt"
	"io"
)

// Kind classifies an Error without requiring callers to match on message
// text. Modeled on a GenBank-style syntax error type, generalized
// from a line/context-carrying syntax error to a flat, format-agnostic kind
// usable by both the streaming parsers and the random-access reader.
type Kind int

const (
	// KindIO is an underlying read/seek/network failure, surfaced verbatim.
	KindIO Kind = iota
	// KindMalformedHeader means the first byte of a record is neither '>'
	// nor '@' where one is expected.
	KindMalformedHeader
	// KindMalformedRecord means a FASTQ line-3 sentinel is missing or
	// mismatches the record's name.
	KindMalformedRecord
	// KindLengthMismatch means a FASTQ record's quality length differs from
	// its sequence length.
	KindLengthMismatch
	// KindTruncatedRecord means EOF was hit inside a record.
	KindTruncatedRecord
	// KindIndexCorrupt means a .fai or .gzi file failed structural
	// validation.
	KindIndexCorrupt
	// KindUnknownSequence means a random-access lookup named an absent
	// sequence.
	KindUnknownSequence
	// KindRangeOutOfBounds means random-access coordinates fell outside
	// [0, length] or were inverted.
	KindRangeOutOfBounds
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindMalformedHeader:
		return "malformed header"
	case KindMalformedRecord:
		return "malformed record"
	case KindLengthMismatch:
		return "length mismatch"
	case KindTruncatedRecord:
		return "truncated record"
	case KindIndexCorrupt:
		return "index corrupt"
	case KindUnknownSequence:
		return "unknown sequence"
	case KindRangeOutOfBounds:
		return "range out of bounds"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by every operation in this
// module. It carries a Kind for errors.Is-style branching and wraps the
// underlying cause, if any.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("seq: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("seq: %s: %s", e.Kind, e.Msg)
}

// Unwrap returns the wrapped error, if any, so errors.Is/As can see through
// to the underlying cause (e.g. io.EOF from a ByteSource).
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a sentinel for the same Kind, letting callers
// write errors.Is(err, seq.ErrMalformedHeader) instead of type-asserting.
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*Error)
	if !ok {
		return false
	}
	return sentinel.Err == nil && sentinel.Kind == e.Kind
}

// newErr builds an *Error, wrapping err if non-nil.
func newErr(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Sentinel values for errors.Is comparisons against a Kind, independent of
// message or wrapped cause.
var (
	ErrIO               = &Error{Kind: KindIO}
	ErrMalformedHeader  = &Error{Kind: KindMalformedHeader}
	ErrMalformedRecord  = &Error{Kind: KindMalformedRecord}
	ErrLengthMismatch   = &Error{Kind: KindLengthMismatch}
	ErrTruncatedRecord  = &Error{Kind: KindTruncatedRecord}
	ErrIndexCorrupt     = &Error{Kind: KindIndexCorrupt}
	ErrUnknownSequence  = &Error{Kind: KindUnknownSequence}
	ErrRangeOutOfBounds = &Error{Kind: KindRangeOutOfBounds}
)

// IOErr wraps err as a KindIO Error.
func IOErr(msg string, err error) error { return newErr(KindIO, msg, err) }

// MalformedHeaderErr builds a KindMalformedHeader Error.
func MalformedHeaderErr(msg string) error { return newErr(KindMalformedHeader, msg, nil) }

// MalformedRecordErr builds a KindMalformedRecord Error.
func MalformedRecordErr(msg string) error { return newErr(KindMalformedRecord, msg, nil) }

// LengthMismatchErr builds a KindLengthMismatch Error.
func LengthMismatchErr(msg string) error { return newErr(KindLengthMismatch, msg, nil) }

// TruncatedRecordErr builds a KindTruncatedRecord Error.
func TruncatedRecordErr(msg string) error { return newErr(KindTruncatedRecord, msg, nil) }

// IndexCorruptErr builds a KindIndexCorrupt Error, optionally wrapping err.
func IndexCorruptErr(msg string, err error) error { return newErr(KindIndexCorrupt, msg, err) }

// UnknownSequenceErr builds a KindUnknownSequence Error.
func UnknownSequenceErr(name string) error {
	return newErr(KindUnknownSequence, fmt.Sprintf("unknown sequence %q", name), nil)
}

// RangeOutOfBoundsErr builds a KindRangeOutOfBounds Error.
func RangeOutOfBoundsErr(msg string) error { return newErr(KindRangeOutOfBounds, msg, nil) }

// IsEOF reports whether err is (or wraps) io.EOF. Small helper kept here so
// callers across bio, bio/fasta, and bio/fastq share one spelling of the
// errors.Is(err, io.EOF) check.
func IsEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
