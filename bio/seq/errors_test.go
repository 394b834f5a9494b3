package seq

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorIsMatchesKindNotCause(t *testing.T) {
	err := IOErr("reading something", fmt.Errorf("disk on fire"))
	if !errors.Is(err, ErrIO) {
		t.Error("expected errors.Is to match same-kind sentinel")
	}
	if errors.Is(err, ErrMalformedHeader) {
		t.Error("expected errors.Is to reject a different-kind sentinel")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := IOErr("reading block", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to see through to the wrapped cause")
	}
}

func TestIsEOF(t *testing.T) {
	if !IsEOF(io.EOF) {
		t.Error("expected IsEOF(io.EOF) to be true")
	}
	if IsEOF(ErrIO) {
		t.Error("expected IsEOF to be false for an unrelated error")
	}
}

func TestUnknownSequenceErrMessage(t *testing.T) {
	err := UnknownSequenceErr("chr1")
	if err.Error() == "" {
		t.Error("expected non-empty error message")
	}
	if !errors.Is(err, ErrUnknownSequence) {
		t.Error("expected errors.Is to match KindUnknownSequence")
	}
}
