package seq

import (
	"bufio"
	"errors"
	"io"
)

// Format identifies which concrete grammar a stream follows.
type Format int

const (
	// Unknown means the format could not be determined.
	Unknown Format = iota
	// Fasta means the stream's first non-whitespace byte is '>'.
	Fasta
	// Fastq means the stream's first non-whitespace byte is '@'.
	Fastq
	// Empty means the stream produced no bytes other than whitespace; not an
	// error.
	Empty
)

// DetectFormat peeks (without consuming) the first non-whitespace byte of
// br. It returns Empty, not an error, for a stream that is empty or contains
// only whitespace. Any other leading byte that isn't '>' or '@' is a
// MalformedHeader error.
func DetectFormat(br *bufio.Reader) (Format, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Empty, nil
			}
			return Unknown, IOErr("peeking format byte", err)
		}
		switch b[0] {
		case '\n', '\r', ' ', '\t':
			if _, err := br.Discard(1); err != nil {
				return Unknown, IOErr("discarding leading whitespace", err)
			}
			continue
		case '>':
			return Fasta, nil
		case '@':
			return Fastq, nil
		default:
			return Unknown, MalformedHeaderErr("first byte is neither '>' nor '@'")
		}
	}
}
