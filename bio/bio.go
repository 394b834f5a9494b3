/*
Package bio provides the auto-detecting entry points that sit above
bio/fasta and bio/fastq: open a path, file, or URL without knowing in
advance whether it holds FASTA or FASTQ, plain text, gzip, or BGZF, and get
back a uniform record stream. Concurrent multi-file fan-in (ManyToChannel)
is carried forward unchanged in spirit, built
on the same golang.org/x/sync/errgroup pipeline.
*/
package bio

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/basepair-labs/seqio/bio/bgzf"
	"github.com/basepair-labs/seqio/bio/fasta"
	"github.com/basepair-labs/seqio/bio/fastq"
	"github.com/basepair-labs/seqio/bio/seq"
	"golang.org/x/sync/errgroup"
)

// Format identifies which concrete grammar a stream follows. It reuses
// seq.Format's values so callers never need to convert between the two.
type Format = seq.Format

const (
	Unknown = seq.Unknown
	Fasta   = seq.Fasta
	Fastq   = seq.Fastq
	Empty   = seq.Empty
)

// recordParser is the minimal shape both bio/fasta.Parser and
// bio/fastq.Parser satisfy, letting Parser dispatch to either without a
// generic type parameter: there is exactly one Data type (seq.Record) here,
// so a generic parameterized over it would be unnecessary indirection for
// this module's single-record-type world.
type recordParser interface {
	Next(record *seq.Record) (int, error)
}

// Parser wraps either a fasta.Parser or a fastq.Parser behind one type,
// selected once at construction time by format auto-detection.
type Parser struct {
	inner  recordParser
	format Format
	src    seq.ByteSource
}

// Format reports which grammar this parser was constructed for.
func (p *Parser) Format() Format { return p.format }

// Next fills record with the next record from the underlying stream. See
// bio/fasta.Parser.Next and bio/fastq.Parser.Next for the exact EOF/
// truncation contract, which this method forwards unchanged.
func (p *Parser) Next(record *seq.Record) (int, error) {
	return p.inner.Next(record)
}

// Close releases the underlying byte source, if this Parser owns one (as
// opposed to having been built directly over a caller-provided
// *bufio.Reader via NewParser).
func (p *Parser) Close() error {
	if p.src == nil {
		return nil
	}
	return p.src.Close()
}

// NewParser peeks br's first non-whitespace byte to decide whether to
// construct a FASTA or FASTQ parser over it, using the
// '>' / '@' dispatch. Empty input is not an error; Next immediately returns
// io.EOF.
func NewParser(br *bufio.Reader) (*Parser, error) {
	format, err := seq.DetectFormat(br)
	if err != nil {
		return nil, err
	}
	p := &Parser{format: format}
	switch format {
	case seq.Fasta:
		p.inner = fasta.NewParser(br)
	case seq.Fastq:
		p.inner = fastq.NewParser(br)
	default:
		p.inner = emptyParser{}
	}
	return p, nil
}

// emptyParser serves an empty or whitespace-only stream: Next always
// reports io.EOF.
type emptyParser struct{}

func (emptyParser) Next(*seq.Record) (int, error) { return 0, io.EOF }

// OpenStream opens path for streaming, auto-detecting both compression
// (plain / gzip / BGZF, by extension and, for ".gz", by sniffing the BGZF
// extra-field signature) and record format (FASTA / FASTQ).
func OpenStream(path string) (*Parser, error) {
	var src seq.ByteSource
	var err error

	switch {
	case strings.HasSuffix(path, ".gz"):
		src, err = openPossiblyBGZF(path)
	default:
		src, err = seq.NewPlainFileSource(path)
	}
	if err != nil {
		return nil, err
	}

	br := seq.NewBufferedReader(src)
	p, err := NewParser(br)
	if err != nil {
		src.Close()
		return nil, err
	}
	p.src = src
	return p, nil
}

// openPossiblyBGZF distinguishes a BGZF-framed .gz file (seekable, but used
// here purely as a streaming source) from a plain gzip stream by sniffing
// the first member's header for the BGZF extra-field signature.
func openPossiblyBGZF(path string) (seq.ByteSource, error) {
	probe, err := seq.NewPlainFileSource(path)
	if err != nil {
		return nil, err
	}
	header := make([]byte, 32)
	n, _ := probe.Read(header)
	probe.Close()

	if bgzf.IsBGZF(header[:n]) {
		return bgzf.NewFileSource(path)
	}
	return seq.NewGzipFileSource(path)
}

// OpenStreamURL opens url for streaming. isBGZF tells the function whether
// to treat the resource as BGZF (OpenStream sniffs local .gz files for the
// BGZF signature; URL construction requires the caller to say so).
func OpenStreamURL(url string, isBGZF bool) (*Parser, error) {
	var src seq.ByteSource
	var err error
	if isBGZF {
		src, err = bgzf.NewHTTPSource(url)
	} else {
		src, err = seq.NewHTTPSource(url)
	}
	if err != nil {
		return nil, err
	}
	br := seq.NewBufferedReader(src)
	p, err := NewParser(br)
	if err != nil {
		src.Close()
		return nil, err
	}
	p.src = src
	return p, nil
}

/******************************************************************************

Iteration helpers

******************************************************************************/

// Iterator is a lazy, finite, non-restartable sequence of independently
// owned *seq.Record values pulled from a Parser one step at a time. Unlike
// ForEach, nothing is read until Next is called, so a caller can stop
// partway through a large or HTTP-backed stream without draining it.
type Iterator struct {
	p       *Parser
	scratch seq.Record
	done    bool
}

// Iter wraps p in an Iterator. p must not be advanced by any other caller
// once iteration begins.
func (p *Parser) Iter() *Iterator { return &Iterator{p: p} }

// Next advances the iterator one step, returning an owned Record that
// survives past subsequent Next calls. On clean end of stream it returns
// (nil, io.EOF). Any other error is returned once, as the terminal element
// of the sequence; every Next call after that (including after io.EOF)
// also returns io.EOF.
func (it *Iterator) Next() (*seq.Record, error) {
	if it.done {
		return nil, io.EOF
	}
	_, err := it.p.Next(&it.scratch)
	if err != nil {
		it.done = true
		if seq.IsEOF(err) {
			return nil, io.EOF
		}
		return nil, err
	}
	return it.scratch.Clone(), nil
}

// IterFasta wraps p in an Iterator, failing if p was not detected as FASTA.
func IterFasta(p *Parser) (*Iterator, error) {
	if p.Format() != Fasta {
		return nil, seq.MalformedRecordErr("IterFasta: parser was not detected as FASTA")
	}
	return p.Iter(), nil
}

// IterFastq wraps p in an Iterator, failing if p was not detected as FASTQ.
func IterFastq(p *Parser) (*Iterator, error) {
	if p.Format() != Fastq {
		return nil, seq.MalformedRecordErr("IterFastq: parser was not detected as FASTQ")
	}
	return p.Iter(), nil
}

// ForEach calls do once per record from p, reusing a single scratch Record
// across calls — zero allocation once that Record's buffers reach their
// working size. do must not retain the Record past its call; callers that
// need to keep it should call Clone.
func ForEach(p *Parser, do func(*seq.Record) error) error {
	var rec seq.Record
	for {
		_, err := p.Next(&rec)
		if err != nil {
			if seq.IsEOF(err) {
				return nil
			}
			return err
		}
		if err := do(&rec); err != nil {
			return err
		}
	}
}

/******************************************************************************

Concurrent higher-level functions.
bio.ParseToChannel / bio.ManyToChannel.

******************************************************************************/

// ParseToChannel pipes all records from p into channel, then optionally
// closes it. If parsing a single file, keepChannelOpen should be false; if
// many files are being fanned into one channel, it should be true so an
// external caller closes the channel once all parsers finish.
func (p *Parser) ParseToChannel(ctx context.Context, channel chan<- *seq.Record, keepChannelOpen bool) error {
	var rec seq.Record
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			_, err := p.Next(&rec)
			if err != nil {
				if seq.IsEOF(err) {
					err = nil
				}
				if !keepChannelOpen {
					close(channel)
				}
				return err
			}
			channel <- rec.Clone()
		}
	}
}

// ManyToChannel concurrently parses many independent parsers, each over its
// own ByteSource, into a single channel, closing it once all are done or
// the first one errors. This is not concurrent parsing of a single stream
// (a declared non-goal) — each goroutine owns a disjoint parser/source
// pair.
func ManyToChannel(ctx context.Context, channel chan<- *seq.Record, parsers ...*Parser) error {
	errorGroup, ctx := errgroup.WithContext(ctx)
	for _, p := range parsers {
		parser := p
		errorGroup.Go(func() error {
			return parser.ParseToChannel(ctx, channel, true)
		})
	}
	err := errorGroup.Wait()
	close(channel)
	return err
}
