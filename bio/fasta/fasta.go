/*
Package fasta implements the FASTA StreamParser.

FASTA is a flat text format developed in 1985 to store nucleotide and amino
acid sequences: a header line beginning with '>' followed by one or more
sequence lines. This package reads it directly into a reusable seq.Record,
avoiding a per-record string() allocation on every call to Next.
*/
package fasta

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"os"

	"github.com/basepair-labs/seqio/bio/seq"
)

// Parser reads successive FASTA records from an underlying byte stream into
// a caller-supplied seq.Record. It is initialized with NewParser and runs a
// small header/sequence state machine (awaiting a header line, then
// accumulating sequence lines until the next header or EOF) over an
// unbounded, growable line buffer (seq.ReadLine) instead of a fixed scanner
// buffer.
type Parser struct {
	br      *bufio.Reader
	line    []byte
	started bool
	// pendingHeader holds a header line already consumed while looking for
	// the end of the previous record's sequence, to be used as the next
	// record's name.
	pendingHeader  []byte
	havePendingHdr bool
	exhausted      bool
}

// NewParser returns a Parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{br: seq.NewBufferedReader(&readerSource{r})}
}

// readerSource adapts a plain io.Reader to seq.ByteSource for
// NewBufferedReader's sake when callers hand us a bare io.Reader rather than
// a seq.ByteSource.
type readerSource struct{ io.Reader }

func (readerSource) Close() error { return nil }

// Next fills record with the next FASTA record and returns the number of
// bytes written into its buffers. On clean EOF before any header, it returns
// (0, io.EOF). If EOF is hit inside a record (no sequence bytes at all were
// read for a header), it returns a TruncatedRecord error.
func (p *Parser) Next(record *seq.Record) (int, error) {
	record.Clear()
	if p.exhausted {
		return 0, io.EOF
	}

	var header []byte
	if p.havePendingHdr {
		header = p.pendingHeader
		p.havePendingHdr = false
	} else {
		var err error
		header, err = p.nextHeaderLine()
		if err != nil {
			if seq.IsEOF(err) && !p.started {
				p.exhausted = true
				return 0, io.EOF
			}
			return 0, err
		}
	}
	p.started = true
	record.AppendName(header)

	wrote := len(header)
	sawSequence := false
	for {
		line, err := seq.ReadLine(p.br, &p.line)
		if err != nil {
			if seq.IsEOF(err) {
				if len(line) > 0 {
					record.AppendSequence(line)
					wrote += len(line)
					sawSequence = true
				}
				p.exhausted = true
				if !sawSequence {
					return wrote, seq.TruncatedRecordErr("EOF before any sequence bytes for record")
				}
				return wrote, nil
			}
			return wrote, err
		}
		if len(line) == 0 {
			continue // blank sequence lines are skipped silently
		}
		if line[0] == '>' {
			// Next record's header; stash it and stop without consuming
			// more.
			hdr := append([]byte(nil), line[1:]...)
			p.pendingHeader = hdr
			p.havePendingHdr = true
			if !sawSequence {
				return wrote, seq.TruncatedRecordErr("empty sequence before next header")
			}
			return wrote, nil
		}
		record.AppendSequence(line)
		wrote += len(line)
		sawSequence = true
	}
}

// nextHeaderLine reads lines, skipping blank ones, until it finds a line
// starting with '>' (returning it with the sentinel stripped) or hits EOF.
func (p *Parser) nextHeaderLine() ([]byte, error) {
	for {
		line, err := seq.ReadLine(p.br, &p.line)
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			continue
		}
		if line[0] != '>' {
			return nil, seq.MalformedHeaderErr("expected '>' to start a FASTA record")
		}
		return append([]byte(nil), line[1:]...), nil
	}
}

/******************************************************************************

Read/Write convenience functions.

******************************************************************************/

// Read parses an entire uncompressed FASTA file into a slice of records.
func Read(path string) ([]*seq.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, seq.IOErr("opening "+path, err)
	}
	defer f.Close()
	return parseAll(f)
}

// ReadGz parses an entire gzip-compressed FASTA file into a slice of
// records.
func ReadGz(path string) ([]*seq.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, seq.IOErr("opening "+path, err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, seq.IOErr("reading gzip header of "+path, err)
	}
	defer zr.Close()
	return parseAll(zr)
}

func parseAll(r io.Reader) ([]*seq.Record, error) {
	parser := NewParser(r)
	var out []*seq.Record
	var rec seq.Record
	for {
		_, err := parser.Next(&rec)
		if err != nil {
			if seq.IsEOF(err) {
				return out, nil
			}
			return out, err
		}
		out = append(out, rec.Clone())
	}
}

// lineWidth is the column at which Write wraps sequence output.
const lineWidth = 80

// Write serializes records to w, wrapping each sequence at 80 columns.
func Write(records []*seq.Record, w io.Writer) error {
	var buf bytes.Buffer
	for _, r := range records {
		buf.Reset()
		buf.WriteByte('>')
		buf.Write(r.Name())
		buf.WriteByte('\n')
		seqBytes := r.Sequence()
		for i := 0; i < len(seqBytes); i += lineWidth {
			end := i + lineWidth
			if end > len(seqBytes) {
				end = len(seqBytes)
			}
			buf.Write(seqBytes[i:end])
			buf.WriteByte('\n')
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return seq.IOErr("writing FASTA record", err)
		}
	}
	return nil
}

// WriteFile serializes records to a new file at path.
func WriteFile(records []*seq.Record, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return seq.IOErr("creating "+path, err)
	}
	defer f.Close()
	return Write(records, f)
}
