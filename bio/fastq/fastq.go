/*
Package fastq implements the FASTQ StreamParser.

FASTQ is a flat text format developed circa 2000 to store nucleotide
sequencing reads alongside per-base quality scores: a strict four-line
record of '@' header, sequence, '+' sentinel (optionally repeating the
header), and quality string of equal length to the sequence. Unlike FASTA,
a FASTQ record never spans more than one sequence line, so this parser
generalizes a line-by-line reader directly
onto seq.Record rather than introducing fasta's multi-line accumulation
loop.
*/
package fastq

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"os"

	"github.com/basepair-labs/seqio/bio/seq"
)

// Parser reads successive FASTQ records from an underlying byte stream into
// a caller-supplied seq.Record.
type Parser struct {
	br   *bufio.Reader
	line []byte
}

// NewParser returns a Parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{br: seq.NewBufferedReader(&readerSource{r})}
}

type readerSource struct{ io.Reader }

func (readerSource) Close() error { return nil }

// Next fills record with the next FASTQ record and returns the number of
// bytes written into its buffers. Returns io.EOF when no record remains.
// Hitting EOF partway through a record (after the header line but before all
// four lines are read) is reported as a TruncatedRecord error.
func (p *Parser) Next(record *seq.Record) (int, error) {
	record.Clear()

	header, err := seq.ReadLine(p.br, &p.line)
	if err != nil {
		if seq.IsEOF(err) && len(header) == 0 {
			return 0, io.EOF
		}
		if seq.IsEOF(err) {
			return 0, seq.TruncatedRecordErr("EOF inside FASTQ header line")
		}
		return 0, err
	}
	if len(header) == 0 || header[0] != '@' {
		return 0, seq.MalformedHeaderErr("expected '@' to start a FASTQ record")
	}
	name := append([]byte(nil), header[1:]...)
	record.AppendName(name)
	wrote := len(name)

	seqLine, err := seq.ReadLine(p.br, &p.line)
	if err != nil {
		return wrote, truncatedOrErr(err, "EOF after FASTQ header, before sequence line")
	}
	record.AppendSequence(seqLine)
	wrote += len(seqLine)

	sepLine, err := seq.ReadLine(p.br, &p.line)
	if err != nil {
		return wrote, truncatedOrErr(err, "EOF before FASTQ '+' separator line")
	}
	if len(sepLine) == 0 || sepLine[0] != '+' {
		return wrote, seq.MalformedRecordErr("expected '+' separator line")
	}
	if rest := sepLine[1:]; len(rest) > 0 && !bytes.Equal(rest, name) {
		return wrote, seq.MalformedRecordErr("'+' line repeats a name that does not match the header")
	}

	qualLine, err := seq.ReadLine(p.br, &p.line)
	if err != nil {
		if seq.IsEOF(err) && len(qualLine) == 0 {
			return wrote, seq.TruncatedRecordErr("EOF before FASTQ quality line")
		}
		if !seq.IsEOF(err) {
			return wrote, err
		}
	}
	record.AppendQuality(qualLine)
	wrote += len(qualLine)

	if len(qualLine) != record.SeqLen() {
		return wrote, seq.LengthMismatchErr("quality length does not match sequence length")
	}
	return wrote, nil
}

func truncatedOrErr(err error, msg string) error {
	if seq.IsEOF(err) {
		return seq.TruncatedRecordErr(msg)
	}
	return err
}

/******************************************************************************

Read/Write convenience functions.

******************************************************************************/

// Read parses an entire uncompressed FASTQ file into a slice of records.
func Read(path string) ([]*seq.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, seq.IOErr("opening "+path, err)
	}
	defer f.Close()
	return parseAll(f)
}

// ReadGz parses an entire gzip-compressed FASTQ file into a slice of
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

// Write serializes records to w in canonical four-line FASTQ form.
func Write(records []*seq.Record, w io.Writer) error {
	var buf []byte
	for _, r := range records {
		buf = buf[:0]
		buf = r.WriteFastq(buf)
		if _, err := w.Write(buf); err != nil {
			return seq.IOErr("writing FASTQ record", err)
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
