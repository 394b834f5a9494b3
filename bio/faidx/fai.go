/*
Package faidx implements the random-access subsystem: FaiIndex, GziIndex, and
the IndexedReader that composes them with a seekable bio/bgzf.Source to fetch
arbitrary subranges of a BGZF-compressed FASTA without decompressing more
blocks than necessary.
*/
package faidx

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/basepair-labs/seqio/bio/seq"
)

// faiEntry is one sequence's layout record: the four numeric fields of one
// line of a .fai file (the name, the line's first field, is the map key).
type faiEntry struct {
	length    uint64
	offset    uint64
	lineBases uint64
	lineWidth uint64
}

// Fai is an in-memory .fai index: sequence name -> layout. A plain map
// would not preserve lookup order, and order is part of the .fai contract,
// so insertion order is tracked separately via a parallel names slice
// alongside the map.
type Fai struct {
	names   []string
	entries map[string]faiEntry
}

// ParseFai parses a .fai file's full contents from r.
func ParseFai(r io.Reader) (*Fai, error) {
	fai := &Fai{entries: make(map[string]faiEntry)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 5 {
			return nil, seq.IndexCorruptErr(concatIntStr(".fai line ", lineNo, ": expected 5 tab-separated fields"), nil)
		}
		name := fields[0]
		length, err1 := strconv.ParseUint(fields[1], 10, 64)
		offset, err2 := strconv.ParseUint(fields[2], 10, 64)
		lineBases, err3 := strconv.ParseUint(fields[3], 10, 64)
		lineWidth, err4 := strconv.ParseUint(fields[4], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, seq.IndexCorruptErr(concatIntStr(".fai line ", lineNo, ": non-decimal integer field"), nil)
		}
		if lineWidth < lineBases {
			return nil, seq.IndexCorruptErr(concatIntStr(".fai line ", lineNo, ": line_width < line_bases"), nil)
		}
		if delta := lineWidth - lineBases; delta != 1 && delta != 2 {
			return nil, seq.IndexCorruptErr(concatIntStr(".fai line ", lineNo, ": line_width - line_bases must be 1 or 2"), nil)
		}
		if _, dup := fai.entries[name]; !dup {
			fai.names = append(fai.names, name)
		}
		fai.entries[name] = faiEntry{length: length, offset: offset, lineBases: lineBases, lineWidth: lineWidth}
	}
	if err := scanner.Err(); err != nil {
		return nil, seq.IOErr("reading .fai", err)
	}
	return fai, nil
}

// Names returns sequence names in the order they first appeared in the .fai
// file.
func (f *Fai) Names() []string { return f.names }

// Length returns the declared length of name, and whether name is present.
func (f *Fai) Length(name string) (uint64, bool) {
	e, ok := f.entries[name]
	return e.length, ok
}

// Locate computes the uncompressed byte-offset range [start_byte, end_byte)
// for bases [start, end) of sequence name, via the
// offset + (i/line_bases)*line_width + (i%line_bases) formula applied to i =
// start and i = end (end_byte uses the same formula projected at the base
// just past the last one requested, since newlines interleave the byte
// stream every line_bases bases).
func (f *Fai) Locate(name string, start, end uint64) (startByte, endByte uint64, err error) {
	e, ok := f.entries[name]
	if !ok {
		return 0, 0, seq.UnknownSequenceErr(name)
	}
	if start > end || end > e.length {
		return 0, 0, seq.RangeOutOfBoundsErr(concatRange(name, start, end, e.length))
	}
	startByte = byteOffset(e, start)
	endByte = byteOffset(e, end)
	return startByte, endByte, nil
}

// byteOffset maps base index i to its uncompressed byte offset within the
// record's span, per that formula. It is also used, with i =
// end, to locate the exclusive end of a fetch range. When end is a multiple
// of line_bases the result lies just past that line's terminator, so the
// range then also covers the line's newline bytes; FetchRange strips them.
func byteOffset(e faiEntry, i uint64) uint64 {
	fullLines := i / e.lineBases
	rem := i % e.lineBases
	return e.offset + fullLines*e.lineWidth + rem
}

func concatIntStr(prefix string, n int, suffix string) string {
	return prefix + strconv.Itoa(n) + suffix
}

func concatRange(name string, start, end, length uint64) string {
	return "fetch range [" + strconv.FormatUint(start, 10) + "," + strconv.FormatUint(end, 10) +
		") out of bounds for " + name + " (length " + strconv.FormatUint(length, 10) + ")"
}
