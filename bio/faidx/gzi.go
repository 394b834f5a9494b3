package faidx

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/basepair-labs/seqio/bio/seq"
)

// gziEntry is one BGZF block boundary in both coordinate spaces.
type gziEntry struct {
	compressedOffset   uint64
	uncompressedOffset uint64
}

// Gzi is an in-memory .gzi index: an ordered list of block boundaries,
// always starting with the implicit (0, 0) entry whether or not the file
// itself lists it.
type Gzi struct {
	entries []gziEntry
}

// ParseGzi parses a .gzi file's full binary contents from r: a little-endian
// u64 count N followed by N (compressed_offset, uncompressed_offset) u64
// pairs.
func ParseGzi(r io.Reader) (*Gzi, error) {
	var countBuf [8]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, seq.IndexCorruptErr(".gzi missing 8-byte count header", err)
	}
	n := binary.LittleEndian.Uint64(countBuf[:])

	entries := make([]gziEntry, 0, n+1)
	entries = append(entries, gziEntry{0, 0})

	pairBuf := make([]byte, 16)
	prev := entries[0]
	for i := uint64(0); i < n; i++ {
		if _, err := io.ReadFull(r, pairBuf); err != nil {
			return nil, seq.IndexCorruptErr("truncated .gzi block list", err)
		}
		co := binary.LittleEndian.Uint64(pairBuf[0:8])
		uo := binary.LittleEndian.Uint64(pairBuf[8:16])
		if co == 0 && uo == 0 {
			// Some encoders redundantly list the implicit first block;
			// skip the duplicate rather than reject the file.
			continue
		}
		if co <= prev.compressedOffset || uo <= prev.uncompressedOffset {
			return nil, seq.IndexCorruptErr("gzi entries must be strictly monotonically increasing", nil)
		}
		entry := gziEntry{co, uo}
		entries = append(entries, entry)
		prev = entry
	}
	return &Gzi{entries: entries}, nil
}

// ToVirtual binary-searches the largest block boundary with
// uncompressed_offset <= uoff and returns the BGZF virtual offset
// (compressed_offset << 16) | (uoff - uncompressed_offset).
func (g *Gzi) ToVirtual(uoff uint64) (uint64, error) {
	i := sort.Search(len(g.entries), func(i int) bool {
		return g.entries[i].uncompressedOffset > uoff
	}) - 1
	if i < 0 {
		return 0, seq.IndexCorruptErr("no .gzi block boundary covers the requested offset", nil)
	}
	entry := g.entries[i]
	delta := uoff - entry.uncompressedOffset
	if delta > 0xffff {
		return 0, seq.IndexCorruptErr("uncompressed delta within a BGZF block exceeds 16 bits", nil)
	}
	return (entry.compressedOffset << 16) | delta, nil
}
