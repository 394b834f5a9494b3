/*
Package seq provides the shared low-level plumbing used by every format in
this module: the reusable Record buffer, the ByteSource abstraction, format
auto-detection, and the error Kind taxonomy. Concrete formats (bio/fasta,
bio/fastq) and the random-access subsystem (bio/faidx, bio/bgzf) build on top
of this package; bio/fasta and bio/fastq do not depend on each other, and
bio/faidx reads through bio/bgzf.
*/
package seq

import "bytes"

// Record is a reusable, growable container for a single parsed sequence.
// Name holds the identifier line with the leading sentinel (">" or "@")
// stripped and any trailing newline trimmed. Sequence is the concatenation of
// raw sequence bytes with no internal whitespace. Quality holds FASTQ quality
// scores and is left empty for FASTA records.
//
// A Record is meant to be created once and refilled by repeated parses: Clear
// truncates the three buffers to zero length without releasing their backing
// arrays, so a hot parsing loop that calls Clear before every Next incurs no
// allocation once the buffers have grown to their working size.
type Record struct {
	name     []byte
	sequence []byte
	quality  []byte
}

// Clear truncates all three buffers to zero length. Capacity is preserved.
func (r *Record) Clear() {
	r.name = r.name[:0]
	r.sequence = r.sequence[:0]
	r.quality = r.quality[:0]
}

// AppendName appends b to the record's name buffer.
func (r *Record) AppendName(b []byte) {
	r.name = append(r.name, b...)
}

// AppendSequence appends b to the record's sequence buffer.
func (r *Record) AppendSequence(b []byte) {
	r.sequence = append(r.sequence, b...)
}

// AppendQuality appends b to the record's quality buffer.
func (r *Record) AppendQuality(b []byte) {
	r.quality = append(r.quality, b...)
}

// SetName replaces the name buffer's contents with b, reusing capacity.
func (r *Record) SetName(b []byte) {
	r.name = append(r.name[:0], b...)
}

// Name returns the full identifier line (id + optional description), minus
// the leading sentinel byte.
func (r *Record) Name() []byte { return r.name }

// Sequence returns the raw sequence bytes.
func (r *Record) Sequence() []byte { return r.sequence }

// Quality returns the raw FASTQ quality bytes. Empty for FASTA records.
func (r *Record) Quality() []byte { return r.quality }

// ID returns the prefix of Name up to the first ASCII space.
func (r *Record) ID() []byte {
	if i := bytes.IndexByte(r.name, ' '); i >= 0 {
		return r.name[:i]
	}
	return r.name
}

// Desc returns the remainder of Name after the first ASCII space, or an
// empty slice if there is no space.
func (r *Record) Desc() []byte {
	if i := bytes.IndexByte(r.name, ' '); i >= 0 {
		return r.name[i+1:]
	}
	return nil
}

// SeqLen returns the number of bytes in Sequence.
func (r *Record) SeqLen() int { return len(r.sequence) }

// IsFastq reports whether the record carries a non-empty quality string.
func (r *Record) IsFastq() bool { return len(r.quality) > 0 }

// Clone returns an independent copy of the record, owning its own buffers.
// Used by the owned-record iterator (bio.Iterator), which must hand the
// caller a Record that survives the next Next() call.
func (r *Record) Clone() *Record {
	clone := &Record{
		name:     append([]byte(nil), r.name...),
		sequence: append([]byte(nil), r.sequence...),
	}
	if len(r.quality) > 0 {
		clone.quality = append([]byte(nil), r.quality...)
	}
	return clone
}

// WriteFasta serializes the record to canonical FASTA form (the sequence is
// written on one line, not wrapped — callers that want line-wrapped output use
// bio/fasta.Write, which wraps at 80 columns the way a fixed-width writer
// does) into dst, returning the extended slice.
func (r *Record) WriteFasta(dst []byte) []byte {
	dst = append(dst, '>')
	dst = append(dst, r.name...)
	dst = append(dst, '\n')
	dst = append(dst, r.sequence...)
	dst = append(dst, '\n')
	return dst
}

// WriteFastq serializes the record to canonical four-line FASTQ form into
// dst, returning the extended slice.
func (r *Record) WriteFastq(dst []byte) []byte {
	dst = append(dst, '@')
	dst = append(dst, r.name...)
	dst = append(dst, '\n')
	dst = append(dst, r.sequence...)
	dst = append(dst, '\n', '+', '\n')
	dst = append(dst, r.quality...)
	dst = append(dst, '\n')
	return dst
}
