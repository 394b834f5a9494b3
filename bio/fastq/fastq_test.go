package fastq

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/basepair-labs/seqio/bio/seq"
)

type wantRecord struct {
	name string
	seq  string
	qual string
}

func parseAllStrings(t *testing.T, content string) []wantRecord {
	t.Helper()
	parser := NewParser(strings.NewReader(content))
	var got []wantRecord
	var rec seq.Record
	for {
		_, err := parser.Next(&rec)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				t.Fatalf("unexpected error: %v", err)
			}
			break
		}
		got = append(got, wantRecord{name: string(rec.Name()), seq: string(rec.Sequence()), qual: string(rec.Quality())})
	}
	return got
}

func TestParser(t *testing.T) {
	for testIndex, test := range []struct {
		content  string
		expected []wantRecord
	}{
		{
			content:  "@read1\nACGT\n+\nIIII\n",
			expected: []wantRecord{{name: "read1", seq: "ACGT", qual: "IIII"}},
		},
		{
			// '+' line repeats the header name
			content:  "@read1\nACGT\n+read1\nIIII\n",
			expected: []wantRecord{{name: "read1", seq: "ACGT", qual: "IIII"}},
		},
		{
			content: "@read1\nACGT\n+\nIIII\n@read2\nTTTTGG\n+\n!!!!!!\n",
			expected: []wantRecord{
				{name: "read1", seq: "ACGT", qual: "IIII"},
				{name: "read2", seq: "TTTTGG", qual: "!!!!!!"},
			},
		},
	} {
		got := parseAllStrings(t, test.content)
		if diff := cmp.Diff(test.expected, got, cmp.AllowUnexported(wantRecord{})); diff != "" {
			t.Errorf("case index %d: mismatch (-want +got):\n%s", testIndex, diff)
		}
	}
}

func TestParserLengthMismatch(t *testing.T) {
	parser := NewParser(strings.NewReader("@read1\nACGT\n+\nII\n"))
	var rec seq.Record
	_, err := parser.Next(&rec)
	if !errors.Is(err, seq.ErrLengthMismatch) {
		t.Errorf("expected LengthMismatch, got %v", err)
	}
}

func TestParserMismatchedPlusName(t *testing.T) {
	parser := NewParser(strings.NewReader("@read1\nACGT\n+read2\nIIII\n"))
	var rec seq.Record
	_, err := parser.Next(&rec)
	if !errors.Is(err, seq.ErrMalformedRecord) {
		t.Errorf("expected MalformedRecord, got %v", err)
	}
}

func TestParserTruncated(t *testing.T) {
	parser := NewParser(strings.NewReader("@read1\nACGT\n+\n"))
	var rec seq.Record
	_, err := parser.Next(&rec)
	if !errors.Is(err, seq.ErrTruncatedRecord) {
		t.Errorf("expected TruncatedRecord, got %v", err)
	}
}

func TestParserMalformedHeader(t *testing.T) {
	parser := NewParser(strings.NewReader("not a header\nACGT\n+\nIIII\n"))
	var rec seq.Record
	_, err := parser.Next(&rec)
	if !errors.Is(err, seq.ErrMalformedHeader) {
		t.Errorf("expected MalformedHeader, got %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	want := []wantRecord{{name: "r1", seq: "ACGT", qual: "IIII"}, {name: "r2", seq: "TT", qual: "##"}}

	var records []*seq.Record
	for _, w := range want {
		var rec seq.Record
		rec.AppendName([]byte(w.name))
		rec.AppendSequence([]byte(w.seq))
		rec.AppendQuality([]byte(w.qual))
		records = append(records, rec.Clone())
	}

	var buf strings.Builder
	if err := Write(records, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := parseAllStrings(t, buf.String())
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(wantRecord{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
