package fasta

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/basepair-labs/seqio/bio/seq"
)

type wantRecord struct {
	name string
	seq  string
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
		got = append(got, wantRecord{name: string(rec.Name()), seq: string(rec.Sequence())})
	}
	return got
}

func TestParser(t *testing.T) {
	for testIndex, test := range []struct {
		content  string
		expected []wantRecord
	}{
		{
			content:  ">humen\nGATTACA\nCATGAT", // EOF-ended FASTA is valid
			expected: []wantRecord{{name: "humen", seq: "GATTACACATGAT"}},
		},
		{
			content:  ">humen\nGATTACA\nCATGAT\n",
			expected: []wantRecord{{name: "humen", seq: "GATTACACATGAT"}},
		},
		{
			content: ">doggy or something\nGATTACA\n\nCATGAT\n\n" +
				">homunculus\nAAAA\n",
			expected: []wantRecord{
				{name: "doggy or something", seq: "GATTACACATGAT"},
				{name: "homunculus", seq: "AAAA"},
			},
		},
		{
			// multi-line sequence split across many short lines
			content:  ">multi\nAA\nBB\nCC\nDD\n",
			expected: []wantRecord{{name: "multi", seq: "AABBCCDD"}},
		},
	} {
		got := parseAllStrings(t, test.content)
		if diff := cmp.Diff(test.expected, got, cmp.AllowUnexported(wantRecord{})); diff != "" {
			t.Errorf("case index %d: mismatch (-want +got):\n%s", testIndex, diff)
		}
	}
}

func TestParserTruncated(t *testing.T) {
	parser := NewParser(strings.NewReader(">onlyheader\n"))
	var rec seq.Record
	_, err := parser.Next(&rec)
	if err == nil {
		t.Fatal("expected TruncatedRecord error, got nil")
	}
	if !errors.Is(err, seq.ErrTruncatedRecord) {
		t.Errorf("expected TruncatedRecord, got %v", err)
	}
}

func TestParserMalformedHeader(t *testing.T) {
	parser := NewParser(strings.NewReader("not a header\nACGT\n"))
	var rec seq.Record
	_, err := parser.Next(&rec)
	if !errors.Is(err, seq.ErrMalformedHeader) {
		t.Errorf("expected MalformedHeader, got %v", err)
	}
}

func TestParserReuseClearsBuffers(t *testing.T) {
	parser := NewParser(strings.NewReader(">a\nAAAA\n>b\nCC\n"))
	var rec seq.Record
	if _, err := parser.Next(&rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(rec.Sequence()) != "AAAA" {
		t.Fatalf("got %q, want AAAA", rec.Sequence())
	}
	if _, err := parser.Next(&rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(rec.Sequence()) != "CC" {
		t.Fatalf("second record got %q, want CC (stale bytes from first call leaked)", rec.Sequence())
	}
}

func TestWriteRoundTrip(t *testing.T) {
	records, err := func() ([]*seq.Record, error) {
		parser := NewParser(strings.NewReader(">r1\nACGTACGTAC\n>r2\nTT\n"))
		var out []*seq.Record
		var rec seq.Record
		for {
			_, err := parser.Next(&rec)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return out, nil
				}
				return out, err
			}
			out = append(out, rec.Clone())
		}
	}()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf strings.Builder
	if err := Write(records, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const wantText = ">r1\nACGTACGTAC\n>r2\nTT\n"
	if buf.String() != wantText {
		diff := unifiedDiff(wantText, buf.String())
		t.Errorf("serialized text mismatch:\n%s", diff)
	}

	roundTripped := parseAllStrings(t, buf.String())
	want := []wantRecord{{name: "r1", seq: "ACGTACGTAC"}, {name: "r2", seq: "TT"}}
	if diff := cmp.Diff(want, roundTripped, cmp.AllowUnexported(wantRecord{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// unifiedDiff renders a line-level diff for failure messages when a
// serialized-text comparison doesn't match, since byte-string equality
// failures alone don't show where two multi-line texts diverge.
func unifiedDiff(want, got string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "<diff error: " + err.Error() + ">"
	}
	return text
}
