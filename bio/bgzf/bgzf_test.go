package bgzf

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// writeBlock appends one BGZF member holding data to w, returning the
// member's total compressed length (header + payload + trailer).
func writeBlock(t *testing.T, w io.Writer, data []byte) int {
	t.Helper()

	var payload bytes.Buffer
	fw, err := flate.NewWriter(&payload, flate.DefaultCompression)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("flate write: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("flate close: %v", err)
	}

	const headerLen = 18 // 10 fixed + 2 XLEN + 6 BC-subfield bytes
	total := headerLen + payload.Len() + trailerSize
	bsize := total - 1

	header := make([]byte, headerLen)
	header[0], header[1], header[2], header[3] = gzipID1, gzipID2, deflateCM, flagExtra
	binary.LittleEndian.PutUint16(header[10:12], 6) // XLEN
	header[12], header[13] = bgzfSI1, bgzfSI2
	binary.LittleEndian.PutUint16(header[14:16], 2) // subfield length
	binary.LittleEndian.PutUint16(header[16:18], uint16(bsize))

	if _, err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if _, err := w.Write(payload.Bytes()); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], crc32.ChecksumIEEE(data))
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(data)))
	if _, err := w.Write(trailer[:]); err != nil {
		t.Fatalf("write trailer: %v", err)
	}
	return total
}

// bgzfEOF is the fixed 28-byte empty terminal block every BGZF file ends
// with (ISIZE == 0 signals end of stream to Source.Read).
var bgzfEOF = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0x06, 0x00,
	0x42, 0x43, 0x02, 0x00, 0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

func buildFile(t *testing.T, path string, blocks [][]byte) []int {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	var sizes []int
	for _, b := range blocks {
		sizes = append(sizes, writeBlock(t, f, b))
	}
	if _, err := f.Write(bgzfEOF); err != nil {
		t.Fatalf("write eof marker: %v", err)
	}
	return sizes
}

func TestSourceReadAcrossBlocks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bgzf")
	buildFile(t, path, [][]byte{[]byte("ACGTACGT"), []byte("TTTTGGGG")})

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	defer src.Close()

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := "ACGTACGTTTTTGGGG"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSourceSeekVirtual(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bgzf")
	sizes := buildFile(t, path, [][]byte{[]byte("ACGTACGT"), []byte("TTTTGGGG")})

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	defer src.Close()

	secondBlockOffset := int64(sizes[0])
	vo := (uint64(secondBlockOffset) << 16) | 2 // skip "TT", start at "TTGGGG"
	if err := src.SeekVirtual(vo); err != nil {
		t.Fatalf("SeekVirtual: %v", err)
	}

	buf := make([]byte, 6)
	if _, err := io.ReadFull(src, buf); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if string(buf) != "TTGGGG" {
		t.Errorf("got %q, want TTGGGG", buf)
	}
}

func TestIsBGZF(t *testing.T) {
	var buf bytes.Buffer
	writeBlock(t, &buf, []byte("hi"))
	if !IsBGZF(buf.Bytes()) {
		t.Error("expected IsBGZF to recognize a constructed BGZF member")
	}
	if IsBGZF([]byte("not gzip at all........")) {
		t.Error("expected IsBGZF to reject non-gzip data")
	}
}
