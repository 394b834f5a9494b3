package seq

import (
	"bufio"
	"bytes"
	"errors"
)

// ReadLine reads one line from br, delimited by '\n', stripping the
// delimiter and an optional preceding '\r'. It accumulates into scratch,
// growing scratch as needed so a line may exceed br's internal buffer size
// without error — a bufio.Scanner and a plain ReadSlice over a fixed
// bufio.NewReaderSize buffer both return a hard error on an over-long
// line; this function instead keeps reading on bufio.ErrBufferFull, the same
// "keep appending until the delimiter shows up" idiom go-dictzip's
// readString uses for null-terminated gzip header fields.
//
// The returned slice aliases scratch and is only valid until the next call
// to ReadLine with the same scratch. io.EOF is returned once no bytes at all
// could be read; a final line with no trailing newline is returned together
// with io.EOF.
func ReadLine(br *bufio.Reader, scratch *[]byte) ([]byte, error) {
	*scratch = (*scratch)[:0]
	for {
		chunk, err := br.ReadSlice('\n')
		*scratch = append(*scratch, chunk...)
		switch {
		case err == nil:
			return trimEOL(*scratch), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			// EOF (possibly with a partial, newline-less final line) or a
			// genuine I/O error.
			if len(*scratch) > 0 {
				return trimEOL(*scratch), err
			}
			return nil, err
		}
	}
}

// trimEOL strips a trailing "\n" and an optional preceding "\r".
func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return line
}
