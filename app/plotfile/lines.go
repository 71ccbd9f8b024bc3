package plotfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	argumentsSentinel = "--arguments--"
	dataSentinel      = "--data--"

	maxLineSize = 1024 * 1024
)

// lineReader hands out input lines one at a time and remembers where it is,
// so every stage picks up exactly where the previous one stopped.
type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func newLineReader(r io.Reader) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineReader{sc: sc}
}

// next returns the following line without its terminator. ok is false at
// end of input or on a read error; the error is reported by err.
func (lr *lineReader) next() (text string, ok bool) {
	if !lr.sc.Scan() {
		return "", false
	}
	lr.line++
	return lr.sc.Text(), true
}

func (lr *lineReader) err() error {
	if err := lr.sc.Err(); err != nil {
		return fmt.Errorf("reading line %d: %w", lr.line+1, err)
	}
	return nil
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
