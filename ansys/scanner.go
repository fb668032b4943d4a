package ansys

import (
	"bufio"
	"io"
	"strings"
)

// sectionScanner owns the single read cursor over an msh stream. The format
// interleaves line-oriented ASCII with raw binary payloads, so every read
// goes through one *bufio.Reader: whole lines for section dispatch and
// ASCII bodies, single bytes when hunting for a delimiter, exact counts
// for binary blocks. Nothing ever rewinds.
type sectionScanner struct {
	r *bufio.Reader
}

func newSectionScanner(r io.Reader) *sectionScanner {
	return &sectionScanner{r: bufio.NewReader(r)}
}

// readLine returns the next line with its trailing newline stripped.
// io.EOF is returned only when no bytes remain at all.
func (s *sectionScanner) readLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readExact consumes exactly n raw payload bytes.
func (s *sectionScanner) readExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// skipTo consumes bytes until delim has been read, delim included.
func (s *sectionScanner) skipTo(delim byte) error {
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		if c == delim {
			return nil
		}
	}
}

// skipBalanced consumes bytes until the paren nesting, currently at depth,
// returns to zero. A record of any internal structure can be discarded
// this way once its section header line has been read.
func (s *sectionScanner) skipBalanced(depth int) error {
	for depth > 0 {
		c, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return nil
}
