// Package formats provides parsers for Ragnarok Online model formats used as
// conversion sources.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/Faultbox/rcmconv/pkg/encoding"
)

// cursor reads little-endian values from a byte slice. The first failure
// sticks; later reads are no-ops, so a parser can check err once per
// section.
type cursor struct {
	r   *bytes.Reader
	err error
}

func newCursor(data []byte) *cursor {
	return &cursor{r: bytes.NewReader(data)}
}

func (c *cursor) read(v any) {
	if c.err != nil {
		return
	}
	if err := binary.Read(c.r, binary.LittleEndian, v); err != nil {
		c.err = err
	}
}

func (c *cursor) int32() int32 {
	var v int32
	c.read(&v)
	return v
}

func (c *cursor) uint8() uint8 {
	var v uint8
	c.read(&v)
	return v
}

// fixedString reads an EUC-KR, NUL-padded string of n bytes.
func (c *cursor) fixedString(n int) string {
	buf := make([]byte, n)
	c.read(buf)
	if c.err != nil {
		return ""
	}
	return encoding.FixedStringToUTF8(buf)
}

func (c *cursor) skip(n int64) {
	if c.err != nil {
		return
	}
	if int64(c.r.Len()) < n {
		c.err = io.ErrUnexpectedEOF
		return
	}
	c.r.Seek(n, io.SeekCurrent)
}

func (c *cursor) remaining() int {
	return c.r.Len()
}

// count reads an int32 element count and checks it against limit.
func (c *cursor) count(limit int32, errInvalid error) int {
	n := c.int32()
	if c.err == nil && (n < 0 || n > limit) {
		c.err = errInvalid
		return 0
	}
	return int(n)
}

func isShortRead(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
