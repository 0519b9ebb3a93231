package rcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// chunkFloats bounds the scratch buffer used for float and index I/O. Reads
// grow their output chunk by chunk so a corrupt count fails on the short read
// instead of on one huge allocation.
const chunkFloats = 16 * 1024

func writeFloats(w io.Writer, v []float32) error {
	buf := make([]byte, 4*min(len(v), chunkFloats))
	for len(v) > 0 {
		n := min(len(v), chunkFloats)
		for i, f := range v[:n] {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
		}
		if _, err := w.Write(buf[:n*4]); err != nil {
			return err
		}
		v = v[n:]
	}
	return nil
}

func writeIndices(w io.Writer, v []uint16) error {
	buf := make([]byte, 2*min(len(v), chunkFloats))
	for len(v) > 0 {
		n := min(len(v), chunkFloats)
		for i, idx := range v[:n] {
			binary.LittleEndian.PutUint16(buf[i*2:], idx)
		}
		if _, err := w.Write(buf[:n*2]); err != nil {
			return err
		}
		v = v[n:]
	}
	return nil
}

func readFloats(r io.Reader, count int64) ([]float32, error) {
	out := make([]float32, 0, min(count, chunkFloats))
	buf := make([]byte, 4*min(count, chunkFloats))
	for remaining := count; remaining > 0; {
		n := min(remaining, chunkFloats)
		if err := readFull(r, buf[:n*4]); err != nil {
			return nil, err
		}
		for i := int64(0); i < n; i++ {
			out = append(out, math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
		}
		remaining -= n
	}
	return out, nil
}

func readIndices(r io.Reader, count int64) ([]uint16, error) {
	out := make([]uint16, 0, min(count, chunkFloats))
	buf := make([]byte, 2*min(count, chunkFloats))
	for remaining := count; remaining > 0; {
		n := min(remaining, chunkFloats)
		if err := readFull(r, buf[:n*2]); err != nil {
			return nil, err
		}
		for i := int64(0); i < n; i++ {
			out = append(out, binary.LittleEndian.Uint16(buf[i*2:]))
		}
		remaining -= n
	}
	return out, nil
}

// readFull reads len(buf) bytes, reporting any shortfall as ErrTruncated.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %w", ErrTruncated, io.ErrUnexpectedEOF)
		}
		return err
	}
	return nil
}
