package rcm

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ObjectSpan locates one object inside an in-memory file.
type ObjectSpan struct {
	Index  int
	Offset int64 // offset of the object header
	Length int64 // header + vertex data + index data
	Header ObjectHeader
}

// IndexObjects walks the object headers of data and computes each object's
// byte range from its header fields. Nothing past the headers is decoded.
func IndexObjects(data []byte) ([]ObjectSpan, error) {
	fh, err := DecodeFileHeader(data)
	if err != nil {
		return nil, err
	}
	spans := make([]ObjectSpan, 0, fh.ObjectCount)
	offset := int64(FileHeaderSize)
	for i := 0; i < int(fh.ObjectCount); i++ {
		oh, err := DecodeObjectHeader(data[min(offset, int64(len(data))):])
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		if oh.Type != ArrayOfStructs && oh.Type != StructOfArrays {
			return nil, fmt.Errorf("object %d: %w: %d", i, ErrUnknownObjectType, uint8(oh.Type))
		}
		size := oh.Size()
		if offset+size > int64(len(data)) {
			return nil, fmt.Errorf("object %d: %w: needs %d bytes at offset %d, file has %d",
				i, ErrTruncated, size, offset, len(data))
		}
		spans = append(spans, ObjectSpan{Index: i, Offset: offset, Length: size, Header: oh})
		offset += size
	}
	return spans, nil
}

// DecodeObjects decodes every object of data concurrently, each on its own
// reader over its own byte range. workers <= 0 means one goroutine per
// object. The first failure cancels the remaining work.
func DecodeObjects(ctx context.Context, data []byte, workers int) ([]*Object, error) {
	spans, err := IndexObjects(data)
	if err != nil {
		return nil, err
	}

	objects := make([]*Object, len(spans))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, span := range spans {
		span := span
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			obj, err := ReadObject(bytes.NewReader(data[span.Offset : span.Offset+span.Length]))
			if err != nil {
				return fmt.Errorf("object %d: %w", span.Index, err)
			}
			objects[span.Index] = obj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return objects, nil
}
