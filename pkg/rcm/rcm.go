// Package rcm implements the RCM binary mesh container.
//
// An RCM file is a 6-byte file header followed by one or more objects. Each
// object is a 16-byte object header, the vertex data (interleaved or one
// column per component) and a 16-bit index buffer. Nothing is length
// prefixed: every section size is recomputed from the header fields, so a
// reader must consume an object completely before the next header means
// anything.
package rcm

import "errors"

// RCM format errors.
var (
	ErrMagicMismatch     = errors.New("invalid RCM magic: expected 0xDE 0xAD")
	ErrTruncated         = errors.New("truncated RCM data")
	ErrUnknownObjectType = errors.New("unknown RCM object type")
	ErrLayoutMismatch    = errors.New("vertex size does not match vertex flags")
	ErrTooManyVertices   = errors.New("too many vertices for 16-bit indices")
	ErrTooManyObjects    = errors.New("too many objects for one RCM file")
	ErrInvalidMesh       = errors.New("invalid mesh")
	ErrMismatch          = errors.New("decoded object does not match its mesh")
)
