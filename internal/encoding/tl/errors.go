// Copyright (c) 2024 RoseLoverX

package tl

import "fmt"

// ErrRegisteredObjectNotFound is returned when a boxed value carries a
// constructor id nobody registered.
type ErrRegisteredObjectNotFound struct {
	Crc  uint32
	Data []byte
}

func (e *ErrRegisteredObjectNotFound) Error() string {
	return fmt.Sprintf("object with provided crc not registered: 0x%08x", e.Crc)
}

type ErrMustParseSlicesExplicitly struct{}

func (*ErrMustParseSlicesExplicitly) Error() string {
	return "got vector of bare values when parsing unknown object: element type must be set with ExpectTypesInInterface"
}

type ErrorPartialWrite struct {
	Has  int
	Want int
}

func (e *ErrorPartialWrite) Error() string {
	return fmt.Sprintf("write failed: written only %v bytes, expected %v", e.Has, e.Want)
}

// ErrInvalidCrc is returned when a value is decoded into a concrete type
// whose constructor id differs from the one on the wire.
type ErrInvalidCrc struct {
	Got  uint32
	Want uint32
}

func (e *ErrInvalidCrc) Error() string {
	return fmt.Sprintf("invalid crc code: 0x%08x, want: 0x%08x", e.Got, e.Want)
}
