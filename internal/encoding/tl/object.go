// Copyright (c) 2024 RoseLoverX

package tl

// Object is any boxed TL value: it is prefixed by its constructor id on the wire.
type Object interface {
	CRC() uint32
}

// FlagIndexGetter is implemented by objects with optional fields. FlagIndex
// returns the position of the first struct field that follows the flags word.
type FlagIndexGetter interface {
	FlagIndex() int
}

// Marshaler lets a type encode itself. Boxed types must write their own crc.
type Marshaler interface {
	MarshalTL(*Encoder) error
}

// Unmarshaler lets a type decode itself. For boxed types the crc is already
// consumed when UnmarshalTL is called.
type Unmarshaler interface {
	UnmarshalTL(*Decoder) error
}

// PseudoTrue stands for boolTrue when it is decoded as a generic object.
type PseudoTrue struct{}

func (*PseudoTrue) CRC() uint32 {
	return CrcTrue
}

// PseudoFalse stands for boolFalse when it is decoded as a generic object.
type PseudoFalse struct{}

func (*PseudoFalse) CRC() uint32 {
	return CrcFalse
}

type PseudoNil struct{}

func (*PseudoNil) CRC() uint32 {
	return CrcNull
}

// WrappedSlice carries a decoded vector through an Object typed slot.
type WrappedSlice struct {
	data any
}

func (*WrappedSlice) CRC() uint32 {
	return CrcVector
}

func (w *WrappedSlice) Unwrap() any {
	return w.data
}

func UnwrapNativeTypes(in Object) any {
	switch i := in.(type) {
	case *PseudoTrue:
		return true
	case *PseudoFalse:
		return false
	case *PseudoNil:
		return nil
	case *WrappedSlice:
		return i.Unwrap()
	default:
		return in
	}
}
