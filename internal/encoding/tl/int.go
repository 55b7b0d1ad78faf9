// Copyright (c) 2024 RoseLoverX

package tl

import (
	"crypto/rand"
	"encoding/hex"
)

// Int128 is a bare 128-bit value as used for handshake nonces. It is
// written as-is, without byte order conversion.
type Int128 [Int128Len]byte

// Int256 is a bare 256-bit value.
type Int256 [Int256Len]byte

func RandomInt128() (Int128, error) {
	var v Int128
	_, err := rand.Read(v[:])
	return v, err
}

func RandomInt256() (Int256, error) {
	var v Int256
	_, err := rand.Read(v[:])
	return v, err
}

func (i Int128) MarshalTL(e *Encoder) error {
	e.PutRawBytes(i[:])
	return nil
}

func (i *Int128) UnmarshalTL(d *Decoder) error {
	d.read(i[:])
	return d.err
}

func (i Int128) String() string {
	return hex.EncodeToString(i[:])
}

func (i Int256) MarshalTL(e *Encoder) error {
	e.PutRawBytes(i[:])
	return nil
}

func (i *Int256) UnmarshalTL(d *Decoder) error {
	d.read(i[:])
	return d.err
}

func (i Int256) String() string {
	return hex.EncodeToString(i[:])
}
