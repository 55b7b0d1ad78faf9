// Copyright (c) 2024 RoseLoverX

package ige

import "github.com/pkg/errors"

var (
	ErrDataTooSmall     = errors.New("AES256IGE: data too small")
	ErrDataNotDivisible = errors.New("AES256IGE: data not divisible by block size")
	ErrKeySize          = errors.New("auth key must be 256 bytes")
	ErrMsgKeySize       = errors.New("msg_key must be 16 bytes")
	ErrMsgKeyMismatch   = errors.New("msg_key mismatch")
	ErrHashMismatch     = errors.New("answer hash doesn't match for any padding")
)
