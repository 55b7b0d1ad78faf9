// Copyright (c) 2024 RoseLoverX

package mode

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInterfaceIsNil   = errors.New("interface is nil")
	ErrModeNotSupported = errors.New("mode is not supported")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

type ErrNotMultiple struct {
	Len int
}

func (e ErrNotMultiple) Error() string {
	return fmt.Sprintf("size of message not multiple of 4 (got %v)", e.Len)
}

// ErrMessageTooLarge is returned when a peer announces a packet larger than
// the mode accepts.
type ErrMessageTooLarge struct {
	Size int
}

func (e ErrMessageTooLarge) Error() string {
	return fmt.Sprintf("invalid message size: %d", e.Size)
}
