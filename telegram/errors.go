// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrPeerNotFound means a peer is neither cached nor resolvable remotely.
	ErrPeerNotFound = errors.New("peer not found")
	// ErrFileIDInvalid is returned for malformed file identifiers.
	ErrFileIDInvalid = errors.New("file id invalid")
	// ErrStopTransmission aborts the transfer whose progress callback
	// returns it.
	ErrStopTransmission = errors.New("stop transmission")
	ErrTooManyRedirects = errors.New("too many data center redirects")
	// ErrStopPropagation, returned by a handler, ends processing of the
	// update.
	ErrStopPropagation = errors.New("stop propagation")
	// ErrContinuePropagation, returned by a handler, lets the next handler
	// of the same group see the update.
	ErrContinuePropagation = errors.New("continue propagation")
	ErrSignUpRequired      = errors.New("phone number is not registered")
	ErrNotAuthorized       = errors.New("not authorized and no bot token or phone number given")
)

// IntegrityError is a CDN chunk whose digest doesn't match the hash the
// origin data center announced.
type IntegrityError struct {
	Offset int64
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("cdn chunk at offset %d failed hash verification", e.Offset)
}
