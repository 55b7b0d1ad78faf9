// Copyright (c) 2025 @AmarnathCJD

package mode

import (
	"io"

	"github.com/pkg/errors"
)

// Mode frames messages on a byte stream. Raw TCP has no message
// boundaries, so each mode prefixes a packet with its size.
//
// https://core.telegram.org/mtproto/mtproto-transports
type Mode interface {
	WriteMsg([]byte) error
	ReadMsg() ([]byte, error)

	// getModeAnnouncement returns the bytes sent once when the link opens
	getModeAnnouncement() []byte
}

type Variant uint8

const (
	Abridged Variant = iota
	Intermediate
	PaddedIntermediate
	Full
)

func (v Variant) String() string {
	switch v {
	case Abridged:
		return "abridged"
	case Intermediate:
		return "intermediate"
	case PaddedIntermediate:
		return "padded"
	case Full:
		return "full"
	}
	return "unknown"
}

// ParseVariant maps a mode name as used in configuration to a Variant.
func ParseVariant(name string) (Variant, error) {
	for _, v := range []Variant{Abridged, Intermediate, PaddedIntermediate, Full} {
		if v.String() == name {
			return v, nil
		}
	}
	return 0, errors.Wrap(ErrModeNotSupported, name)
}

// maxMessageSize bounds what a peer may announce.
const maxMessageSize = 16 << 20

// New wraps conn with the framing of v and sends its announcement.
func New(v Variant, conn io.ReadWriter) (Mode, error) {
	if conn == nil {
		return nil, ErrInterfaceIsNil
	}

	m, err := initMode(v, conn)
	if err != nil {
		return nil, err
	}

	if announcement := m.getModeAnnouncement(); len(announcement) > 0 {
		if _, err := conn.Write(announcement); err != nil {
			return nil, errors.Wrap(err, "can't setup connection")
		}
	}

	return m, nil
}

func initMode(v Variant, conn io.ReadWriter) (Mode, error) {
	switch v {
	case Abridged:
		return &abridged{conn: conn}, nil
	case Intermediate:
		return &intermediate{conn: conn}, nil
	case PaddedIntermediate:
		return &paddedIntermediate{conn: conn}, nil
	case Full:
		return &full{conn: conn}, nil
	default:
		return nil, ErrModeNotSupported
	}
}

// Accept is the server side of New: it reads the announcement sent by the
// client and returns the matching framing. A connection without one is in
// Full mode, whose first bytes are the packet length.
func Accept(conn io.ReadWriter) (Mode, Variant, error) {
	if conn == nil {
		return nil, 0, ErrInterfaceIsNil
	}

	first := make([]byte, 1)
	if _, err := io.ReadFull(conn, first); err != nil {
		return nil, 0, err
	}

	switch first[0] {
	case transportModeAbridged[0]:
		return &abridged{conn: conn}, Abridged, nil
	case transportModeIntermediate[0], transportModePaddedIntermediate[0]:
		rest := make([]byte, 3)
		if _, err := io.ReadFull(conn, rest); err != nil {
			return nil, 0, err
		}
		for _, b := range rest {
			if b != first[0] {
				return nil, 0, ErrModeNotSupported
			}
		}
		if first[0] == transportModeIntermediate[0] {
			return &intermediate{conn: conn}, Intermediate, nil
		}
		return &paddedIntermediate{conn: conn}, PaddedIntermediate, nil
	default:
		return &full{conn: &prefixedReader{prefix: first, ReadWriter: conn}}, Full, nil
	}
}

// prefixedReader replays bytes consumed while sniffing the mode.
type prefixedReader struct {
	prefix []byte
	io.ReadWriter
}

func (p *prefixedReader) Read(b []byte) (int, error) {
	if len(p.prefix) > 0 {
		n := copy(b, p.prefix)
		p.prefix = p.prefix[n:]
		return n, nil
	}
	return p.ReadWriter.Read(b)
}
