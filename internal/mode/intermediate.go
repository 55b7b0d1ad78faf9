// Copyright (c) 2025 @AmarnathCJD

package mode

import (
	"encoding/binary"
	"io"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

type intermediate struct {
	conn io.ReadWriter
}

var _ Mode = (*intermediate)(nil)

var transportModeIntermediate = [...]byte{0xee, 0xee, 0xee, 0xee}

func (*intermediate) getModeAnnouncement() []byte {
	return transportModeIntermediate[:]
}

func (m *intermediate) WriteMsg(msg []byte) error {
	size := make([]byte, tl.WordLen, tl.WordLen+len(msg))
	binary.LittleEndian.PutUint32(size, uint32(len(msg)))
	_, err := m.conn.Write(append(size, msg...))
	return err
}

func (m *intermediate) ReadMsg() ([]byte, error) {
	return readLengthPrefixed(m.conn)
}

func readLengthPrefixed(r io.Reader) ([]byte, error) {
	sizeBuf := make([]byte, tl.WordLen)
	if _, err := io.ReadFull(r, sizeBuf); err != nil {
		return nil, err
	}

	size := int(binary.LittleEndian.Uint32(sizeBuf))
	if size > maxMessageSize {
		return nil, ErrMessageTooLarge{Size: size}
	}

	msg := make([]byte, size)
	if _, err := io.ReadFull(r, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
