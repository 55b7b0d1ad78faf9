// Copyright (c) 2025 @AmarnathCJD

package mode

import (
	"encoding/binary"
	"io"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

type abridged struct {
	conn io.ReadWriter
}

var _ Mode = (*abridged)(nil)

var transportModeAbridged = [...]byte{0xef}

func (*abridged) getModeAnnouncement() []byte {
	return transportModeAbridged[:]
}

// Packets of 127 words or more carry 0x7f and a three byte length.
const magicValueSizeMoreThanSingleByte = 0x7f

func (m *abridged) WriteMsg(msg []byte) error {
	if len(msg)%tl.WordLen != 0 {
		return ErrNotMultiple{Len: len(msg)}
	}

	words := len(msg) / tl.WordLen
	var header []byte
	if words < magicValueSizeMoreThanSingleByte {
		header = []byte{byte(words)}
	} else {
		header = make([]byte, 4)
		binary.LittleEndian.PutUint32(header, uint32(words)<<8|magicValueSizeMoreThanSingleByte)
	}

	_, err := m.conn.Write(append(header, msg...))
	return err
}

func (m *abridged) ReadMsg() ([]byte, error) {
	sizeBuf := make([]byte, 4)
	if _, err := io.ReadFull(m.conn, sizeBuf[:1]); err != nil {
		return nil, err
	}

	size := int(sizeBuf[0])
	if size == magicValueSizeMoreThanSingleByte {
		if _, err := io.ReadFull(m.conn, sizeBuf[:3]); err != nil {
			return nil, err
		}
		sizeBuf[3] = 0
		size = int(binary.LittleEndian.Uint32(sizeBuf))
	}

	size *= tl.WordLen
	if size > maxMessageSize {
		return nil, ErrMessageTooLarge{Size: size}
	}

	msg := make([]byte, size)
	if _, err := io.ReadFull(m.conn, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
