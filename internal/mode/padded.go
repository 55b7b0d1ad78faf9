// Copyright (c) 2025 @AmarnathCJD

package mode

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

// paddedIntermediate is intermediate framing with 0..15 random bytes
// appended to each packet and counted in its length.
type paddedIntermediate struct {
	conn io.ReadWriter
}

var _ Mode = (*paddedIntermediate)(nil)

var transportModePaddedIntermediate = [...]byte{0xdd, 0xdd, 0xdd, 0xdd}

func (*paddedIntermediate) getModeAnnouncement() []byte {
	return transportModePaddedIntermediate[:]
}

func (m *paddedIntermediate) WriteMsg(msg []byte) error {
	if len(msg)%tl.WordLen != 0 {
		return ErrNotMultiple{Len: len(msg)}
	}

	var pad [1]byte
	if _, err := rand.Read(pad[:]); err != nil {
		return err
	}
	padLen := int(pad[0] & 0x0f)

	buf := make([]byte, tl.WordLen+len(msg)+padLen)
	binary.LittleEndian.PutUint32(buf, uint32(len(msg)+padLen))
	copy(buf[tl.WordLen:], msg)
	if _, err := rand.Read(buf[tl.WordLen+len(msg):]); err != nil {
		return err
	}

	_, err := m.conn.Write(buf)
	return err
}

// ReadMsg strips the padding, which is shorter than 16 bytes. Encrypted
// packets end on a 16 byte block; unencrypted ones carry their length.
func (m *paddedIntermediate) ReadMsg() ([]byte, error) {
	msg, err := readLengthPrefixed(m.conn)
	if err != nil {
		return nil, err
	}
	return trimPadding(msg), nil
}

func trimPadding(msg []byte) []byte {
	// auth_key_id(8) + msg_key(16) + data(16*n)
	const encryptedHeader = 24
	if len(msg) >= encryptedHeader && binary.LittleEndian.Uint64(msg) != 0 {
		return msg[:encryptedHeader+(len(msg)-encryptedHeader)/16*16]
	}

	// auth_key_id(8) + msg_id(8) + length(4) + data(length)
	const plainHeader = 20
	if len(msg) >= plainHeader {
		n := int(binary.LittleEndian.Uint32(msg[16:20]))
		if plainHeader+n <= len(msg) {
			return msg[:plainHeader+n]
		}
	}

	// a bare transport error code
	if len(msg) > tl.WordLen {
		return msg[:tl.WordLen]
	}
	return msg
}
