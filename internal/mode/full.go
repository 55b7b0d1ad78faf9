// Copyright (c) 2024 RoseLoverX

package mode

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/pkg/errors"
)

// full framing: length(4) + seqno(4) + payload + crc32(4). The length
// covers the whole packet and each direction counts its own seqno.
type full struct {
	conn      io.ReadWriter
	seqNo     uint32
	readSeqNo uint32
}

var _ Mode = (*full)(nil)

const fullHeaderLen = 12

func (*full) getModeAnnouncement() []byte {
	return nil
}

func (m *full) WriteMsg(msg []byte) error {
	msgLen := uint32(len(msg) + fullHeaderLen)

	buf := make([]byte, msgLen)
	binary.LittleEndian.PutUint32(buf[0:4], msgLen)
	binary.LittleEndian.PutUint32(buf[4:8], m.seqNo)
	copy(buf[8:], msg)
	binary.LittleEndian.PutUint32(buf[8+len(msg):], crc32.ChecksumIEEE(buf[:8+len(msg)]))

	if _, err := m.conn.Write(buf); err != nil {
		return err
	}

	m.seqNo++
	return nil
}

func (m *full) ReadMsg() ([]byte, error) {
	bsize := make([]byte, 4)
	if _, err := io.ReadFull(m.conn, bsize); err != nil {
		return nil, err
	}

	size := int(binary.LittleEndian.Uint32(bsize))
	if size < fullHeaderLen || size > maxMessageSize {
		return nil, ErrMessageTooLarge{Size: size}
	}

	buf := make([]byte, size)
	copy(buf, bsize)
	if _, err := io.ReadFull(m.conn, buf[4:]); err != nil {
		return nil, err
	}

	checksum := binary.LittleEndian.Uint32(buf[size-4:])
	if crc32.ChecksumIEEE(buf[:size-4]) != checksum {
		return nil, ErrChecksumMismatch
	}

	seq := binary.LittleEndian.Uint32(buf[4:8])
	if seq != m.readSeqNo {
		return nil, errors.Errorf("unexpected packet seqno %d, want %d", seq, m.readSeqNo)
	}
	m.readSeqNo++

	return buf[8 : size-4], nil
}
