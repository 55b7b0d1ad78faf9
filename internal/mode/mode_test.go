// Copyright (c) 2025 @AmarnathCJD

package mode

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnouncements(t *testing.T) {
	tests := []struct {
		v    Variant
		want []byte
	}{
		{Abridged, []byte{0xef}},
		{Intermediate, []byte{0xee, 0xee, 0xee, 0xee}},
		{PaddedIntermediate, []byte{0xdd, 0xdd, 0xdd, 0xdd}},
		{Full, nil},
	}

	for _, tt := range tests {
		t.Run(tt.v.String(), func(t *testing.T) {
			buf := new(bytes.Buffer)
			_, err := New(tt.v, buf)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), buf.Len())
			if len(tt.want) > 0 {
				assert.Equal(t, tt.want, buf.Bytes())
			}
		})
	}
}

func TestAbridgedLengthEncoding(t *testing.T) {
	buf := new(bytes.Buffer)
	m := &abridged{conn: buf}

	require.NoError(t, m.WriteMsg(make([]byte, 8)))
	assert.Equal(t, byte(2), buf.Bytes()[0])
	buf.Reset()

	big := make([]byte, 127*4)
	require.NoError(t, m.WriteMsg(big))
	assert.Equal(t, []byte{0x7f, 127, 0, 0}, buf.Bytes()[:4])

	got, err := m.ReadMsg()
	require.NoError(t, err)
	assert.Len(t, got, len(big))

	assert.ErrorAs(t, m.WriteMsg(make([]byte, 5)), &ErrNotMultiple{})
}

func TestRoundTripAllModes(t *testing.T) {
	sizes := []int{4, 64, 508, 4096, 70000}

	for _, v := range []Variant{Abridged, Intermediate, PaddedIntermediate, Full} {
		t.Run(v.String(), func(t *testing.T) {
			client, server := net.Pipe()
			defer client.Close()
			defer server.Close()

			done := make(chan error, 1)
			var received [][]byte
			go func() {
				m, got, err := Accept(server)
				if err != nil {
					done <- err
					return
				}
				if got != v {
					done <- ErrModeNotSupported
					return
				}
				for range sizes {
					msg, err := m.ReadMsg()
					if err != nil {
						done <- err
						return
					}
					received = append(received, msg)
				}
				done <- nil
			}()

			m, err := New(v, client)
			require.NoError(t, err)

			var sent [][]byte
			for _, size := range sizes {
				msg := plainPacket(size)
				sent = append(sent, msg)
				require.NoError(t, m.WriteMsg(msg))
			}

			require.NoError(t, <-done)
			assert.Equal(t, sent, received)
		})
	}
}

// plainPacket builds an unencrypted envelope so padded framing can find
// its boundary.
func plainPacket(size int) []byte {
	msg := make([]byte, size)
	_, _ = rand.Read(msg)
	if size >= 20 {
		binary.LittleEndian.PutUint64(msg, 0)
		binary.LittleEndian.PutUint32(msg[16:], uint32(size-20))
	}
	return msg
}

func TestPaddedTrimsEncryptedPackets(t *testing.T) {
	msg := make([]byte, 24+32)
	msg[0] = 1
	padded := append(append([]byte{}, msg...), 1, 2, 3, 4, 5, 6, 7)
	assert.Equal(t, msg, trimPadding(padded))
}

func TestFullRejectsBadChecksum(t *testing.T) {
	buf := new(bytes.Buffer)
	m := &full{conn: buf}
	require.NoError(t, m.WriteMsg([]byte{1, 2, 3, 4}))

	raw := buf.Bytes()
	raw[9] ^= 0xff

	_, err := m.ReadMsg()
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("padded")
	require.NoError(t, err)
	assert.Equal(t, PaddedIntermediate, v)

	_, err = ParseVariant("carrier-pigeon")
	assert.ErrorIs(t, err, ErrModeNotSupported)
}
