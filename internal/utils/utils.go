// Copyright (c) 2024 RoseLoverX

package utils

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"sync"
	"time"
)

// ------------------ Telegram Data Center Configs ------------------

var DcList = DCOptions{
	DCS: map[int][]DC{
		1: {{"149.154.175.58:443", false}, {"[2001:b28:f23d:f001::a]:443", true}},
		2: {{"149.154.167.50:443", false}, {"[2001:67c:4e8:f002::a]:443", true}},
		3: {{"149.154.175.100:443", false}, {"[2001:b28:f23d:f003::a]:443", true}},
		4: {{"149.154.167.91:443", false}, {"[2001:67c:4e8:f004::a]:443", true}},
		5: {{"91.108.56.151:443", false}, {"[2001:b28:f23f:f005::a]:443", true}},
	},
}

var TestDataCenters = map[int]string{
	1: "149.154.175.10:443",
	2: "149.154.167.40:443",
	3: "149.154.175.117:443",
}

type DC struct {
	Addr string
	V6   bool
}

type DCOptions struct {
	mu  sync.RWMutex
	DCS map[int][]DC
}

// SetDCs replaces the address table, e.g. after help.getConfig.
func SetDCs(dcs map[int][]DC) {
	DcList.mu.Lock()
	DcList.DCS = dcs
	DcList.mu.Unlock()
}

// GetHostIp returns the address of a data center, or "" if it is unknown.
func GetHostIp(dc int, test bool, ipv6 bool) string {
	if test {
		if addr, ok := TestDataCenters[dc]; ok {
			return addr
		}
	}

	DcList.mu.RLock()
	defer DcList.mu.RUnlock()

	dcMap, ok := DcList.DCS[dc]
	if !ok || len(dcMap) == 0 {
		return ""
	}

	for _, dc := range dcMap {
		if dc.V6 == ipv6 {
			return dc.Addr
		}
	}

	return dcMap[0].Addr
}

// NewMsgIDGenerator returns a generator of client message ids: seconds in
// the high half, the sub-second part with the low two bits cleared in the
// low half. Ids are strictly increasing per generator. timeOffset is the
// server clock minus the local clock, in seconds.
func NewMsgIDGenerator() func(timeOffset int64) int64 {
	var (
		mu        sync.Mutex
		lastMsgID int64
	)
	return func(timeOffset int64) int64 {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now().Add(time.Duration(timeOffset) * time.Second).UnixNano()

		nowSec := now / int64(time.Second)
		nowNano := (now % int64(time.Second)) & -4

		msgID := (nowSec << 32) | nowNano
		if msgID <= lastMsgID {
			msgID = lastMsgID + 4
		}

		lastMsgID = msgID
		return msgID
	}
}

// TimeOffsetFromMsgID is the server clock minus the local clock, derived
// from a server issued message id.
func TimeOffsetFromMsgID(msgID int64) int64 {
	return (msgID >> 32) - time.Now().Unix()
}

// AuthKeyHash is the 64 lower-order bits of sha1(key), the key id.
func AuthKeyHash(key []byte) []byte {
	return Sha1Byte(key)[12:20]
}

// AuthKeyID is AuthKeyHash read as a little-endian integer.
func AuthKeyID(key []byte) int64 {
	return int64(binary.LittleEndian.Uint64(AuthKeyHash(key)))
}

func GenerateSessionID() int64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]) &^ (1 << 63))
}

func Sha1Byte(input ...[]byte) []byte {
	h := sha1.New()
	for _, b := range input {
		h.Write(b)
	}
	return h.Sum(nil)
}

func RandomBytes(size int) []byte {
	b := make([]byte, size)
	_, _ = rand.Read(b)
	return b
}

// Xor xors src into dst in place.
func Xor(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
