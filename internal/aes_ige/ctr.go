// Copyright (c) 2025 @AmarnathCJD

package ige

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"

	"github.com/pkg/errors"
)

// CTR256Decrypt decrypts a CDN file chunk fetched at offset. The last four
// bytes of iv are replaced by offset/16 in big-endian order.
func CTR256Decrypt(data, key, iv []byte, offset int64) ([]byte, error) {
	if len(iv) != aes.BlockSize {
		return nil, errors.Errorf("cdn iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	if offset%aes.BlockSize != 0 {
		return nil, errors.Errorf("offset %d is not block aligned", offset)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "creating ctr cipher")
	}

	counter := make([]byte, aes.BlockSize)
	copy(counter, iv[:aes.BlockSize-4])
	binary.BigEndian.PutUint32(counter[aes.BlockSize-4:], uint32(offset/aes.BlockSize))

	out := make([]byte, len(data))
	cipher.NewCTR(block, counter).XORKeyStream(out, data)
	return out, nil
}

// CTR256Encrypt is the inverse of CTR256Decrypt, which is the same stream.
func CTR256Encrypt(data, key, iv []byte, offset int64) ([]byte, error) {
	return CTR256Decrypt(data, key, iv, offset)
}
