// Copyright (c) 2025 @AmarnathCJD

package ige

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/pkg/errors"

	"github.com/roseloverx/mtproto/internal/utils"
)

// Cipher is AES-256 in infinite garble extension mode. The 32-byte iv is
// the previous ciphertext block followed by the previous plaintext block.
type Cipher struct {
	block cipher.Block
	iv    [2 * aes.BlockSize]byte
}

func NewCipher(key, iv []byte) (*Cipher, error) {
	if len(iv) != 2*aes.BlockSize {
		return nil, errors.Errorf("iv must be %d bytes, got %d", 2*aes.BlockSize, len(iv))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "creating new cipher")
	}

	c := &Cipher{block: block}
	copy(c.iv[:], iv)
	return c, nil
}

// Encrypt writes the IGE encryption of in to out. in and out may not overlap.
func (c *Cipher) Encrypt(in, out []byte) error {
	if err := isCorrectData(in, out); err != nil {
		return err
	}

	prevC := append([]byte(nil), c.iv[:aes.BlockSize]...)
	prevP := append([]byte(nil), c.iv[aes.BlockSize:]...)
	t := make([]byte, aes.BlockSize)

	for i := 0; i < len(in); i += aes.BlockSize {
		p := in[i : i+aes.BlockSize]
		copy(t, p)
		utils.Xor(t, prevC)
		c.block.Encrypt(out[i:i+aes.BlockSize], t)
		utils.Xor(out[i:i+aes.BlockSize], prevP)

		prevC = out[i : i+aes.BlockSize]
		prevP = p
	}
	return nil
}

// Decrypt reverses Encrypt. in and out may not overlap.
func (c *Cipher) Decrypt(in, out []byte) error {
	if err := isCorrectData(in, out); err != nil {
		return err
	}

	prevC := append([]byte(nil), c.iv[:aes.BlockSize]...)
	prevP := append([]byte(nil), c.iv[aes.BlockSize:]...)
	t := make([]byte, aes.BlockSize)

	for i := 0; i < len(in); i += aes.BlockSize {
		ct := in[i : i+aes.BlockSize]
		copy(t, ct)
		utils.Xor(t, prevP)
		c.block.Decrypt(out[i:i+aes.BlockSize], t)
		utils.Xor(out[i:i+aes.BlockSize], prevC)

		prevC = ct
		prevP = out[i : i+aes.BlockSize]
	}
	return nil
}

func isCorrectData(in, out []byte) error {
	if len(in) < aes.BlockSize {
		return ErrDataTooSmall
	}
	if len(in)%aes.BlockSize != 0 {
		return ErrDataNotDivisible
	}
	if len(out) < len(in) {
		return errors.New("output buffer too small")
	}
	return nil
}
