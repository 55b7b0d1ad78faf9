// Copyright (c) 2025 @AmarnathCJD

package ige

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
	"github.com/roseloverx/mtproto/internal/utils"
)

const authKeyLen = 256

// MessageKey computes the MTProto 2.0 msg_key of a padded plaintext. decode
// selects the server to client direction.
func MessageKey(authKey, msgPadded []byte, decode bool) []byte {
	x := 0
	if decode {
		x = 8
	}

	// msg_key_large = SHA256(substr(auth_key, 88+x, 32) + plaintext + random_padding)
	h := sha256.New()
	h.Write(authKey[88+x : 88+x+32])
	h.Write(msgPadded)
	large := h.Sum(nil)

	// msg_key = substr(msg_key_large, 8, 16)
	return large[8:24]
}

// Encrypt pads msg with at least 12 random bytes to a multiple of 16 and
// encrypts it for sending to the server.
func Encrypt(msg, authKey []byte) (out, msgKey []byte, _ error) {
	return encrypt(msg, authKey, false)
}

// Decrypt decrypts a server message and checks its msg_key. The result
// still carries the random padding.
func Decrypt(msg, authKey, msgKey []byte) ([]byte, error) {
	return decrypt(msg, authKey, msgKey, true)
}

// EncryptFromServer and DecryptFromClient are the server side of Encrypt
// and Decrypt, for in-process peers that play the server.
func EncryptFromServer(msg, authKey []byte) (out, msgKey []byte, _ error) {
	return encrypt(msg, authKey, true)
}

func DecryptFromClient(msg, authKey, msgKey []byte) ([]byte, error) {
	return decrypt(msg, authKey, msgKey, false)
}

func encrypt(msg, authKey []byte, decode bool) (out, msgKey []byte, _ error) {
	if len(authKey) != authKeyLen {
		return nil, nil, ErrKeySize
	}

	var r [1]byte
	if _, err := rand.Read(r[:]); err != nil {
		return nil, nil, err
	}
	padding := 12 + int(r[0])%16
	padding += (16 - (len(msg)+padding)%16) % 16

	data := make([]byte, len(msg)+padding)
	n := copy(data, msg)
	if _, err := rand.Read(data[n:]); err != nil {
		return nil, nil, err
	}

	msgKey = MessageKey(authKey, data, decode)
	aesKey, aesIV := aesKeys(msgKey, authKey, decode)

	c, err := NewCipher(aesKey[:], aesIV[:])
	if err != nil {
		return nil, nil, err
	}

	out = make([]byte, len(data))
	if err := c.Encrypt(data, out); err != nil {
		return nil, nil, err
	}
	return out, msgKey, nil
}

func decrypt(msg, authKey, msgKey []byte, decode bool) ([]byte, error) {
	if len(authKey) != authKeyLen {
		return nil, ErrKeySize
	}
	if len(msgKey) != 16 {
		return nil, ErrMsgKeySize
	}

	aesKey, aesIV := aesKeys(msgKey, authKey, decode)
	c, err := NewCipher(aesKey[:], aesIV[:])
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(msg))
	if err := c.Decrypt(msg, out); err != nil {
		return nil, err
	}

	if !bytes.Equal(MessageKey(authKey, out, decode), msgKey) {
		return nil, ErrMsgKeyMismatch
	}
	return out, nil
}

func aesKeys(msgKey, authKey []byte, decode bool) (aesKey, aesIV [32]byte) {
	x := 0
	if decode {
		x = 8
	}

	// sha256_a = SHA256(msg_key + substr(auth_key, x, 36))
	h := sha256.New()
	h.Write(msgKey)
	h.Write(authKey[x : x+36])
	a := h.Sum(nil)

	// sha256_b = SHA256(substr(auth_key, 40+x, 36) + msg_key)
	h.Reset()
	h.Write(authKey[40+x : 40+x+36])
	h.Write(msgKey)
	b := h.Sum(nil)

	// aes_key = substr(sha256_a, 0, 8) + substr(sha256_b, 8, 16) + substr(sha256_a, 24, 8)
	copy(aesKey[0:8], a[0:8])
	copy(aesKey[8:24], b[8:24])
	copy(aesKey[24:32], a[24:32])

	// aes_iv = substr(sha256_b, 0, 8) + substr(sha256_a, 8, 16) + substr(sha256_b, 24, 8)
	copy(aesIV[0:8], b[0:8])
	copy(aesIV[8:24], a[8:24])
	copy(aesIV[24:32], b[24:32])

	return aesKey, aesIV
}

// https://core.telegram.org/mtproto/auth_key#server-responds-in-two-ways
func generateTempKeys(newNonce tl.Int256, serverNonce tl.Int128) (key, iv []byte) {
	hash1 := utils.Sha1Byte(newNonce[:], serverNonce[:])
	hash2 := utils.Sha1Byte(serverNonce[:], newNonce[:])
	hash3 := utils.Sha1Byte(newNonce[:], newNonce[:])

	// SHA1(new_nonce + server_nonce) + substr(SHA1(server_nonce + new_nonce), 0, 12)
	key = make([]byte, 0, 32)
	key = append(key, hash1...)
	key = append(key, hash2[:12]...)

	// substr(SHA1(server_nonce + new_nonce), 12, 8) + SHA1(new_nonce + new_nonce) + substr(new_nonce, 0, 4)
	iv = make([]byte, 0, 32)
	iv = append(iv, hash2[12:20]...)
	iv = append(iv, hash3...)
	iv = append(iv, newNonce[:4]...)

	return key, iv
}

// DecryptMessageWithTempKeys decrypts server_DH_params_ok.encrypted_answer
// and returns the answer with its hash and padding stripped.
func DecryptMessageWithTempKeys(msg []byte, newNonce tl.Int256, serverNonce tl.Int128) ([]byte, error) {
	key, iv := generateTempKeys(newNonce, serverNonce)
	c, err := NewCipher(key, iv)
	if err != nil {
		return nil, err
	}

	decoded := make([]byte, len(msg))
	if err := c.Decrypt(msg, decoded); err != nil {
		return nil, err
	}
	if len(decoded) < 20 {
		return nil, ErrDataTooSmall
	}

	// answer_with_hash := SHA1(answer) + answer + (0-15 random bytes)
	hash, answer := decoded[:20], decoded[20:]
	for pad := 0; pad < 16 && pad <= len(answer); pad++ {
		candidate := answer[:len(answer)-pad]
		if bytes.Equal(hash, utils.Sha1Byte(candidate)) {
			return candidate, nil
		}
	}
	return nil, ErrHashMismatch
}

// EncryptMessageWithTempKeys prepends sha1(msg), pads to 16 bytes and
// encrypts with the temporary handshake keys.
func EncryptMessageWithTempKeys(msg []byte, newNonce tl.Int256, serverNonce tl.Int128) ([]byte, error) {
	data := append(utils.Sha1Byte(msg), msg...)
	if rem := len(data) % 16; rem != 0 {
		data = append(data, utils.RandomBytes(16-rem)...)
	}

	key, iv := generateTempKeys(newNonce, serverNonce)
	c, err := NewCipher(key, iv)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(data))
	if err := c.Encrypt(data, out); err != nil {
		return nil, err
	}
	return out, nil
}
