// Copyright (c) 2022 RoseLoverX

package keys

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/binary"
	"encoding/pem"
	"math/big"
	"os"

	"github.com/pkg/errors"

	"github.com/roseloverx/mtproto/internal/encoding/tl"
	"github.com/roseloverx/mtproto/internal/utils"
)

// telegramKeys is the production server key set.
const telegramKeys = `-----BEGIN RSA PUBLIC KEY-----
MIIBCgKCAQEA6LszBcC1LGzyr992NzE0ieY+BSaOW622Aa9Bd4ZHLl+TuFQ4lo4g
5nKaMBwK/BIb9xUfg0Q29/2mgIR6Zr9krM7HjuIcCzFvDtr+L0GQjae9H0pRB2OO
62cECs5HKhT5DZ98K33vmWiLowc621dQuwKWSQKjWf50XYFw42h21P2KXUGyp2y/
+aEyZ+uVgLLQbRA1dEjSDZ2iGRy12Mk5gpYc397aYp438fsJoHIgJ2lgMv5h7WY9
t6N/byY9Nw9p21Og3AoXSL2q/2IJ1WRUhebgAdGVMlV1fkuOQoEzR7EdpqtQD9Cs
5+bfo3Nhmcyvk5ftB0WkJ9z6bNZ7yxrP8wIDAQAB
-----END RSA PUBLIC KEY-----
`

// DefaultKeys returns the embedded server keys.
func DefaultKeys() []*rsa.PublicKey {
	k, err := ParsePEM([]byte(telegramKeys))
	if err != nil {
		panic("parsing embedded server keys: " + err.Error())
	}
	return k
}

// RSAFingerprint is the lower 64 bits of sha1 over the TL serialization of
// the key's modulus and exponent, read as a little-endian integer.
// https://core.telegram.org/mtproto/auth_key
func RSAFingerprint(key *rsa.PublicKey) int64 {
	buf := bytes.NewBuffer(nil)
	e := tl.NewEncoder(buf)
	e.PutMessage(key.N.Bytes())
	e.PutMessage(big.NewInt(int64(key.E)).Bytes())

	return int64(binary.LittleEndian.Uint64(utils.Sha1Byte(buf.Bytes())[12:20]))
}

// ReadFromFile loads every public key of a PEM file.
func ReadFromFile(path string) ([]*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading key file")
	}
	return ParsePEM(data)
}

// ParsePEM decodes PKCS#1 or PKIX encoded RSA public keys.
func ParsePEM(data []byte) ([]*rsa.PublicKey, error) {
	var keys []*rsa.PublicKey
	offset := 0
	for {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}

		key, err := pemBytesToRsa(block.Bytes)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse key at offset %d", offset)
		}

		keys = append(keys, key)
		offset += len(data) - len(rest)
		data = rest
	}

	if len(keys) == 0 {
		return nil, errors.New("no public keys found")
	}
	return keys, nil
}

func pemBytesToRsa(data []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKCS1PublicKey(data)
	if err == nil {
		return key, nil
	}

	k, pkixErr := x509.ParsePKIXPublicKey(data)
	if pkixErr != nil {
		return nil, err
	}
	rsaKey, ok := k.(*rsa.PublicKey)
	if !ok {
		return nil, errors.Errorf("not an RSA key: %T", k)
	}
	return rsaKey, nil
}

// SaveRsaKey encodes key as a PKCS#1 PEM block.
func SaveRsaKey(key *rsa.PublicKey) string {
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(key),
	}))
}
