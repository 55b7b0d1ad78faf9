// Copyright (c) 2024 RoseLoverX

package ige

import (
	"crypto/sha256"
	"crypto/sha512"
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

// ModPow is the SRP algorithm of account.password, as
// passwordKdfAlgoSHA256SHA256PBKDF2HMACSHA512iter100000SHA256ModPow.
type ModPow struct {
	Salt1 []byte
	Salt2 []byte
	G     int32
	P     []byte
}

// SrpAnswer carries the inputs of inputCheckPasswordSRP.
type SrpAnswer struct {
	GA []byte
	M1 []byte
}

// GetInputCheckPassword computes the SRP proof for password. srpB is the
// server's public value, random 256 bytes of client secret.
func GetInputCheckPassword(password string, srpB []byte, mp *ModPow, random []byte) (*SrpAnswer, error) {
	if password == "" {
		return nil, errors.New("empty password")
	}
	if err := validateCurrentAlgo(srpB, mp); err != nil {
		return nil, errors.Wrap(err, "validating CurrentAlgo")
	}

	p := BytesToBig(mp.P)
	g := big.NewInt(int64(mp.G))
	gBytes := Pad256(g.Bytes())

	a := BytesToBig(random)
	ga := Pad256(BigExp(g, a, p).Bytes())
	gb := Pad256(srpB)

	u := BytesToBig(calcSHA256(ga, gb))
	x := BytesToBig(PasswordHash2([]byte(password), mp.Salt1, mp.Salt2))
	v := BigExp(g, x, p)
	k := BytesToBig(calcSHA256(mp.P, gBytes))

	// t = (g_b - k*v) mod p
	kv := new(big.Int).Mul(k, v)
	kv.Mod(kv, p)
	t := new(big.Int).Sub(BytesToBig(srpB), kv)
	t.Mod(t, p)

	// s_a = t^(a + u*x) mod p
	exp := new(big.Int).Mul(u, x)
	exp.Add(exp, a)
	sa := Pad256(BigExp(t, exp, p).Bytes())
	ka := calcSHA256(sa)

	m1 := calcSHA256(
		BytesXor(calcSHA256(mp.P), calcSHA256(gBytes)),
		calcSHA256(mp.Salt1),
		calcSHA256(mp.Salt2),
		ga,
		gb,
		ka,
	)

	return &SrpAnswer{GA: ga, M1: m1}, nil
}

func validateCurrentAlgo(srpB []byte, mp *ModPow) error {
	if mp == nil || len(mp.P) != 256 {
		return errors.New("receive invalid modulus")
	}
	if mp.G < 2 || mp.G > 7 {
		return errors.Errorf("receive invalid config g = %d", mp.G)
	}

	p := BytesToBig(mp.P)
	gb := BytesToBig(srpB)
	if gb.Sign() <= 0 || gb.Cmp(p) >= 0 || len(srpB) < 248 || len(srpB) > 256 {
		return errors.New("receive invalid value of B")
	}
	return nil
}

func saltingHashing(data, salt []byte) []byte {
	return calcSHA256(salt, data, salt)
}

func passwordHash1(password, salt1, salt2 []byte) []byte {
	return saltingHashing(saltingHashing(password, salt1), salt2)
}

// PasswordHash2 is SH(pbkdf2(sha512, PH1(password), salt1, 100000), salt2).
func PasswordHash2(password, salt1, salt2 []byte) []byte {
	return saltingHashing(pbkdf2.Key(passwordHash1(password, salt1, salt2), salt1, 100000, 64, sha512.New), salt2)
}

// Pad256 left pads b with zeroes to 256 bytes, or keeps its last 256 bytes.
func Pad256(b []byte) []byte {
	if len(b) >= 256 {
		return b[len(b)-256:]
	}

	tmp := make([]byte, 256)
	copy(tmp[256-len(b):], b)
	return tmp
}

func calcSHA256(arrays ...[]byte) []byte {
	h := sha256.New()
	for _, arr := range arrays {
		h.Write(arr)
	}
	return h.Sum(nil)
}

func BytesToBig(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

func BigExp(x, y, m *big.Int) *big.Int {
	return new(big.Int).Exp(x, y, m)
}

func BytesXor(a, b []byte) []byte {
	res := make([]byte, len(a))
	copy(res, a)
	for i := range res {
		res[i] ^= b[i]
	}
	return res
}
