// Copyright (c) 2024 RoseLoverX

package math

import (
	"crypto/rand"
	"crypto/rsa"
	"math/big"
	"math/bits"

	"github.com/pkg/errors"
)

var (
	big1 = big.NewInt(1)
	// g_a and g_b must lie in [2^(2048-64), p - 2^(2048-64)]
	safetyMargin = new(big.Int).Lsh(big1, 2048-64)
)

// RSABlockSize is the plaintext size of the raw RSA step of the handshake.
const RSABlockSize = 255

// DoRSAencrypt encrypts one 255 byte block with a server public key. No
// padding scheme is applied: the block is raised to e modulo n, and the
// result is left padded to 256 bytes.
func DoRSAencrypt(block []byte, key *rsa.PublicKey) ([]byte, error) {
	if len(block) != RSABlockSize {
		return nil, errors.Errorf("block size is %d bytes, want %d", len(block), RSABlockSize)
	}
	z := new(big.Int).SetBytes(block)
	c := new(big.Int).Exp(z, big.NewInt(int64(key.E)), key.N)

	res := make([]byte, 256)
	c.FillBytes(res)
	return res, nil
}

// Factorize splits pq into its two prime factors, p < q, using Brent's
// variant of Pollard's rho.
func Factorize(pq uint64) (p, q uint64, err error) {
	if pq < 4 {
		return 0, 0, errors.Errorf("can't factorize %d", pq)
	}
	if pq%2 == 0 {
		return 2, pq / 2, nil
	}

	for c := uint64(1); c < 64; c++ {
		g := brent(pq, 2, c)
		if g == 1 || g == pq {
			continue
		}
		p, q = g, pq/g
		if p > q {
			p, q = q, p
		}
		return p, q, nil
	}
	return 0, 0, errors.Errorf("failed to factorize %d", pq)
}

func brent(n, y, c uint64) uint64 {
	const m = 128
	g, r, q := uint64(1), uint64(1), uint64(1)
	var x, ys uint64

	f := func(v uint64) uint64 { return addMod(mulMod(v, v, n), c, n) }

	for g == 1 {
		x = y
		for i := uint64(0); i < r; i++ {
			y = f(y)
		}
		for k := uint64(0); k < r && g == 1; k += m {
			ys = y
			for i := uint64(0); i < m && i < r-k; i++ {
				y = f(y)
				q = mulMod(q, absDiff(x, y), n)
			}
			g = gcd(q, n)
		}
		r *= 2
	}

	if g == n {
		for g = 1; g == 1; {
			ys = f(ys)
			g = gcd(absDiff(x, ys), n)
		}
	}
	return g
}

func mulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi%m, lo, m)
	return rem
}

func addMod(a, b, m uint64) uint64 {
	s, carry := bits.Add64(a, b, 0)
	if carry != 0 || s >= m {
		s -= m
	}
	return s
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// CheckDHValue reports whether v is a safe public DH value for prime p:
// 1 < v < p-1, and at least 2^(2048-64) away from both ends.
func CheckDHValue(v, p *big.Int) error {
	pMinus1 := new(big.Int).Sub(p, big1)
	if v.Cmp(big1) <= 0 || v.Cmp(pMinus1) >= 0 {
		return errors.New("dh value out of (1, p-1)")
	}
	if v.Cmp(safetyMargin) < 0 || v.Cmp(new(big.Int).Sub(p, safetyMargin)) > 0 {
		return errors.New("dh value too close to the bounds")
	}
	return nil
}

// MakeGAB picks a random 2048-bit secret b and returns b, g^b mod p and
// g_a^b mod p. g_b is regenerated until it passes CheckDHValue.
func MakeGAB(g int32, gA, dhPrime *big.Int) (b, gB, gAB *big.Int, err error) {
	gBig := big.NewInt(int64(g))
	buf := make([]byte, 256)
	for i := 0; i < 16; i++ {
		if _, err := rand.Read(buf); err != nil {
			return nil, nil, nil, errors.Wrap(err, "reading random")
		}
		b = new(big.Int).SetBytes(buf)
		gB = new(big.Int).Exp(gBig, b, dhPrime)
		if CheckDHValue(gB, dhPrime) != nil {
			continue
		}
		gAB = new(big.Int).Exp(gA, b, dhPrime)
		return b, gB, gAB, nil
	}
	return nil, nil, nil, errors.New("couldn't generate a safe g_b")
}
