// Copyright (c) 2024 RoseLoverX

package math

import (
	"crypto/rand"
	"crypto/rsa"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactorize(t *testing.T) {
	tests := []struct {
		pq   uint64
		p, q uint64
	}{
		{0x17ed48941a08f981, 0x494c553b, 0x53911073},
		{1000000007 * 998244353, 998244353, 1000000007},
		{15, 3, 5},
		{2 * 1000003, 2, 1000003},
	}

	for _, tt := range tests {
		p, q, err := Factorize(tt.pq)
		require.NoError(t, err)
		assert.Equal(t, tt.p, p, "pq %d", tt.pq)
		assert.Equal(t, tt.q, q, "pq %d", tt.pq)
	}

	_, _, err := Factorize(3)
	assert.Error(t, err)
}

func TestMulModNoOverflow(t *testing.T) {
	m := uint64(0xffffffffffffffc5)
	a := m - 1
	// (m-1)^2 = 1 (mod m)
	assert.Equal(t, uint64(1), mulMod(a, a, m))
	assert.Equal(t, uint64(0), addMod(a, 1, m))
}

func TestDoRSAencryptRoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	block := make([]byte, RSABlockSize)
	_, _ = rand.Read(block)
	block[0] = 0

	enc, err := DoRSAencrypt(block, &key.PublicKey)
	require.NoError(t, err)
	require.Len(t, enc, 256)

	dec := new(big.Int).Exp(new(big.Int).SetBytes(enc), key.D, key.N)
	out := make([]byte, RSABlockSize)
	dec.FillBytes(out)
	assert.Equal(t, block, out)

	_, err = DoRSAencrypt(make([]byte, 10), &key.PublicKey)
	assert.Error(t, err)
}

func TestCheckDHValue(t *testing.T) {
	p := new(big.Int).Lsh(big1, 2048)
	p.Sub(p, big.NewInt(159))

	assert.Error(t, CheckDHValue(big.NewInt(1), p))
	assert.Error(t, CheckDHValue(new(big.Int).Sub(p, big1), p))
	assert.Error(t, CheckDHValue(big.NewInt(1<<40), p))
	assert.NoError(t, CheckDHValue(new(big.Int).Lsh(big1, 2000), p))
}

func TestMakeGAB(t *testing.T) {
	p := new(big.Int).Lsh(big1, 2048)
	p.Sub(p, big.NewInt(159))

	a := new(big.Int).Lsh(big1, 1500)
	gA := new(big.Int).Exp(big.NewInt(3), a, p)

	b, gB, gAB, err := MakeGAB(3, gA, p)
	require.NoError(t, err)
	assert.NoError(t, CheckDHValue(gB, p))

	// both sides agree
	assert.Zero(t, gAB.Cmp(new(big.Int).Exp(gB, a, p)))
	assert.Zero(t, gAB.Cmp(new(big.Int).Exp(gA, b, p)))
}
