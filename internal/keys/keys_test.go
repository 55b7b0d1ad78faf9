// Copyright (c) 2022 RoseLoverX

package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeysParse(t *testing.T) {
	k := DefaultKeys()
	require.Len(t, k, 1)
	assert.Equal(t, 2048, k[0].N.BitLen())
	assert.Equal(t, 65537, k[0].E)
}

func TestSaveAndReadKeys(t *testing.T) {
	first, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	second, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "keys.pem")
	data := SaveRsaKey(&first.PublicKey) + SaveRsaKey(&second.PublicKey)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	loaded, err := ReadFromFile(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Zero(t, first.PublicKey.N.Cmp(loaded[0].N))
	assert.Equal(t, RSAFingerprint(&second.PublicKey), RSAFingerprint(loaded[1]))
	assert.NotEqual(t, RSAFingerprint(loaded[0]), RSAFingerprint(loaded[1]))
}

func TestParsePEMEmpty(t *testing.T) {
	_, err := ParsePEM([]byte("nothing here"))
	assert.Error(t, err)

	_, err = ReadFromFile(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
}
