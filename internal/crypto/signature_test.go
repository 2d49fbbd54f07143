package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestSignAndVerify(t *testing.T) {
	key := generateKey(t)
	data := []byte(`{"email":"user@example.com"}`)

	sig, err := SignPKCS1v15(key, data)
	require.NoError(t, err)

	require.NoError(t, VerifyPKCS1v15(&key.PublicKey, data, sig))
}

func TestVerify_SingleBitMutations(t *testing.T) {
	key := generateKey(t)
	data := []byte("license for user@example.com")

	sig, err := SignPKCS1v15(key, data)
	require.NoError(t, err)
	rawSig, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)

	// каждый бит данных
	for i := 0; i < len(data)*8; i++ {
		mutated := append([]byte(nil), data...)
		mutated[i/8] ^= 1 << (i % 8)
		err := VerifyPKCS1v15(&key.PublicKey, mutated, sig)
		require.ErrorIs(t, err, ErrInvalidSignature, "data bit %d", i)
	}

	// выборочно биты подписи
	for i := 0; i < len(rawSig)*8; i += 7 {
		mutated := append([]byte(nil), rawSig...)
		mutated[i/8] ^= 1 << (i % 8)
		err := VerifyPKCS1v15(&key.PublicKey, data, base64.StdEncoding.EncodeToString(mutated))
		require.ErrorIs(t, err, ErrInvalidSignature, "signature bit %d", i)
	}
}

func TestVerify_WrongKeyAndBadInput(t *testing.T) {
	key := generateKey(t)
	other := generateKey(t)
	data := []byte("payload")

	sig, err := SignPKCS1v15(key, data)
	require.NoError(t, err)

	assert.ErrorIs(t, VerifyPKCS1v15(&other.PublicKey, data, sig), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyPKCS1v15(&key.PublicKey, data, "%%%not base64"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyPKCS1v15(&key.PublicKey, data, ""), ErrInvalidSignature)
	assert.Error(t, VerifyPKCS1v15(nil, data, sig))
}

func TestPEMRoundTrip(t *testing.T) {
	key := generateKey(t)

	pubPEM, err := EncodePublicKeyPEM(&key.PublicKey)
	require.NoError(t, err)

	parsed, err := ParsePublicKeyPEM(pubPEM)
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(parsed))

	pkcs1 := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey)})
	parsed, err = ParsePublicKeyPEM(pkcs1)
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(parsed))

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	priv, err := ParsePrivateKeyPEM(privPEM)
	require.NoError(t, err)
	assert.True(t, key.Equal(priv))

	pkcs8, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	priv, err = ParsePrivateKeyPEM(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8}))
	require.NoError(t, err)
	assert.True(t, key.Equal(priv))
}

func TestParsePEM_Errors(t *testing.T) {
	_, err := ParsePublicKeyPEM([]byte("not a pem"))
	assert.Error(t, err)

	_, err = ParsePublicKeyPEM(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1}}))
	assert.Error(t, err)

	_, err = ParsePrivateKeyPEM([]byte("garbage"))
	assert.Error(t, err)
}
