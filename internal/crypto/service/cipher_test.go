package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/piivault/internal/crypto/domain"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestAEADManagerService_CreateCipher(t *testing.T) {
	manager := NewAEADManager()
	validKey := randomKey(t)

	t.Run("create AES-GCM cipher", func(t *testing.T) {
		cipher, err := manager.CreateCipher(validKey, cryptoDomain.AESGCM)
		require.NoError(t, err)

		_, ok := cipher.(*AESGCMCipher)
		assert.True(t, ok, "cipher should be of type *AESGCMCipher")
	})

	t.Run("create ChaCha20-Poly1305 cipher", func(t *testing.T) {
		cipher, err := manager.CreateCipher(validKey, cryptoDomain.ChaCha20)
		require.NoError(t, err)

		_, ok := cipher.(*ChaCha20Poly1305Cipher)
		assert.True(t, ok, "cipher should be of type *ChaCha20Poly1305Cipher")
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := manager.CreateCipher(validKey, cryptoDomain.Algorithm("unsupported"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})

	for _, size := range []int{0, 16, 31, 33, 64} {
		_, err := manager.CreateCipher(make([]byte, size), cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize, "key size %d", size)
	}

	t.Run("nil key", func(t *testing.T) {
		_, err := manager.CreateCipher(nil, cryptoDomain.ChaCha20)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

func TestAEAD_RecordLayout(t *testing.T) {
	manager := NewAEADManager()

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(alg.String(), func(t *testing.T) {
			cipher, err := manager.CreateCipher(randomKey(t), alg)
			require.NoError(t, err)

			plaintext := []byte("Alice")
			aad := []byte("TOKEN_abc123")

			ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
			require.NoError(t, err)
			assert.Len(t, nonce, cryptoDomain.NonceSize)
			assert.Len(t, ciphertext, len(plaintext)+cryptoDomain.TagSize)

			decrypted, err := cipher.Decrypt(ciphertext, nonce, aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)
		})
	}
}

func TestAEAD_NonceUniqueness(t *testing.T) {
	cipher, err := NewAESGCM(randomKey(t))
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		_, nonce, err := cipher.Encrypt([]byte("same value"), nil)
		require.NoError(t, err)

		_, dup := seen[string(nonce)]
		require.False(t, dup, "nonce reused after %d encryptions", i)
		seen[string(nonce)] = struct{}{}
	}
}

func TestAEAD_TamperDetection(t *testing.T) {
	manager := NewAEADManager()

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(alg.String(), func(t *testing.T) {
			cipher, err := manager.CreateCipher(randomKey(t), alg)
			require.NoError(t, err)

			ciphertext, nonce, err := cipher.Encrypt([]byte("Bob"), []byte("TOKEN_def456"))
			require.NoError(t, err)

			t.Run("flipped ciphertext bit", func(t *testing.T) {
				tampered := append([]byte(nil), ciphertext...)
				tampered[0] ^= 0x01
				_, err := cipher.Decrypt(tampered, nonce, []byte("TOKEN_def456"))
				assert.Error(t, err)
			})

			t.Run("flipped tag bit", func(t *testing.T) {
				tampered := append([]byte(nil), ciphertext...)
				tampered[len(tampered)-1] ^= 0x80
				_, err := cipher.Decrypt(tampered, nonce, []byte("TOKEN_def456"))
				assert.Error(t, err)
			})

			t.Run("different associated data", func(t *testing.T) {
				_, err := cipher.Decrypt(ciphertext, nonce, []byte("TOKEN_abc123"))
				assert.Error(t, err)
			})

			t.Run("wrong nonce length", func(t *testing.T) {
				_, err := cipher.Decrypt(ciphertext, nonce[:8], []byte("TOKEN_def456"))
				assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
			})

			t.Run("wrong key", func(t *testing.T) {
				other, err := manager.CreateCipher(randomKey(t), alg)
				require.NoError(t, err)
				_, err = other.Decrypt(ciphertext, nonce, []byte("TOKEN_def456"))
				assert.Error(t, err)
			})
		})
	}
}

func TestAEAD_EmptyPlaintext(t *testing.T) {
	cipher, err := NewChaCha20Poly1305(randomKey(t))
	require.NoError(t, err)

	ciphertext, nonce, err := cipher.Encrypt([]byte{}, nil)
	require.NoError(t, err)
	assert.Len(t, ciphertext, cryptoDomain.TagSize)

	decrypted, err := cipher.Decrypt(ciphertext, nonce, nil)
	require.NoError(t, err)
	assert.Empty(t, decrypted)
}
