package codec

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

func sealedFixture() (sealed, nonce []byte) {
	sealed = append([]byte("cipher"), bytes.Repeat([]byte{0xAB}, vaultDomain.TagSize)...)
	nonce = bytes.Repeat([]byte{0x01}, vaultDomain.NonceSize)
	return sealed, nonce
}

func TestSplit(t *testing.T) {
	t.Run("separates tag from ciphertext", func(t *testing.T) {
		sealed, nonce := sealedFixture()

		record, err := Split(sealed, nonce)
		require.NoError(t, err)
		assert.Equal(t, []byte("cipher"), record.Ciphertext)
		assert.Equal(t, bytes.Repeat([]byte{0xAB}, vaultDomain.TagSize), record.AuthTag)
		assert.Equal(t, nonce, record.Nonce)
		assert.False(t, record.CreatedAt.IsZero())
	})

	t.Run("does not alias input", func(t *testing.T) {
		sealed, nonce := sealedFixture()

		record, err := Split(sealed, nonce)
		require.NoError(t, err)
		sealed[0] = 'X'
		nonce[0] = 0xFF
		assert.Equal(t, byte('c'), record.Ciphertext[0])
		assert.Equal(t, byte(0x01), record.Nonce[0])
	})

	t.Run("tag only", func(t *testing.T) {
		_, nonce := sealedFixture()

		record, err := Split(make([]byte, vaultDomain.TagSize), nonce)
		require.NoError(t, err)
		assert.Empty(t, record.Ciphertext)
	})

	t.Run("shorter than tag", func(t *testing.T) {
		_, nonce := sealedFixture()

		_, err := Split(make([]byte, vaultDomain.TagSize-1), nonce)
		assert.ErrorIs(t, err, vaultDomain.ErrInvalidRecord)
	})

	t.Run("bad nonce", func(t *testing.T) {
		sealed, _ := sealedFixture()

		_, err := Split(sealed, []byte{1, 2, 3})
		assert.ErrorIs(t, err, vaultDomain.ErrInvalidRecord)
	})
}

func TestJoin(t *testing.T) {
	sealed, nonce := sealedFixture()

	record, err := Split(sealed, nonce)
	require.NoError(t, err)

	joined, err := Join(record)
	require.NoError(t, err)
	assert.Equal(t, sealed, joined)

	_, err = Join(&vaultDomain.EncryptedRecord{Ciphertext: []byte("x")})
	assert.ErrorIs(t, err, vaultDomain.ErrInvalidRecord)
}

func TestMarshalUnmarshal(t *testing.T) {
	sealed, nonce := sealedFixture()
	record, err := Split(sealed, nonce)
	require.NoError(t, err)
	record.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)

	data, err := Marshal(record)
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, record.Ciphertext, decoded.Ciphertext)
	assert.Equal(t, record.Nonce, decoded.Nonce)
	assert.Equal(t, record.AuthTag, decoded.AuthTag)
	assert.True(t, record.CreatedAt.Equal(decoded.CreatedAt))
}

func TestMarshal_InvalidRecord(t *testing.T) {
	_, err := Marshal(&vaultDomain.EncryptedRecord{Nonce: []byte{1}})
	assert.ErrorIs(t, err, vaultDomain.ErrInvalidRecord)
}

func TestUnmarshal_Errors(t *testing.T) {
	t.Run("garbage", func(t *testing.T) {
		_, err := Unmarshal([]byte("not msgpack at all"))
		assert.ErrorIs(t, err, vaultDomain.ErrInvalidRecord)
	})

	t.Run("unknown version", func(t *testing.T) {
		data, err := msgpack.Marshal(&wireRecord{
			Version: 99,
			Nonce:   make([]byte, vaultDomain.NonceSize),
			AuthTag: make([]byte, vaultDomain.TagSize),
		})
		require.NoError(t, err)

		_, err = Unmarshal(data)
		assert.ErrorIs(t, err, vaultDomain.ErrInvalidRecord)
	})

	t.Run("truncated tag", func(t *testing.T) {
		data, err := msgpack.Marshal(&wireRecord{
			Version: formatVersion,
			Nonce:   make([]byte, vaultDomain.NonceSize),
			AuthTag: make([]byte, 4),
		})
		require.NoError(t, err)

		_, err = Unmarshal(data)
		assert.ErrorIs(t, err, vaultDomain.ErrInvalidRecord)
	})
}
