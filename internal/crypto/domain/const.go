package domain

// Algorithm identifies the AEAD construction used to seal vault records.
//
// Both supported algorithms take a 256-bit key, a 96-bit nonce and produce a
// 128-bit authentication tag, so records written under either share one layout.
type Algorithm string

const (
	// AESGCM is AES-256 in Galois/Counter Mode. Default on hardware with AES-NI.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305, preferred where AES is not hardware accelerated.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// Sizes shared by every supported algorithm.
const (
	// KeySize is the symmetric key length in bytes.
	KeySize = 32

	// NonceSize is the per-record nonce length in bytes.
	NonceSize = 12

	// TagSize is the authentication tag length in bytes.
	TagSize = 16
)

// Key derivation parameters.
const (
	// MinKDFIterations is the lowest PBKDF2 iteration count accepted.
	MinKDFIterations = 100_000

	// DefaultKDFIterations is used when no iteration count is configured.
	DefaultKDFIterations = 210_000
)

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(value string) (Algorithm, error) {
	switch Algorithm(value) {
	case AESGCM, ChaCha20:
		return Algorithm(value), nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}

// String returns the string representation of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}
