// Package service generates and verifies the agent secret that guards the local HTTP API.
package service

// SecretService issues and verifies agent secrets. Only the Argon2id hash of a secret
// is ever configured; the plain secret is shown once when it is created.
type SecretService interface {
	// GenerateSecret returns a fresh random secret and its PHC-encoded hash.
	GenerateSecret() (plainSecret string, hashedSecret string, err error)

	// HashSecret hashes plainSecret with a random salt.
	HashSecret(plainSecret string) (string, error)

	// CompareSecret reports whether plainSecret matches hashedSecret in constant time.
	// A malformed hash never matches.
	CompareSecret(plainSecret string, hashedSecret string) bool
}
