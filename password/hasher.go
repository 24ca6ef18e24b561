// Package password provides password hashing and verification.
package password

// Hasher defines the interface for password hashing algorithms.
type Hasher interface {
	// Hash creates a salted hash from a plaintext password.
	// Two calls with the same input produce different outputs.
	Hash(password string) (string, error)

	// Verify checks if a password matches a hash produced by Hash.
	// It returns (false, nil) on mismatch and an *InvalidInputError when
	// the hash cannot be parsed.
	Verify(password, hash string) (bool, error)

	// NeedsRehash checks if a hash needs to be regenerated.
	// Returns true if the hash was created with different parameters.
	NeedsRehash(hash string) bool
}
