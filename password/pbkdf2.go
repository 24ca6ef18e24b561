package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/fittrack/fittrack/internal/crypto"
)

// pbkdf2Ident is the modular-crypt identifier written into every hash.
const pbkdf2Ident = "pbkdf2-sha256"

// PBKDF2Config holds the configuration for PBKDF2-HMAC-SHA256 hashing.
type PBKDF2Config struct {
	// Rounds is the PBKDF2 iteration count.
	Rounds int

	// SaltLength is the length of the random salt in bytes.
	SaltLength int

	// KeyLength is the length of the derived key in bytes.
	KeyLength int
}

// DefaultPBKDF2Config returns the parameters used for newly created hashes.
// They match passlib's pbkdf2_sha256 defaults so hashes stay interchangeable.
func DefaultPBKDF2Config() *PBKDF2Config {
	return &PBKDF2Config{
		Rounds:     29000,
		SaltLength: 16,
		KeyLength:  32,
	}
}

// PBKDF2Hasher implements the Hasher interface using PBKDF2 with SHA-256.
type PBKDF2Hasher struct {
	config *PBKDF2Config
}

// NewPBKDF2Hasher creates a new PBKDF2 hasher with the given configuration.
// If config is nil, DefaultPBKDF2Config is used. Non-positive fields fall
// back to their defaults.
func NewPBKDF2Hasher(config *PBKDF2Config) *PBKDF2Hasher {
	def := DefaultPBKDF2Config()
	if config == nil {
		return &PBKDF2Hasher{config: def}
	}
	c := *config
	if c.Rounds <= 0 {
		c.Rounds = def.Rounds
	}
	if c.SaltLength <= 0 {
		c.SaltLength = def.SaltLength
	}
	if c.KeyLength <= 0 {
		c.KeyLength = def.KeyLength
	}
	return &PBKDF2Hasher{config: &c}
}

// Hash creates a PBKDF2-SHA256 hash from a password.
// Returns the hash in modular crypt format: $pbkdf2-sha256$29000$salt$checksum
// where salt and checksum use passlib's "ab64" alphabet.
func (h *PBKDF2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", &InvalidInputError{Field: "password", Reason: "must not be empty"}
	}

	salt := crypto.MustRandomBytes(h.config.SaltLength)
	key := pbkdf2.Key([]byte(password), salt, h.config.Rounds, h.config.KeyLength, sha256.New)

	return fmt.Sprintf("$%s$%d$%s$%s",
		pbkdf2Ident,
		h.config.Rounds,
		ab64Encode(salt),
		ab64Encode(key),
	), nil
}

// Verify checks if a password matches a PBKDF2-SHA256 hash.
func (h *PBKDF2Hasher) Verify(password, encodedHash string) (bool, error) {
	rounds, salt, want, err := decodePBKDF2Hash(encodedHash)
	if err != nil {
		return false, err
	}

	got := pbkdf2.Key([]byte(password), salt, rounds, len(want), sha256.New)
	defer crypto.WipeBytes(got)

	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// NeedsRehash checks if a hash was created with different parameters.
func (h *PBKDF2Hasher) NeedsRehash(encodedHash string) bool {
	rounds, salt, key, err := decodePBKDF2Hash(encodedHash)
	if err != nil {
		return true
	}

	return rounds != h.config.Rounds ||
		len(salt) != h.config.SaltLength ||
		len(key) != h.config.KeyLength
}

// decodePBKDF2Hash parses a hash produced by Hash.
func decodePBKDF2Hash(encodedHash string) (int, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 5 || parts[0] != "" {
		return 0, nil, nil, invalidHash("invalid hash format")
	}

	if parts[1] != pbkdf2Ident {
		return 0, nil, nil, invalidHash("unsupported algorithm " + strconv.Quote(parts[1]))
	}

	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds <= 0 {
		return 0, nil, nil, invalidHash("invalid rounds " + strconv.Quote(parts[2]))
	}

	salt, err := ab64Decode(parts[3])
	if err != nil || len(salt) == 0 {
		return 0, nil, nil, invalidHash("invalid salt encoding")
	}

	key, err := ab64Decode(parts[4])
	if err != nil || len(key) == 0 {
		return 0, nil, nil, invalidHash("invalid checksum encoding")
	}

	return rounds, salt, key, nil
}

// ab64Encode is unpadded standard base64 with '+' replaced by '.'.
func ab64Encode(b []byte) string {
	return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(b), "+", ".")
}

func ab64Decode(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.ReplaceAll(s, ".", "+"))
}

// Ensure PBKDF2Hasher implements Hasher.
var _ Hasher = (*PBKDF2Hasher)(nil)
