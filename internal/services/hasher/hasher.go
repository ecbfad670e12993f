package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"

	"github.com/mcoot/textworld/internal/model"
)

// Supported digest algorithms
const (
	AlgorithmSHA256 = "sha256"
	AlgorithmSHA3   = "sha3-256"
	AlgorithmBLAKE3 = "blake3"
)

// Hasher turns a cleartext secret into a fixed-length digest
// Implementations are stateless and safe for concurrent use
type Hasher interface {
	Digest(secret string) (string, error)
}

// New returns the hasher for the named algorithm; empty selects SHA-256
func New(algorithm string) (Hasher, error) {
	switch strings.ToLower(algorithm) {
	case "", AlgorithmSHA256:
		return SHA256{}, nil
	case AlgorithmSHA3:
		return SHA3{}, nil
	case AlgorithmBLAKE3:
		return BLAKE3{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownAlgorithm, algorithm)
	}
}

// SHA256 produces upper-case hex SHA-256 digests, the format of existing pass.txt files
type SHA256 struct{}

func (SHA256) Digest(secret string) (string, error) {
	sum := sha256.Sum256([]byte(secret))
	return strings.ToUpper(hex.EncodeToString(sum[:])), nil
}

// SHA3 produces hex SHA3-256 digests
type SHA3 struct{}

func (SHA3) Digest(secret string) (string, error) {
	h := sha3.New256()
	if _, err := h.Write([]byte(secret)); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrHashFailure, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// BLAKE3 produces hex BLAKE3-256 digests
type BLAKE3 struct{}

func (BLAKE3) Digest(secret string) (string, error) {
	sum := blake3.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:]), nil
}
