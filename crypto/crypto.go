// SPDX-License-Identifier: GPL-3.0-only

package crypto

import (
	"blockboard-server/commons"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"strconv"

	"github.com/alexedwards/argon2id"
)

const (
	// Access, admin session and resident session tokens: 32 random
	// bytes encoded as unpadded base64url, always 43 characters.
	tokenByteLen = 32
	TokenLen     = 43

	// Short link codes: 6 random bytes, always 8 characters.
	shortCodeByteLen = 6
	ShortCodeLen     = 8
)

func NewCrypto() *Crypto {
	return &Crypto{
		ArgonTime:    envUint32("ARGON2_TIME", 1),
		ArgonMemory:  envUint32("ARGON2_MEMORY", 65536),
		ArgonThreads: uint8(envUint32("ARGON2_THREADS", 2)),
		ArgonKeyLen:  envUint32("ARGON2_KEYLEN", 32),
		ArgonSaltLen: envUint32("ARGON2_SALTLEN", 16),
	}
}

func envUint32(key string, fallback uint32) uint32 {
	if v := commons.GetEnv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return uint32(i)
		}
	}
	return fallback
}

func (c *Crypto) HashSecret(secret string) (string, error) {
	params := &argon2id.Params{
		Memory:      c.ArgonMemory,
		Iterations:  c.ArgonTime,
		Parallelism: c.ArgonThreads,
		SaltLength:  c.ArgonSaltLen,
		KeyLength:   c.ArgonKeyLen,
	}
	return argon2id.CreateHash(secret, params)
}

// VerifySecret reports whether secret matches the stored argon2id hash.
// A missing hash, a malformed hash and a comparison error all collapse
// to false; callers cannot tell them apart. A misconfigured store must
// never read as "all secrets accepted".
func (c *Crypto) VerifySecret(secret, storedHash string) bool {
	if secret == "" || storedHash == "" {
		return false
	}
	match, err := argon2id.ComparePasswordAndHash(secret, storedHash)
	if err != nil {
		commons.Logger.Debugf("Secret comparison errored, failing closed: %v", err)
		return false
	}
	return match
}

// GenerateToken returns a fresh credential token. The token gates
// property access on its own, so it has to be unpredictable.
func GenerateToken() (string, error) {
	b := make([]byte, tokenByteLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateShortCode returns a fresh URL-safe short link code.
// Uniqueness is the caller's problem; collisions are possible at this
// length and handled with insert-retry.
func GenerateShortCode() (string, error) {
	b := make([]byte, shortCodeByteLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateURLHash returns the unguessable path segment a property's
// public board is served under.
func GenerateURLHash() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
