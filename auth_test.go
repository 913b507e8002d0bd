package main

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/pbkdf2"
)

func pbkdf2Hash(password, salt string, iterations int) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, 32, sha256.New)
	return fmt.Sprintf("pbkdf2_sha256$%d$%s$%s", iterations, salt, base64.StdEncoding.EncodeToString(key))
}

func TestVerifyPasswordPlain(t *testing.T) {
	cfg := &Config{LawyerPass: "segredo"}

	assert.True(t, verifyPassword(cfg, "segredo"))
	assert.False(t, verifyPassword(cfg, "errado"))
	assert.False(t, verifyPassword(cfg, ""))
}

func TestVerifyPasswordPBKDF2(t *testing.T) {
	cfg := &Config{LawyerPassHash: pbkdf2Hash("segredo", "um-sal", 10000)}

	assert.True(t, verifyPassword(cfg, "segredo"))
	assert.False(t, verifyPassword(cfg, "errado"))
}

func TestVerifyPasswordHashTakesPrecedence(t *testing.T) {
	cfg := &Config{
		LawyerPass:     "plana",
		LawyerPassHash: pbkdf2Hash("segredo", "um-sal", 1000),
	}

	assert.True(t, verifyPassword(cfg, "segredo"))
	assert.False(t, verifyPassword(cfg, "plana"))
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	for _, hash := range []string{
		"bcrypt$whatever",
		"pbkdf2_sha256$abc$salt$key",
		"pbkdf2_sha256$0$salt$key",
		"pbkdf2_sha256$1000$$key",
		"pbkdf2_sha256$1000$salt$",
		"pbkdf2_sha256$1000",
	} {
		cfg := &Config{LawyerPassHash: hash}
		assert.False(t, verifyPassword(cfg, "segredo"), "hash %q must not verify", hash)
	}
}

func TestVerifyPasswordNothingConfigured(t *testing.T) {
	assert.False(t, verifyPassword(&Config{}, "qualquer"))
}
