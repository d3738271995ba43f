package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// ResetTokenLength is the byte length of generated password reset tokens
const ResetTokenLength = 32

// HashToken creates a SHA256 hash of a token
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// GenerateResetToken creates a random password reset token and its storage hash
func GenerateResetToken() (token string, tokenHash string, err error) {
	buf := make([]byte, ResetTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}

	token = hex.EncodeToString(buf)
	return token, HashToken(token), nil
}
