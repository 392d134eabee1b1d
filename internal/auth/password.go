package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Scheme     = "pbkdf2_sha256"
	pbkdf2Iterations = 200_000
	pbkdf2SaltBytes  = 16
	pbkdf2KeyBytes   = sha256.Size
)

// HashPassword 生成 pbkdf2_sha256$<iterations>$<salt>$<key> 格式的摘要
func HashPassword(password string) (string, error) {
	salt := make([]byte, pbkdf2SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyBytes, sha256.New)
	return strings.Join([]string{
		pbkdf2Scheme,
		strconv.Itoa(pbkdf2Iterations),
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	}, "$"), nil
}

// VerifyPassword 验证明文密码是否与摘要匹配；摘要格式错误时返回 false
func VerifyPassword(candidate, digest string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 4 {
		return false
	}
	if !strings.HasPrefix(parts[0], "pbkdf2_") {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(expected) == 0 {
		return false
	}

	computed := pbkdf2.Key([]byte(candidate), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
