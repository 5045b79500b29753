package vault

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/scrypt"
)

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

func deriveKey(password string, salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(password), salt, ScryptN, ScryptR, ScryptP, KeyLen)
}

// Encode encrypts plaintext under password and returns
// hex(salt):hex(iv):hex(ciphertext). Salt and IV are fresh on every call.
func Encode(plaintext, password string) (string, error) {
	if password == "" {
		return "", ErrPasswordRequired
	}
	if !utf8.ValidString(plaintext) {
		return "", ErrInvalidPlaintext
	}

	salt, err := randBytes(SaltLen)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key, err := deriveKey(password, salt)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}
	defer zero(key)

	iv, err := randBytes(IVLen)
	if err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	padded := pad([]byte(plaintext), aes.BlockSize)
	defer zero(padded)

	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	return strings.Join([]string{
		hex.EncodeToString(salt),
		hex.EncodeToString(iv),
		hex.EncodeToString(ct),
	}, Delimiter), nil
}

// Decode reverses Encode. Structural problems are reported as ErrFormat
// before any key derivation; a wrong password or tampered ciphertext is
// reported as ErrAuthFailed.
func Decode(encoded, password string) (string, error) {
	salt, iv, ct, err := parseEncoded(encoded)
	if err != nil {
		return "", err
	}

	key, err := deriveKey(password, salt)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)
	defer zero(pt)

	msg, err := unpad(pt, aes.BlockSize)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(msg) {
		return "", ErrAuthFailed
	}
	return string(msg), nil
}

func parseEncoded(encoded string) (salt, iv, ct []byte, err error) {
	parts := strings.Split(encoded, Delimiter)
	if len(parts) != 3 {
		return nil, nil, nil, formatError(fmt.Sprintf("expected 3 fields, got %d", len(parts)))
	}

	salt, err = hex.DecodeString(parts[0])
	if err != nil || len(salt) != SaltLen {
		return nil, nil, nil, formatError("salt must be 16 hex-encoded bytes")
	}
	iv, err = hex.DecodeString(parts[1])
	if err != nil || len(iv) != IVLen {
		return nil, nil, nil, formatError("iv must be 16 hex-encoded bytes")
	}
	ct, err = hex.DecodeString(parts[2])
	if err != nil {
		return nil, nil, nil, formatError("ciphertext is not valid hex")
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, nil, nil, formatError("ciphertext length is not a positive multiple of the block size")
	}
	return salt, iv, ct, nil
}

// pad applies PKCS#7 padding.
func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(bytes.Clone(b), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, ErrAuthFailed
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size {
		return nil, ErrAuthFailed
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, ErrAuthFailed
		}
	}
	return b[:len(b)-n], nil
}
