package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

// encryptedMagic prefixes every encrypted backup file.
const encryptedMagic = "RBCENC01"

// Argon2id parameters (RFC 9106 second recommended option).
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLength    = 32
)

// ErrWrongPassword is returned when an encrypted backup cannot be opened.
var ErrWrongPassword = errors.New("wrong password or corrupted backup")

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// sealBytes encrypts plaintext with AES-256-GCM under a password-derived key.
// Layout: magic || salt || nonce || ciphertext+tag.
func sealBytes(plaintext []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("password required")
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(encryptedMagic)+len(salt)+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, encryptedMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// openBytes reverses sealBytes.
func openBytes(sealed []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("password required")
	}
	if !bytes.HasPrefix(sealed, []byte(encryptedMagic)) {
		return nil, fmt.Errorf("not an encrypted backup")
	}
	sealed = sealed[len(encryptedMagic):]
	if len(sealed) < saltLength {
		return nil, ErrWrongPassword
	}

	gcm, err := newGCM(password, sealed[:saltLength])
	if err != nil {
		return nil, err
	}
	sealed = sealed[saltLength:]
	if len(sealed) < gcm.NonceSize()+gcm.Overhead() {
		return nil, ErrWrongPassword
	}

	plaintext, err := gcm.Open(nil, sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():], nil)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}

func encryptFile(src, dst, password string) error {
	plaintext, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	sealed, err := sealBytes(plaintext, password)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, sealed, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

func decryptFile(src, dst, password string) error {
	sealed, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	plaintext, err := openBytes(sealed, password)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, plaintext, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

// IsEncrypted reports whether the file starts with the encrypted backup header.
func IsEncrypted(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, len(encryptedMagic))
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return n == len(encryptedMagic) && string(header) == encryptedMagic, nil
}
