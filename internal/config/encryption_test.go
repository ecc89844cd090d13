// AddonSync - Group-Managed Addon Collection Synchronization for Stremio
// Copyright 2026 StrmForge Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strmforge/addonsync

package config

import (
	"errors"
	"strings"
	"testing"
)

const testSecret = "unit-test-secret-0123456789"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	enc, err := NewCredentialEncryptor(testSecret)
	if err != nil {
		t.Fatalf("NewCredentialEncryptor: %v", err)
	}

	plaintexts := []string{
		"auth-key-abc123",
		"a",
		strings.Repeat("long-credential-", 64),
		"unicode-ключ-密钥",
	}

	for _, plaintext := range plaintexts {
		ciphertext, err := enc.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q): %v", plaintext, err)
		}
		if ciphertext == plaintext {
			t.Errorf("ciphertext equals plaintext for %q", plaintext)
		}

		decrypted, err := enc.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if decrypted != plaintext {
			t.Errorf("round trip: expected %q, got %q", plaintext, decrypted)
		}
	}
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	t.Parallel()

	enc, err := NewCredentialEncryptor(testSecret)
	if err != nil {
		t.Fatalf("NewCredentialEncryptor: %v", err)
	}

	first, err := enc.Encrypt("same-plaintext")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	second, err := enc.Encrypt("same-plaintext")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if first == second {
		t.Error("two encryptions of the same plaintext must differ (random nonce)")
	}
}

func TestDecryptWithWrongSecret(t *testing.T) {
	t.Parallel()

	enc1, err := NewCredentialEncryptor(testSecret)
	if err != nil {
		t.Fatalf("NewCredentialEncryptor: %v", err)
	}
	enc2, err := NewCredentialEncryptor("a-different-secret-9876543210")
	if err != nil {
		t.Fatalf("NewCredentialEncryptor: %v", err)
	}

	ciphertext, err := enc1.Encrypt("auth-key")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if _, err := enc2.Decrypt(ciphertext); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	t.Parallel()

	enc, err := NewCredentialEncryptor(testSecret)
	if err != nil {
		t.Fatalf("NewCredentialEncryptor: %v", err)
	}

	ciphertext, err := enc.Encrypt("auth-key")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// Flip one character in the base64 body.
	tampered := []byte(ciphertext)
	if tampered[10] == 'A' {
		tampered[10] = 'B'
	} else {
		tampered[10] = 'A'
	}

	if _, err := enc.Decrypt(string(tampered)); err == nil {
		t.Error("expected tampered ciphertext to fail authentication")
	}
}

func TestEncryptionInputValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewCredentialEncryptor(""); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("expected ErrEmptySecret, got %v", err)
	}

	enc, err := NewCredentialEncryptor(testSecret)
	if err != nil {
		t.Fatalf("NewCredentialEncryptor: %v", err)
	}

	if _, err := enc.Encrypt(""); !errors.Is(err, ErrEmptyPlaintext) {
		t.Errorf("expected ErrEmptyPlaintext, got %v", err)
	}
	if _, err := enc.Decrypt(""); !errors.Is(err, ErrEmptyCiphertext) {
		t.Errorf("expected ErrEmptyCiphertext, got %v", err)
	}
	if _, err := enc.Decrypt("not-valid-base64!!!"); !errors.Is(err, ErrInvalidCiphertext) {
		t.Errorf("expected ErrInvalidCiphertext, got %v", err)
	}
	if _, err := enc.Decrypt("c2hvcnQ="); !errors.Is(err, ErrCiphertextTooShort) {
		t.Errorf("expected ErrCiphertextTooShort, got %v", err)
	}
}

func TestMaskCredential(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"ab", "****"},
		{"abcd", "****"},
		{"abcdefgh", "****...efgh"},
	}

	for _, tt := range tests {
		if got := MaskCredential(tt.input); got != tt.want {
			t.Errorf("MaskCredential(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
