package crypto

import "testing"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c, err := NewAESFieldCipher("unit-test-secret")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	stored, err := c.Encrypt("9876543210")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if !IsEncrypted(stored) {
		t.Fatalf("encrypted value missing marker: %q", stored)
	}

	plain, err := c.Decrypt(stored)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "9876543210" {
		t.Fatalf("round trip mismatch: %q", plain)
	}
}

func TestDecryptPassesThroughCleartext(t *testing.T) {
	c, err := NewAESFieldCipher("unit-test-secret")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	plain, err := c.Decrypt("9876543210")
	if err != nil {
		t.Fatalf("decrypt cleartext: %v", err)
	}
	if plain != "9876543210" {
		t.Fatalf("cleartext must pass through unchanged, got %q", plain)
	}
}

func TestEncryptionIsNonDeterministic(t *testing.T) {
	c, err := NewAESFieldCipher("unit-test-secret")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	a, _ := c.Encrypt("9876543210")
	b, _ := c.Encrypt("9876543210")
	if a == b {
		t.Fatalf("two encryptions of the same value must differ")
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	c, err := NewAESFieldCipher("unit-test-secret")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	if _, err := c.Decrypt("enc:not-base64!!!"); err != ErrCiphertextInvalid {
		t.Fatalf("expected ErrCiphertextInvalid, got %v", err)
	}
	if _, err := c.Decrypt("enc:YWJj"); err != ErrCiphertextInvalid {
		t.Fatalf("expected ErrCiphertextInvalid for short payload, got %v", err)
	}
}

func TestHashKeyIsStable(t *testing.T) {
	if HashKey("9876543210") != HashKey(" 9876543210 ") {
		t.Fatalf("hash key must ignore surrounding whitespace")
	}
	if HashKey("9876543210") == HashKey("9876543211") {
		t.Fatalf("different identities must hash differently")
	}
}

func TestNoopCipher(t *testing.T) {
	c := NewNoopCipher()
	if c.Enabled() {
		t.Fatalf("noop cipher must report disabled")
	}
	stored, err := c.Encrypt("9876543210")
	if err != nil || stored != "9876543210" {
		t.Fatalf("noop encrypt must pass through, got %q err %v", stored, err)
	}
}
