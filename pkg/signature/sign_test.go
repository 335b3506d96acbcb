package signature

import (
	"testing"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/vedhavyas/go-subkey"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	keypair, err := sr25519.GenerateKeypair()
	if err != nil {
		t.Fatalf("Failed to generate keypair: %v", err)
	}

	provider, err := NewProvider(keypair)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	message := "observation batch for step 42"
	sig, err := provider.Sign(message)
	if err != nil {
		t.Fatalf("Failed to sign message: %v", err)
	}

	if len(sig) != 130 { // 0x + 128 hex chars (64 bytes)
		t.Errorf("Expected signature length 130, got %d", len(sig))
	}
	if sig[:2] != "0x" {
		t.Error("Expected signature to start with '0x'")
	}

	ok, err := Verify(message, sig, ToSS58Address(keypair))
	if err != nil {
		t.Fatalf("Verification failed: %v", err)
	}
	if !ok {
		t.Error("Expected signature to be valid, but verification failed")
	}
}

func TestSignWithKnownSeed(t *testing.T) {
	keypair, err := sr25519.NewKeypairFromMnenomic(subkey.DevPhrase, "")
	if err != nil {
		t.Fatalf("Failed to create keypair from seed: %v", err)
	}

	provider, err := NewProvider(keypair)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	sig, err := provider.Sign("round trip with dev phrase")
	if err != nil {
		t.Fatalf("Failed to sign message: %v", err)
	}

	ok, err := Verify("round trip with dev phrase", sig, ToSS58Address(keypair))
	if err != nil {
		t.Fatalf("Verification failed: %v", err)
	}
	if !ok {
		t.Error("Round trip test failed: signature verification failed")
	}
}

func TestSignNilKeypair(t *testing.T) {
	provider := &Provider{keypair: nil}
	if _, err := provider.Sign("test message"); err == nil {
		t.Error("Expected error for nil keypair")
	}
}
