package core

import (
	"crypto/ed25519"
	"testing"
)

func newTestCrypto(t *testing.T) Crypto {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	c, err := NewEd25519Crypto(priv)
	if err != nil {
		t.Fatalf("NewEd25519Crypto: %v", err)
	}
	return c
}

func TestGetVoteThenVerify(t *testing.T) {
	c := newTestCrypto(t)
	hash := YacHash{ProposalHash: leaf(1), BlockHash: leaf(2)}
	vote, err := c.GetVote(hash)
	if err != nil {
		t.Fatalf("GetVote: %v", err)
	}
	if !c.Verify(vote) {
		t.Fatal("a freshly signed vote should verify")
	}
}

func TestVerifyRejectsTamperedHash(t *testing.T) {
	c := newTestCrypto(t)
	hash := YacHash{ProposalHash: leaf(1), BlockHash: leaf(2)}
	vote, err := c.GetVote(hash)
	if err != nil {
		t.Fatalf("GetVote: %v", err)
	}
	vote.Hash.BlockHash = leaf(3)
	if c.Verify(vote) {
		t.Fatal("tampering with the voted hash should invalidate the signature")
	}
}

func TestVerifyRejectsWrongSigner(t *testing.T) {
	a := newTestCrypto(t)
	b := newTestCrypto(t)
	hash := YacHash{ProposalHash: leaf(1), BlockHash: leaf(2)}
	vote, err := a.GetVote(hash)
	if err != nil {
		t.Fatalf("GetVote: %v", err)
	}
	vote.Signer = b.PublicKey()
	if a.Verify(vote) {
		t.Fatal("a vote claiming the wrong signer should not verify")
	}
}

func TestNewEd25519CryptoRejectsBadKeySize(t *testing.T) {
	if _, err := NewEd25519Crypto(make([]byte, 10)); err == nil {
		t.Fatal("expected error for undersized private key")
	}
}
