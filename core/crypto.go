package core

// crypto.go – the signing/verification contract YacEngine depends on.
// Grounded on the teacher's core/security.go Sign/Verify pair, trimmed to
// its AlgoEd25519 branch only: spec.md fixes PublicKey at 32 bytes and
// Signature at 64 bytes (ed25519's sizes) and lists cryptographic agility
// as a Non-goal, so the BLS and Dilithium branches from the teacher are not
// carried over (see DESIGN.md).

import (
	"crypto/ed25519"

	"yac-network/pkg/utils"
)

// Crypto signs and verifies YAC vote hashes on behalf of a single local
// keypair. Implementations must be safe for concurrent use.
type Crypto interface {
	// PublicKey returns this signer's own public key.
	PublicKey() PublicKey

	// GetVote signs hash with the local private key, returning a
	// VoteMessage ready to hand to Network.
	GetVote(hash YacHash) (VoteMessage, error)

	// Verify reports whether vote.Signature is a valid Ed25519 signature
	// by vote.Signer over vote.Hash's canonical payload.
	Verify(vote VoteMessage) bool
}

// ed25519Crypto is the concrete Crypto backed by a single Ed25519 keypair
// held in memory.
type ed25519Crypto struct {
	pub  PublicKey
	priv ed25519.PrivateKey
}

// NewEd25519Crypto builds a Crypto from a raw 64-byte Ed25519 private key
// (seed || public key, as returned by ed25519.GenerateKey).
func NewEd25519Crypto(priv ed25519.PrivateKey) (Crypto, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, utils.Wrap(ErrInvalidSignature, "crypto: bad private key size")
	}
	pub, err := PublicKeyFromBytes(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, utils.Wrap(err, "crypto: derive public key")
	}
	return &ed25519Crypto{pub: pub, priv: priv}, nil
}

func (c *ed25519Crypto) PublicKey() PublicKey { return c.pub }

func (c *ed25519Crypto) GetVote(hash YacHash) (VoteMessage, error) {
	sigBytes := ed25519.Sign(c.priv, hash.canonicalPayload())
	sig, err := SignatureFromBytes(sigBytes)
	if err != nil {
		return VoteMessage{}, utils.Wrap(err, "crypto: encode signature")
	}
	return VoteMessage{Hash: hash, Signer: c.pub, Signature: sig}, nil
}

func (c *ed25519Crypto) Verify(vote VoteMessage) bool {
	return ed25519.Verify(
		ed25519.PublicKey(vote.Signer.Bytes()),
		vote.Hash.canonicalPayload(),
		vote.Signature.Bytes(),
	)
}
