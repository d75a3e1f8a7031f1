package main

// keys.go – the thin file-read that stands in for the key-manager spec.md
// §1 places out of scope ("the key-manager that loads keypairs from
// files"): the node still needs to get bytes off disk into a
// core.Crypto, so this package owns exactly that file I/O and nothing of
// the key-manager's lifecycle (rotation, provisioning) beyond it. Keys are
// stored hex-encoded, one file per half of the pair, mirroring Iroha's
// keypair file convention.

import (
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"strings"

	"yac-network/core"
	"yac-network/pkg/utils"
)

func loadCrypto(publicKeyPath, privateKeyPath string) (core.Crypto, error) {
	privHex, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, utils.Wrap(err, "read private key file")
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(privHex)))
	if err != nil {
		return nil, utils.Wrap(err, "decode private key hex")
	}

	var priv ed25519.PrivateKey
	switch len(seed) {
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed(seed)
	case ed25519.PrivateKeySize:
		priv = ed25519.PrivateKey(seed)
	default:
		return nil, utils.Wrap(core.ErrInvalidSignature, "private key file has unexpected length")
	}

	if publicKeyPath != "" {
		if err := verifyPublicKeyMatches(publicKeyPath, priv); err != nil {
			return nil, err
		}
	}

	return core.NewEd25519Crypto(priv)
}

func verifyPublicKeyMatches(publicKeyPath string, priv ed25519.PrivateKey) error {
	pubHex, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return utils.Wrap(err, "read public key file")
	}
	pubBytes, err := hex.DecodeString(strings.TrimSpace(string(pubHex)))
	if err != nil {
		return utils.Wrap(err, "decode public key hex")
	}
	onDisk, err := core.PublicKeyFromBytes(pubBytes)
	if err != nil {
		return err
	}
	derived, err := core.PublicKeyFromBytes(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return err
	}
	if !onDisk.Equal(derived) {
		return utils.Wrap(core.ErrInvalidSignature, "public key file does not match private key")
	}
	return nil
}
