package core

// hash.go – fixed-size byte identities shared across the ledger and the YAC
// voting engine: digests, public keys and signatures, plus the canonical
// payload-hashing rule every hashed value in the system follows.

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/sha3"
)

// HashDigest is a 32-byte SHA3-256 digest. The zero value is the sentinel
// "empty / no previous" hash used for genesis blocks and unset cursors.
type HashDigest [32]byte

// ZeroHash is the all-zero sentinel digest.
var ZeroHash HashDigest

// Size returns the digest length in bytes.
func (HashDigest) Size() int { return 32 }

// IsZero reports whether h is the all-zero sentinel.
func (h HashDigest) IsZero() bool { return h == ZeroHash }

// Bytes returns a copy of the digest bytes.
func (h HashDigest) Bytes() []byte {
	b := make([]byte, len(h))
	copy(b, h[:])
	return b
}

// Hex returns the lowercase hex encoding of the digest.
func (h HashDigest) Hex() string { return hex.EncodeToString(h[:]) }

// String implements fmt.Stringer.
func (h HashDigest) String() string { return h.Hex() }

// Less orders digests by lexicographic byte order, giving HashDigest a total
// ordering usable for deterministic iteration and sorting.
func (h HashDigest) Less(o HashDigest) bool { return bytes.Compare(h[:], o[:]) < 0 }

// Equal reports byte-wise equality.
func (h HashDigest) Equal(o HashDigest) bool { return h == o }

// HashDigestFromHex decodes a hex string into a HashDigest.
func HashDigestFromHex(s string) (HashDigest, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return HashDigest{}, err
	}
	if len(b) != 32 {
		return HashDigest{}, errors.New("hash: expected 32 bytes")
	}
	var h HashDigest
	copy(h[:], b)
	return h, nil
}

// HashDigestFromBytes copies b into a HashDigest. b must be exactly 32 bytes.
func HashDigestFromBytes(b []byte) (HashDigest, error) {
	if len(b) != 32 {
		return HashDigest{}, errors.New("hash: expected 32 bytes")
	}
	var h HashDigest
	copy(h[:], b)
	return h, nil
}

// MarshalJSON encodes the digest as a hex string, matching client-facing
// JSON modes (send-json-tx, send-json-query).
func (h HashDigest) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Hex())
}

// UnmarshalJSON decodes a hex string into the digest.
func (h *HashDigest) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	d, err := HashDigestFromHex(s)
	if err != nil {
		return err
	}
	*h = d
	return nil
}

// SumPayload applies the canonical payload-hash rule: SHA3-256 over the
// caller-supplied canonical byte encoding. Every hashed value in the system
// (transactions, blocks, queries) uses this so that two equivalent payloads
// always hash identically regardless of signature state.
func SumPayload(canonical []byte) HashDigest {
	return HashDigest(sha3.Sum256(canonical))
}

// PublicKey is a fixed-size Ed25519 public key.
type PublicKey [32]byte

// Bytes returns a copy of the key bytes.
func (k PublicKey) Bytes() []byte {
	b := make([]byte, len(k))
	copy(b, k[:])
	return b
}

// Hex returns the lowercase hex encoding of the key.
func (k PublicKey) Hex() string { return hex.EncodeToString(k[:]) }

// Equal reports byte-wise equality.
func (k PublicKey) Equal(o PublicKey) bool { return k == o }

// PublicKeyFromBytes copies b into a PublicKey. b must be exactly 32 bytes.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) != 32 {
		return PublicKey{}, errors.New("hash: expected 32-byte public key")
	}
	var k PublicKey
	copy(k[:], b)
	return k, nil
}

// MarshalJSON encodes the key as a hex string.
func (k PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Hex())
}

// UnmarshalJSON decodes a hex string into the key.
func (k *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	v, err := PublicKeyFromBytes(b)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Signature is a fixed-size Ed25519 signature. It carries no state of its
// own; equality is byte-wise.
type Signature [64]byte

// Bytes returns a copy of the signature bytes.
func (s Signature) Bytes() []byte {
	b := make([]byte, len(s))
	copy(b, s[:])
	return b
}

// Equal reports byte-wise equality.
func (s Signature) Equal(o Signature) bool { return s == o }

// SignatureFromBytes copies b into a Signature. b must be exactly 64 bytes.
func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) != 64 {
		return Signature{}, errors.New("hash: expected 64-byte signature")
	}
	var s Signature
	copy(s[:], b)
	return s, nil
}

// Hex returns the lowercase hex encoding of the signature.
func (s Signature) Hex() string { return hex.EncodeToString(s[:]) }

// MarshalJSON encodes the signature as a hex string.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Hex())
}

// UnmarshalJSON decodes a hex string into the signature.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	b, err := hex.DecodeString(str)
	if err != nil {
		return err
	}
	v, err := SignatureFromBytes(b)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// putUint16 / putUint64 write canonical little-endian length prefixes. Kept
// local to this package so every payload encoder (transaction, block, query)
// shares one length-prefixing convention.
func putUint16(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
}

func putUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	buf.Write(b[:])
}

// putBytes writes a length-prefixed byte string: a uint64 length followed by
// the raw bytes. Used for every variable-length payload field so canonical
// encodings never ambiguously concatenate.
func putBytes(buf *bytes.Buffer, b []byte) {
	putUint64(buf, uint64(len(b)))
	buf.Write(b)
}
