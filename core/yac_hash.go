package core

// yac_hash.go – the composite identity a YAC round votes on, and the three
// message shapes (vote/commit/reject) exchanged over Network. Grounded on
// irohad/consensus/yac/yac_hash_provider.hpp's proposal+block hash pair
// (see original_source/) and on the teacher's core/quorum_tracker.go vote
// bookkeeping style.

import "bytes"

// YacHash is the pair of hashes a round votes on: the hash of the proposal
// under consideration and the hash of the block it produced. Two peers
// agree on a round's outcome only when both components match.
type YacHash struct {
	ProposalHash HashDigest
	BlockHash    HashDigest
}

// IsZero reports whether both components are the zero digest.
func (h YacHash) IsZero() bool {
	return h.ProposalHash.IsZero() && h.BlockHash.IsZero()
}

// Equal reports whether two YacHash values name the same round outcome.
func (h YacHash) Equal(o YacHash) bool {
	return h.ProposalHash.Equal(o.ProposalHash) && h.BlockHash.Equal(o.BlockHash)
}

// canonicalPayload is the byte encoding signed by VoteMessage.
func (h YacHash) canonicalPayload() []byte {
	var buf bytes.Buffer
	buf.Write(h.ProposalHash[:])
	buf.Write(h.BlockHash[:])
	return buf.Bytes()
}

// VoteMessage is one peer's signed assertion that it computed YacHash for
// this round.
type VoteMessage struct {
	Hash      YacHash
	Signer    PublicKey
	Signature Signature
}

// CommitMessage carries the set of votes that reached supermajority on a
// single YacHash, enough for any recipient to independently verify the
// commit.
type CommitMessage struct {
	Hash  YacHash
	Votes []VoteMessage
}

// RejectMessage carries every distinct YacHash seen in a round alongside
// its votes, once no single hash can still reach supermajority.
type RejectMessage struct {
	Votes []VoteMessage
}
