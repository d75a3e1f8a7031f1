package core

// block.go – the committed block value type. Grounded on the shape of the
// teacher's core/common_structs.go Block/BlockHeader split and
// core/transaction_hash.go's compute-then-cache pattern, adapted to the
// spec's canonical length-prefixed payload hash and serial-chain Merkle
// root instead of JSON+SHA256.

import "bytes"

// Block is a committed, ordered batch of transactions. Height starts at 1
// for genesis; PrevHash is ZeroHash only for genesis (spec.md §4.2).
type Block struct {
	Height     uint64
	CreatedAt  int64
	PrevHash   HashDigest
	MerkleRoot HashDigest
	Txs        []*Transaction

	Signatures []TxSignature

	hash    HashDigest
	hashSet bool
}

// NewBlock builds a Block from height, prevHash, timestamp and an ordered
// transaction list, computing MerkleRoot via the serial-chain accumulator
// over the transactions' payload hashes.
func NewBlock(height uint64, prevHash HashDigest, createdAt int64, txs []*Transaction) *Block {
	leaves := make([]HashDigest, len(txs))
	for i, tx := range txs {
		leaves[i] = tx.Hash()
	}
	return &Block{
		Height:     height,
		CreatedAt:  createdAt,
		PrevHash:   prevHash,
		MerkleRoot: MerkleRoot(leaves),
		Txs:        txs,
	}
}

// IsGenesis reports whether this is the chain's first block.
func (b *Block) IsGenesis() bool {
	return b.Height == 1 && b.PrevHash.IsZero()
}

// TxsNumber returns the transaction count, encoded as uint16 in the
// canonical payload per spec.md §4.2.
func (b *Block) TxsNumber() uint16 { return uint16(len(b.Txs)) }

// canonicalPayload returns the length-prefixed encoding of every field
// except Signatures and the derived hash.
func (b *Block) canonicalPayload() []byte {
	var buf bytes.Buffer
	putUint64(&buf, b.Height)
	putUint64(&buf, uint64(b.CreatedAt))
	buf.Write(b.PrevHash[:])
	buf.Write(b.MerkleRoot[:])
	putUint16(&buf, b.TxsNumber())
	for _, tx := range b.Txs {
		h := tx.Hash()
		buf.Write(h[:])
	}
	return buf.Bytes()
}

// Hash computes (and caches) the block's payload hash.
func (b *Block) Hash() HashDigest {
	if !b.hashSet {
		b.hash = SumPayload(b.canonicalPayload())
		b.hashSet = true
	}
	return b.hash
}

// ChainsOnto reports whether b is a valid direct successor of prev: b's
// height is exactly prev's height + 1 and b's PrevHash equals prev's hash.
// A nil prev is only valid for a genesis block.
func (b *Block) ChainsOnto(prev *Block) bool {
	if prev == nil {
		return b.IsGenesis()
	}
	return b.Height == prev.Height+1 && b.PrevHash.Equal(prev.Hash())
}
