package core

// merkle.go – deterministic sequential-hash accumulator over a leaf
// sequence. Unlike a balanced Merkle tree (see the teacher's
// BuildMerkleTree/MerkleProof in the pre-rewrite merkle_tree_operations.go,
// or core/security.go's double-SHA256 ComputeMerkleRoot), block hashes in
// this system depend on serial chaining: root(∅) = zero, and each leaf folds
// state := H(state || leaf). This is intentional, not a simplification — see
// DESIGN.md for why the balanced-tree shape is not reused here.

// MerkleAccumulator folds a sequence of leaves into a single root digest by
// serial chaining. It is sequence-sensitive (permuting leaves changes the
// root) and prefix-sensitive (a shorter prefix never equals a longer
// sequence's root), which makes it sufficient for detecting any mutation of
// a block's transaction list without the cost of a balanced tree.
type MerkleAccumulator struct {
	state HashDigest
}

// NewMerkleAccumulator returns an accumulator with root(∅) = zero.
func NewMerkleAccumulator() *MerkleAccumulator {
	return &MerkleAccumulator{state: ZeroHash}
}

// Add folds leaf into the running state: state := H(state || leaf).
func (m *MerkleAccumulator) Add(leaf HashDigest) {
	buf := make([]byte, 0, 64)
	buf = append(buf, m.state[:]...)
	buf = append(buf, leaf[:]...)
	m.state = SumPayload(buf)
}

// Root returns the current accumulated state.
func (m *MerkleAccumulator) Root() HashDigest { return m.state }

// MerkleRoot is a convenience wrapper computing the accumulator root over an
// ordered sequence of leaves in one call.
func MerkleRoot(leaves []HashDigest) HashDigest {
	acc := NewMerkleAccumulator()
	for _, leaf := range leaves {
		acc.Add(leaf)
	}
	return acc.Root()
}
