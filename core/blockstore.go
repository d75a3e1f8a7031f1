package core

// blockstore.go – the append-only committed-block log. Grounded on the
// teacher's core/ledger.go AppendBlock/applyBlock height-and-prev-hash
// chaining check, trimmed of its WAL replay, snapshotting, pruning and
// UTXO/state/contract bookkeeping: spec.md §1 places real persistence out
// of scope and treats BlockStore as an in-memory append-only log behind
// which a real store lives externally.

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// BlockStore is an in-memory, append-only sequence of committed blocks,
// indexed by height and by hash for O(1) lookup.
type BlockStore struct {
	mu     sync.RWMutex
	blocks []*Block
	byHash map[HashDigest]*Block
	log    *logrus.Logger
}

// NewBlockStore returns an empty store logging through log, matching
// YacEngine's/GossipNetwork's injected-logger style. A nil log defaults to
// logrus.StandardLogger().
func NewBlockStore(log *logrus.Logger) *BlockStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BlockStore{byHash: make(map[HashDigest]*Block), log: log}
}

// Insert appends b if it chains onto the current top block (or is a valid
// genesis when the store is empty). It returns false without mutating the
// store when the invariant is violated, per spec.md §4.3's "reject, never
// panic" rule for this path — unlike ClusterOrdering's programming-error
// panics, a bad block can arrive from the network and must be handled.
func (s *BlockStore) Insert(b *Block) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var top *Block
	if n := len(s.blocks); n > 0 {
		top = s.blocks[n-1]
	}
	if !b.ChainsOnto(top) {
		s.log.WithFields(logrus.Fields{
			"height":    b.Height,
			"prev_hash": b.PrevHash.Hex(),
		}).Warn("blockstore: rejecting block, invariant violation")
		return false
	}

	s.blocks = append(s.blocks, b)
	s.byHash[b.Hash()] = b
	return true
}

// Height returns the height of the top block, or 0 if the store is empty.
func (s *BlockStore) Height() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.blocks) == 0 {
		return 0
	}
	return s.blocks[len(s.blocks)-1].Height
}

// Top returns the most recently inserted block, or nil if the store is
// empty.
func (s *BlockStore) Top() *Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.blocks) == 0 {
		return nil
	}
	return s.blocks[len(s.blocks)-1]
}

// BlockByHeight returns the block at height, or nil if out of range.
// Height is 1-indexed per spec.md §4.2.
func (s *BlockStore) BlockByHeight(height uint64) *Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if height == 0 || height > uint64(len(s.blocks)) {
		return nil
	}
	return s.blocks[height-1]
}

// BlockByHash returns the block with the given hash, or nil if absent.
func (s *BlockStore) BlockByHash(h HashDigest) *Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byHash[h]
}

// allBlocksDescending returns every block from the top down to genesis.
// Used by BlockQuery, which iterates newest-first.
func (s *BlockStore) allBlocksDescending() []*Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Block, len(s.blocks))
	for i, b := range s.blocks {
		out[len(s.blocks)-1-i] = b
	}
	return out
}

// DropStorage discards every committed block, returning the store to its
// initial empty state. Intended for test fixtures and genesis re-seeding,
// never called in steady-state operation.
func (s *BlockStore) DropStorage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = nil
	s.byHash = make(map[HashDigest]*Block)
}
