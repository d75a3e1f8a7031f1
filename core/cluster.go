package core

// cluster.go – the ordered peer ring a YAC round runs over, and the
// supermajority arithmetic derived from its size. Grounded on the teacher's
// validator bookkeeping style (consensus.go's authorityAdapter) but the
// rotation logic itself is new: the source (irohad/consensus/yac/impl/
// cluster_order.cpp) mutates an index_ field in place and wraps on overflow
// with a self-admitted "dangerous" comment; this implementation keeps the
// mutation but treats an empty cluster as a programming error instead of
// silently wrapping (see DESIGN.md's per-part ledger entry for this file).


// Peer identifies a cluster member by network address and verification key.
// Uniqueness within a cluster is by PublicKey.
type Peer struct {
	Address   string
	PublicKey PublicKey
}

// ClusterOrdering is an ordered, non-empty sequence of peers with a
// monotonically increasing leader index. It is a value type: callers that
// need a stable snapshot for a round should copy it (a plain Go value copy
// still shares the peers slice's backing array, so Snapshot copies that
// array too).
type ClusterOrdering struct {
	peers []Peer
	index int
}

// NewClusterOrdering builds a ClusterOrdering over peers in the given order.
// Passing an empty slice is accepted here; operations that require a live
// round (CurrentLeader, SwitchToNext) panic on an empty cluster per spec,
// since a round with N=0 is a programming error, not a recoverable one.
func NewClusterOrdering(peers []Peer) ClusterOrdering {
	cp := make([]Peer, len(peers))
	copy(cp, peers)
	return ClusterOrdering{peers: cp}
}

// Snapshot returns an independent copy of the ordering at its current index,
// safe to hand to a new round without the round mutating this one's index.
func (c ClusterOrdering) Snapshot() ClusterOrdering {
	s := NewClusterOrdering(c.peers)
	s.index = c.index
	return s
}

// N returns the cluster size.
func (c ClusterOrdering) N() int { return len(c.peers) }

// F returns the maximum number of Byzantine peers tolerated: f = (N-1) div 3.
func (c ClusterOrdering) F() int {
	if len(c.peers) == 0 {
		return 0
	}
	return (len(c.peers) - 1) / 3
}

// SupermajorityThreshold returns 2f+1.
func (c ClusterOrdering) SupermajorityThreshold() int {
	return 2*c.F() + 1
}

// HaveSupermajority reports whether v votes reach 2f+1 out of this cluster.
func (c ClusterOrdering) HaveSupermajority(v int) bool {
	return v >= c.SupermajorityThreshold()
}

// Peers returns a copy of the peer list in ring order.
func (c ClusterOrdering) Peers() []Peer {
	cp := make([]Peer, len(c.peers))
	copy(cp, c.peers)
	return cp
}

// Index returns the current leader position.
func (c ClusterOrdering) Index() int { return c.index }

// CurrentLeader returns the peer at the current index. An empty cluster is a
// programming error: callers must never construct a round with N=0.
func (c ClusterOrdering) CurrentLeader() Peer {
	if len(c.peers) == 0 {
		panic(errEmptyCluster)
	}
	idx := c.index
	if idx >= len(c.peers) {
		idx = 0
	}
	return c.peers[idx]
}

// HasNext reports whether the index is still within the cluster, i.e.
// whether rotation can still advance to a new leader in this snapshot.
func (c ClusterOrdering) HasNext() bool {
	return c.index < len(c.peers)
}

// LeaderInValidateSet reports whether the current index still lies within
// positions 0..2f, the only positions from which rotation can still reach
// supermajority in this cluster snapshot.
func (c ClusterOrdering) LeaderInValidateSet() bool {
	return c.index <= 2*c.F()
}

// SwitchToNext advances the leader index by one and returns the (mutated)
// ordering, matching the teacher's fluent "self" return style. It never
// wraps silently: once index reaches N, HasNext is false and the round must
// be abandoned by the caller (spec.md §4.4, §9).
func (c ClusterOrdering) SwitchToNext() ClusterOrdering {
	if len(c.peers) == 0 {
		panic(errEmptyCluster)
	}
	c.index++
	return c
}
