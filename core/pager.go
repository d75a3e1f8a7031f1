package core

// pager.go – the cursor/limit pagination contract shared by every
// BlockQuery method. Grounded on the teacher's memIter cursor-by-index
// pattern in core/ledger.go, generalized from a positional index to a
// tx-hash cursor per spec.md §3/§4.5.

// Pager describes one page request: return up to Limit transactions
// strictly after TxHash in the query's ordering (newest-first). A zero
// TxHash (ZeroHash) requests the first page. If TxHash does not name a
// transaction actually present in the queried sequence, the page starts
// from the beginning, per spec.md §4.5's CursorMissing behavior — this is
// deliberately not an error (see core/errors.go).
type Pager struct {
	TxHash HashDigest
	Limit  uint16
}

// NewPager builds a Pager for the first page when txHash is ZeroHash.
func NewPager(txHash HashDigest, limit uint16) Pager {
	return Pager{TxHash: txHash, Limit: limit}
}

// FirstPage reports whether this pager requests the beginning of the
// sequence.
func (p Pager) FirstPage() bool { return p.TxHash.IsZero() }
