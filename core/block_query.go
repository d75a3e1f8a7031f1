package core

// block_query.go – the read-side history queries over a BlockStore.
// Grounded on the teacher's core/ledger.go memIter cursor-driven iteration,
// generalized from a positional block index to the exclusive tx-hash
// cursor and predicate filtering spec.md §4.5 requires. Every query is
// exposed as a forward iterator the caller drives one item at a time,
// matching spec.md §9's "lazy iteration from query layer" redesign note.

// TxResult is one emission of GetTransactions: either the matching
// transaction (Found) or an explicit absence (!Found), never a sentinel
// transaction value, per spec.md §9.
type TxResult struct {
	Hash  HashDigest
	Tx    *Transaction
	Found bool
}

// TxRecord pairs a transaction with the block it was committed in, the
// unit BlockQuery iterates and filters over.
type TxRecord struct {
	Tx          *Transaction
	BlockHeight uint64
	BlockHash   HashDigest
}

// TxIterator is a forward, single-pass, non-restartable iterator over
// transaction records, driven by the consumer via Next.
type TxIterator struct {
	blocks  []*Block // newest-first, pinned at iterator creation
	bIdx    int
	tIdx    int // next index into blocks[bIdx].Txs to examine, counting down
	match   func(*Transaction) bool
	limit   uint16
	emitted uint16
	cursor  HashDigest
	passed  bool // true once the cursor transaction has been seen (or there is none)
	cur     TxRecord
}

func newTxIterator(blocks []*Block, match func(*Transaction) bool, pager Pager) *TxIterator {
	it := &TxIterator{
		blocks: blocks,
		match:  match,
		limit:  pager.Limit,
		cursor: pager.TxHash,
		passed: pager.TxHash.IsZero(),
	}
	if len(blocks) > 0 {
		it.tIdx = len(blocks[0].Txs)
	}
	if !it.passed && !cursorInFilteredStream(blocks, match, pager.TxHash) {
		// CursorMissing: the hash never appears in the filtered stream, so
		// it degrades to the zero sentinel per spec.md §7.
		it.passed = true
	}
	return it
}

// cursorInFilteredStream reports whether hash names a transaction that
// passes match somewhere in blocks. BlockStore is fully resident in
// memory, so this one-time existence check costs a scan but preserves the
// single-pass, forward-only contract of the iterator itself.
func cursorInFilteredStream(blocks []*Block, match func(*Transaction) bool, hash HashDigest) bool {
	for _, b := range blocks {
		for _, tx := range b.Txs {
			if match(tx) && tx.Hash().Equal(hash) {
				return true
			}
		}
	}
	return false
}

// advanceRaw returns the next matching transaction record in newest-first
// order across the pinned block view, or ok=false when exhausted.
func (it *TxIterator) advanceRaw() (TxRecord, bool) {
	for it.bIdx < len(it.blocks) {
		b := it.blocks[it.bIdx]
		if it.tIdx <= 0 {
			it.bIdx++
			if it.bIdx < len(it.blocks) {
				it.tIdx = len(it.blocks[it.bIdx].Txs)
			}
			continue
		}
		it.tIdx--
		tx := b.Txs[it.tIdx]
		if !it.match(tx) {
			continue
		}
		return TxRecord{Tx: tx, BlockHeight: b.Height, BlockHash: b.Hash()}, true
	}
	return TxRecord{}, false
}

// Next advances the iterator, applying cursor and limit semantics, and
// reports whether a record was produced. CursorMissing (the cursor hash
// never appearing in the filtered stream) degrades silently to "no
// cursor", per spec.md §7 — the whole filtered stream is then available up
// to limit, which is implemented by never having skipped anything.
func (it *TxIterator) Next() bool {
	if it.emitted >= it.limit {
		return false
	}
	for {
		rec, ok := it.advanceRaw()
		if !ok {
			return false
		}
		if !it.passed {
			if rec.Tx.Hash().Equal(it.cursor) {
				it.passed = true
			}
			continue
		}
		it.cur = rec
		it.emitted++
		return true
	}
}

// Value returns the record produced by the most recent successful Next.
func (it *TxIterator) Value() TxRecord { return it.cur }

// Collect drains the iterator into a slice. Provided as a convenience for
// callers (and tests) that do not need to stream.
func (it *TxIterator) Collect() []TxRecord {
	var out []TxRecord
	for it.Next() {
		out = append(out, it.Value())
	}
	return out
}

// BlockQuery answers read-only history questions over a BlockStore.
type BlockQuery struct {
	store *BlockStore
}

// NewBlockQuery builds a BlockQuery over store.
func NewBlockQuery(store *BlockStore) *BlockQuery {
	return &BlockQuery{store: store}
}

// GetTopBlocks returns the most recent n blocks, newest-first. Fewer than n
// are returned if the store holds fewer blocks.
func (q *BlockQuery) GetTopBlocks(n int) []*Block {
	all := q.store.allBlocksDescending()
	if n < 0 {
		n = 0
	}
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

// GetTransactions returns exactly one TxResult per requested hash, in
// input order.
func (q *BlockQuery) GetTransactions(hashes []HashDigest) []TxResult {
	out := make([]TxResult, len(hashes))
	for i, h := range hashes {
		if tx := q.findTx(h); tx != nil {
			out[i] = TxResult{Hash: h, Tx: tx, Found: true}
		} else {
			out[i] = TxResult{Hash: h, Found: false}
		}
	}
	return out
}

func (q *BlockQuery) findTx(h HashDigest) *Transaction {
	for _, b := range q.store.allBlocksDescending() {
		for _, tx := range b.Txs {
			if tx.Hash().Equal(h) {
				return tx
			}
		}
	}
	return nil
}

// GetAccountTransactions returns an iterator over transactions created by
// accountID, newest-first, filtered by pager.
func (q *BlockQuery) GetAccountTransactions(accountID string, pager Pager) *TxIterator {
	match := func(tx *Transaction) bool {
		return tx.CreatorAccountID == accountID
	}
	return newTxIterator(q.store.allBlocksDescending(), match, pager)
}

// GetAccountAssetTransactions returns an iterator over transactions in
// which accountID participates via a command touching any of assetIDs
// (see Transaction.participates), newest-first, filtered by pager. An
// empty assetIDs yields an iterator that produces nothing.
func (q *BlockQuery) GetAccountAssetTransactions(accountID string, assetIDs []string, pager Pager) *TxIterator {
	if len(assetIDs) == 0 {
		return newTxIterator(nil, func(*Transaction) bool { return false }, pager)
	}
	match := func(tx *Transaction) bool {
		return tx.participates(accountID, assetIDs)
	}
	return newTxIterator(q.store.allBlocksDescending(), match, pager)
}
