package core

// errors.go – the error kinds the core surfaces, per spec.md §7. Grounded on
// the teacher's preference for sentinel errors callers can match with
// errors.Is (see pkg/utils.Wrap, which every caller-facing wrap goes
// through) rather than ad-hoc string matching.

import "errors"

var (
	// ErrInvalidSignature names the invalid-signature error kind. YacEngine
	// drops a vote or commit that fails Crypto verification without
	// returning an error; this value is returned (wrapped) by
	// NewEd25519Crypto and the node's key loading for malformed or
	// mismatched key material.
	ErrInvalidSignature = errors.New("core: invalid signature")

	// ErrInvariantViolation names the block-chaining error kind.
	// BlockStore.Insert reports a block whose height or prev-hash does not
	// chain onto the store by returning false; it does not return this value.
	ErrInvariantViolation = errors.New("core: block invariant violation")

	// ErrNotFound names the lookup-miss error kind. BlockQuery.GetTransactions
	// reports a miss as a TxResult with Found false; it does not return or
	// carry this value.
	ErrNotFound = errors.New("core: not found")

	// errEmptyCluster is a programming-error panic value: a consensus round
	// must never run over a zero-peer ordering.
	errEmptyCluster = errors.New("core: empty cluster ordering")

	// ErrRoundAbandoned is surfaced to upstream when rotation passes the
	// validate set without reaching supermajority; upstream must re-seed a
	// fresh round with a new ordering.
	ErrRoundAbandoned = errors.New("core: round abandoned past validate set")
)
