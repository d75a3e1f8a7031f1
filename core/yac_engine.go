package core

// yac_engine.go – the leader-rotation BFT voting state machine. Grounded on
// irohad/consensus/yac/messages.hpp (see original_source/) for the
// vote/commit/reject message shape and
// test/module/irohad/consensus/yac/yac_simple_cold_case_test.cpp for the
// cold-start single-vote/supermajority/reject round shape this engine's
// tests mirror, and on the teacher's core/quorum_tracker.go for the
// per-candidate vote tally bookkeeping style (mutex-guarded map, threshold
// check on every insert, single-round ownership).

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// CommitHandler is invoked once a round reaches supermajority on a single
// YacHash, whether detected locally or learned from a peer's CommitMessage.
type CommitHandler func(CommitMessage)

// RejectHandler is invoked once a round can no longer reach supermajority
// on any YacHash.
type RejectHandler func(RejectMessage)

// AbandonedHandler is invoked when leader rotation passes the validate set
// without reaching supermajority; per spec.md §7 this is surfaced to
// upstream, which must re-seed a fresh round with a new ordering.
type AbandonedHandler func(error)

// YacEngine runs one active round at a time, tallying votes per distinct
// YacHash until one reaches supermajority (commit) or none still can
// (reject). On timeout it rotates to the next leader and continues the same
// round, rather than rejecting.
type YacEngine struct {
	crypto  Crypto
	network Network
	log     *logrus.Logger

	timeout time.Duration

	mu        sync.Mutex
	order     ClusterOrdering
	myHash    YacHash
	tally     map[YacHash][]VoteMessage
	seen      map[PublicKey]YacHash // first hash each peer voted for this round
	conflicts []VoteMessage         // later, conflicting votes kept only for diagnostics
	reported  bool
	cancel    context.CancelFunc

	onCommit    CommitHandler
	onReject    RejectHandler
	onAbandoned AbandonedHandler
}

// NewYacEngine builds an engine over a fixed cluster membership, signing
// with crypto and exchanging messages over network. timeout bounds how long
// a round waits for supermajority at one leader position before rotating to
// the next. order establishes the supermajority arithmetic (N, f) the
// engine uses even before any local Vote call: per spec.md §4.4's cold-start
// path, on_vote must be able to tally and detect commit/reject for votes
// that arrive before this node casts its own, which requires knowing the
// cluster independently of having voted.
func NewYacEngine(crypto Crypto, network Network, order ClusterOrdering, timeout time.Duration, log *logrus.Logger) *YacEngine {
	e := &YacEngine{
		crypto:  crypto,
		network: network,
		log:     log,
		timeout: timeout,
		order:   order.Snapshot(),
		tally:   make(map[YacHash][]VoteMessage),
		seen:    make(map[PublicKey]YacHash),
	}
	network.OnVote(e.onVoteReceived)
	network.OnCommit(e.onCommitReceived)
	network.OnReject(e.onRejectReceived)
	return e
}

// OnCommit registers the handler invoked when this engine observes a
// round's commit.
func (e *YacEngine) OnCommit(h CommitHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onCommit = h
}

// OnReject registers the handler invoked when this engine observes a
// round's reject.
func (e *YacEngine) OnReject(h RejectHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onReject = h
}

// OnAbandoned registers the handler invoked when rotation exhausts the
// validate set without reaching supermajority.
func (e *YacEngine) OnAbandoned(h AbandonedHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onAbandoned = h
}

// Vote starts a fresh round for hash over ordering: resets the tally,
// casts and broadcasts this engine's own vote to every peer (including
// itself), and arms the round timeout.
func (e *YacEngine) Vote(ctx context.Context, hash YacHash, ordering ClusterOrdering) error {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	roundCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.order = ordering.Snapshot()
	e.myHash = hash
	e.tally = make(map[YacHash][]VoteMessage)
	e.seen = make(map[PublicKey]YacHash)
	e.conflicts = nil
	e.reported = false
	e.mu.Unlock()

	if err := e.signAndBroadcast(ctx, hash); err != nil {
		return err
	}

	go e.armTimeout(roundCtx)
	return nil
}

func (e *YacEngine) signAndBroadcast(ctx context.Context, hash YacHash) error {
	vote, err := e.crypto.GetVote(hash)
	if err != nil {
		return err
	}
	e.recordVote(vote)

	e.mu.Lock()
	peers := e.order.Peers()
	e.mu.Unlock()
	return e.network.SendVote(ctx, peers, vote)
}

// onVoteReceived is the Network callback for every inbound vote, local or
// remote.
func (e *YacEngine) onVoteReceived(vote VoteMessage) {
	if !e.crypto.Verify(vote) {
		e.log.WithField("signer", vote.Signer.Hex()).Warn("yac: dropping vote with invalid signature")
		return
	}
	e.recordVote(vote)
}

// recordVote tallies vote under its hash (ignoring any second, conflicting
// vote from the same signer within the round per spec.md §4.4/§9), then
// checks for supermajority or for the impossibility of any hash still
// reaching it.
func (e *YacEngine) recordVote(vote VoteMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.reported {
		return
	}
	if prior, ok := e.seen[vote.Signer]; ok {
		if !prior.Equal(vote.Hash) {
			e.log.WithField("signer", vote.Signer.Hex()).Warn("yac: peer equivocated within round, keeping first vote only")
			e.conflicts = append(e.conflicts, vote)
		}
		return
	}
	e.seen[vote.Signer] = vote.Hash
	e.tally[vote.Hash] = append(e.tally[vote.Hash], vote)

	threshold := e.order.SupermajorityThreshold()
	maxCount := 0
	for hash, votes := range e.tally {
		if len(votes) >= threshold {
			e.reported = true
			commit := CommitMessage{Hash: hash, Votes: append([]VoteMessage(nil), votes...)}
			e.dispatchCommitLocked(commit)
			return
		}
		if len(votes) > maxCount {
			maxCount = len(votes)
		}
	}

	remaining := e.order.N() - len(e.seen)
	if maxCount+remaining < threshold {
		e.reported = true
		e.dispatchRejectLocked()
	}
}

func (e *YacEngine) dispatchCommitLocked(commit CommitMessage) {
	if e.cancel != nil {
		e.cancel()
	}
	peers := e.order.Peers()
	handler := e.onCommit
	go func() {
		_ = e.network.SendCommit(context.Background(), peers, commit)
		if handler != nil {
			handler(commit)
		}
	}()
}

func (e *YacEngine) dispatchRejectLocked() {
	if e.cancel != nil {
		e.cancel()
	}
	var votes []VoteMessage
	for _, vs := range e.tally {
		votes = append(votes, vs...)
	}
	peers := e.order.Peers()
	reject := RejectMessage{Votes: votes}
	handler := e.onReject
	go func() {
		_ = e.network.SendReject(context.Background(), peers, reject)
		if handler != nil {
			handler(reject)
		}
	}()
}

// onCommitReceived accepts a commit learned from a peer without having
// reached supermajority locally: every vote in the bundle must verify and
// together reach supermajority, otherwise the message is dropped.
func (e *YacEngine) onCommitReceived(commit CommitMessage) {
	e.mu.Lock()
	threshold := e.order.SupermajorityThreshold()
	e.mu.Unlock()

	if len(commit.Votes) < threshold {
		e.log.Warn("yac: dropping commit below supermajority")
		return
	}
	for _, v := range commit.Votes {
		if !v.Hash.Equal(commit.Hash) || !e.crypto.Verify(v) {
			e.log.Warn("yac: dropping commit with invalid vote bundle")
			return
		}
	}

	e.mu.Lock()
	if e.reported {
		e.mu.Unlock()
		return
	}
	e.reported = true
	if e.cancel != nil {
		e.cancel()
	}
	handler := e.onCommit
	e.mu.Unlock()

	if handler != nil {
		handler(commit)
	}
}

// onRejectReceived accepts a reject learned from a peer, trusting it as-is:
// the sender has already verified its own tally before broadcasting.
func (e *YacEngine) onRejectReceived(reject RejectMessage) {
	e.mu.Lock()
	if e.reported {
		e.mu.Unlock()
		return
	}
	e.reported = true
	if e.cancel != nil {
		e.cancel()
	}
	handler := e.onReject
	e.mu.Unlock()

	if handler != nil {
		handler(reject)
	}
}

// armTimeout rotates to the next leader and re-votes if the round neither
// commits nor rejects within e.timeout, restarting the timer at the new
// position. Once rotation passes the validate set, the round is abandoned
// and surfaced via OnAbandoned.
func (e *YacEngine) armTimeout(ctx context.Context) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	e.mu.Lock()
	if e.reported {
		e.mu.Unlock()
		return
	}
	e.order = e.order.SwitchToNext()
	inValidateSet := e.order.LeaderInValidateSet()
	hash := e.myHash
	if !inValidateSet {
		e.reported = true
	}
	handler := e.onAbandoned
	e.mu.Unlock()

	if !inValidateSet {
		e.log.Warn("yac: round abandoned past validate set")
		if handler != nil {
			handler(ErrRoundAbandoned)
		}
		return
	}

	if err := e.signAndBroadcast(ctx, hash); err != nil {
		e.log.WithError(err).Warn("yac: resend on rotation failed")
	}

	roundCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()
	go e.armTimeout(roundCtx)
}

// CurrentOrder returns a snapshot of the engine's cluster ordering.
func (e *YacEngine) CurrentOrder() ClusterOrdering {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.order.Snapshot()
}

// ConflictingVotes returns the votes dropped this round because their
// signer had already cast a vote for a different hash (spec.md §9's open
// question: count only the first vote from a given signer, record the
// conflict for diagnostics, no equivocate-slashing).
func (e *YacEngine) ConflictingVotes() []VoteMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]VoteMessage, len(e.conflicts))
	copy(out, e.conflicts)
	return out
}
