package core

import (
	"context"
	"crypto/ed25519"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// fakeNetwork is an in-process Network double: SendVote/SendCommit/SendReject
// record their calls instead of touching the wire, and tests drive inbound
// delivery directly via the deliverX helpers.
type fakeNetwork struct {
	mu         sync.Mutex
	votesSent  []VoteMessage
	commits    []CommitMessage
	rejects    []RejectMessage
	onVote     func(VoteMessage)
	onCommit   func(CommitMessage)
	onReject   func(RejectMessage)
}

func (n *fakeNetwork) SendVote(ctx context.Context, to []Peer, vote VoteMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.votesSent = append(n.votesSent, vote)
	return nil
}

func (n *fakeNetwork) SendCommit(ctx context.Context, to []Peer, commit CommitMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.commits = append(n.commits, commit)
	return nil
}

func (n *fakeNetwork) SendReject(ctx context.Context, to []Peer, reject RejectMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejects = append(n.rejects, reject)
	return nil
}

func (n *fakeNetwork) OnVote(f func(VoteMessage))     { n.onVote = f }
func (n *fakeNetwork) OnCommit(f func(CommitMessage)) { n.onCommit = f }
func (n *fakeNetwork) OnReject(f func(RejectMessage)) { n.onReject = f }

func (n *fakeNetwork) sentVoteCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.votesSent)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func genCrypto(t *testing.T) Crypto {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	c, err := NewEd25519Crypto(priv)
	if err != nil {
		t.Fatalf("NewEd25519Crypto: %v", err)
	}
	return c
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestYacEngineColdStartSingleVote(t *testing.T) {
	net := &fakeNetwork{}
	engine := NewYacEngine(genCrypto(t), net, NewClusterOrdering(makePeers(4)), time.Hour, testLogger())

	var commits int
	engine.OnCommit(func(CommitMessage) { commits++ })

	voter := genCrypto(t)
	hash := YacHash{ProposalHash: leaf(1), BlockHash: leaf(2)}
	vote, err := voter.GetVote(hash)
	if err != nil {
		t.Fatalf("GetVote: %v", err)
	}
	net.onVote(vote)

	time.Sleep(10 * time.Millisecond)
	if commits != 0 {
		t.Fatal("a single vote must not emit a commit")
	}
	if net.sentVoteCount() != 0 {
		t.Fatal("on_vote must not itself broadcast anything")
	}
}

func TestYacEngineColdStartSupermajority(t *testing.T) {
	net := &fakeNetwork{}
	engine := NewYacEngine(genCrypto(t), net, NewClusterOrdering(makePeers(4)), time.Hour, testLogger())

	commitCh := make(chan CommitMessage, 1)
	engine.OnCommit(func(c CommitMessage) { commitCh <- c })

	hash := YacHash{ProposalHash: leaf(1), BlockHash: leaf(2)}
	for i := 0; i < 4; i++ {
		voter := genCrypto(t)
		vote, err := voter.GetVote(hash)
		if err != nil {
			t.Fatalf("GetVote: %v", err)
		}
		net.onVote(vote)
	}

	select {
	case c := <-commitCh:
		if !c.Hash.Equal(hash) {
			t.Fatal("commit hash mismatch")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a commit emission for 4 votes out of N=4")
	}
}

func TestYacEngineCommitMessageArrival(t *testing.T) {
	net := &fakeNetwork{}
	engine := NewYacEngine(genCrypto(t), net, NewClusterOrdering(makePeers(4)), time.Hour, testLogger())

	commitCh := make(chan CommitMessage, 1)
	engine.OnCommit(func(c CommitMessage) { commitCh <- c })

	hash := YacHash{ProposalHash: leaf(1), BlockHash: leaf(2)}
	var votes []VoteMessage
	for i := 0; i < 4; i++ {
		voter := genCrypto(t)
		vote, err := voter.GetVote(hash)
		if err != nil {
			t.Fatalf("GetVote: %v", err)
		}
		votes = append(votes, vote)
	}
	net.onCommit(CommitMessage{Hash: hash, Votes: votes})

	select {
	case c := <-commitCh:
		if !c.Hash.Equal(hash) {
			t.Fatal("commit hash mismatch")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected commit emission from inbound CommitMessage")
	}
}

func TestYacEngineCommitIdempotence(t *testing.T) {
	net := &fakeNetwork{}
	engine := NewYacEngine(genCrypto(t), net, NewClusterOrdering(makePeers(4)), time.Hour, testLogger())

	var commits int
	var mu sync.Mutex
	engine.OnCommit(func(CommitMessage) {
		mu.Lock()
		commits++
		mu.Unlock()
	})

	hash := YacHash{ProposalHash: leaf(1), BlockHash: leaf(2)}
	var votes []VoteMessage
	for i := 0; i < 4; i++ {
		voter := genCrypto(t)
		vote, err := voter.GetVote(hash)
		if err != nil {
			t.Fatalf("GetVote: %v", err)
		}
		votes = append(votes, vote)
	}
	commit := CommitMessage{Hash: hash, Votes: votes}
	net.onCommit(commit)
	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return commits == 1
	})
	net.onCommit(commit)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if commits != 1 {
		t.Fatalf("replaying a valid commit must cause no further emission, got %d emissions", commits)
	}
}

func TestYacEngineLocalVoteBroadcast(t *testing.T) {
	net := &fakeNetwork{}
	engine := NewYacEngine(genCrypto(t), net, NewClusterOrdering(makePeers(4)), time.Hour, testLogger())

	var commits, rejects int
	engine.OnCommit(func(CommitMessage) { commits++ })
	engine.OnReject(func(RejectMessage) { rejects++ })

	order := NewClusterOrdering(makePeers(4))
	hash := YacHash{ProposalHash: leaf(1), BlockHash: leaf(2)}
	if err := engine.Vote(context.Background(), hash, order); err != nil {
		t.Fatalf("Vote: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if net.sentVoteCount() != 1 {
		t.Fatalf("expected exactly 1 SendVote call for this engine's own vote, got %d", net.sentVoteCount())
	}
	if commits != 0 || rejects != 0 {
		t.Fatal("a lone local vote should emit neither commit nor reject")
	}
}

func TestYacEngineRejectWhenSupermajorityImpossible(t *testing.T) {
	net := &fakeNetwork{}
	engine := NewYacEngine(genCrypto(t), net, NewClusterOrdering(makePeers(4)), time.Hour, testLogger())

	rejectCh := make(chan RejectMessage, 1)
	engine.OnReject(func(r RejectMessage) { rejectCh <- r })

	// N=4, threshold=3. Split 2 votes to hash A and 2 to hash B: no hash
	// can still reach 3 once all 4 peers have voted.
	hashA := YacHash{ProposalHash: leaf(1), BlockHash: leaf(1)}
	hashB := YacHash{ProposalHash: leaf(2), BlockHash: leaf(2)}
	for i := 0; i < 2; i++ {
		voter := genCrypto(t)
		vote, _ := voter.GetVote(hashA)
		net.onVote(vote)
	}
	for i := 0; i < 2; i++ {
		voter := genCrypto(t)
		vote, _ := voter.GetVote(hashB)
		net.onVote(vote)
	}

	select {
	case <-rejectCh:
	case <-time.After(2 * time.Second):
		t.Fatal("expected reject once no hash can still reach supermajority")
	}
}

func TestYacEngineRecordsConflictingVote(t *testing.T) {
	net := &fakeNetwork{}
	engine := NewYacEngine(genCrypto(t), net, NewClusterOrdering(makePeers(4)), time.Hour, testLogger())

	voter := genCrypto(t)
	hashA := YacHash{ProposalHash: leaf(1), BlockHash: leaf(1)}
	hashB := YacHash{ProposalHash: leaf(2), BlockHash: leaf(2)}

	firstVote, err := voter.GetVote(hashA)
	if err != nil {
		t.Fatalf("GetVote: %v", err)
	}
	net.onVote(firstVote)

	secondVote, err := voter.GetVote(hashB)
	if err != nil {
		t.Fatalf("GetVote: %v", err)
	}
	net.onVote(secondVote)

	time.Sleep(10 * time.Millisecond)
	conflicts := engine.ConflictingVotes()
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 recorded conflict, got %d", len(conflicts))
	}
	if !conflicts[0].Hash.Equal(hashB) {
		t.Fatal("expected the conflicting (second) vote to be recorded, not the first")
	}
}

func TestYacEngineDropsInvalidSignature(t *testing.T) {
	net := &fakeNetwork{}
	engine := NewYacEngine(genCrypto(t), net, NewClusterOrdering(makePeers(4)), time.Hour, testLogger())

	var commits int
	engine.OnCommit(func(CommitMessage) { commits++ })

	hash := YacHash{ProposalHash: leaf(1), BlockHash: leaf(2)}
	voter := genCrypto(t)
	vote, _ := voter.GetVote(hash)
	vote.Hash.BlockHash = leaf(99) // invalidate the signature by tampering post-sign
	net.onVote(vote)

	time.Sleep(10 * time.Millisecond)
	if commits != 0 {
		t.Fatal("a tampered vote must be dropped, not tallied")
	}
}
