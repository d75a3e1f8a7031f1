package core

// network.go – the transport YacEngine depends on, plus a concrete
// libp2p+gossipsub adapter. Grounded on the teacher's core/network.go
// NewNode (libp2p host construction, gossipsub topic join) trimmed of its
// mDNS/NAT-traversal peer discovery, which is out of scope here: spec.md
// treats peer membership as fixed per round (ClusterOrdering), not
// dynamically discovered.

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/sirupsen/logrus"

	"yac-network/pkg/utils"
)

// Network is the outbound/inbound message contract a YacEngine uses to
// exchange votes, commits and rejects with the rest of the cluster. It is
// an external collaborator per spec.md §1: YacEngine depends only on this
// interface, never on a concrete transport.
type Network interface {
	// SendVote delivers vote to every peer in to.
	SendVote(ctx context.Context, to []Peer, vote VoteMessage) error
	// SendCommit delivers commit to every peer in to.
	SendCommit(ctx context.Context, to []Peer, commit CommitMessage) error
	// SendReject delivers reject to every peer in to.
	SendReject(ctx context.Context, to []Peer, reject RejectMessage) error

	// OnVote registers the handler invoked for every vote received from a
	// peer. Only one handler may be registered at a time.
	OnVote(func(VoteMessage))
	// OnCommit registers the handler invoked for every commit received.
	OnCommit(func(CommitMessage))
	// OnReject registers the handler invoked for every reject received.
	OnReject(func(RejectMessage))
}

const yacTopicName = "yac-consensus/v1"

// wireEnvelope tags which payload a gossipsub message carries, since a
// single topic multiplexes all three message kinds.
type wireEnvelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// GossipNetwork is a Network backed by a libp2p host and a single
// gossipsub topic shared by the whole cluster, mirroring the teacher's
// one-topic-per-concern pubsub usage in core/network.go and core/consensus.go.
type GossipNetwork struct {
	host  host.Host
	topic *pubsub.Topic
	sub   *pubsub.Subscription
	log   *logrus.Logger

	mu        sync.RWMutex
	onVote    func(VoteMessage)
	onCommit  func(CommitMessage)
	onReject  func(RejectMessage)
}

// NewGossipNetwork builds a libp2p host listening on listenAddr, joins the
// consensus gossipsub topic, and starts the inbound dispatch loop.
func NewGossipNetwork(ctx context.Context, listenAddr string, log *logrus.Logger) (*GossipNetwork, error) {
	h, err := libp2p.New(libp2p.ListenAddrStrings(listenAddr))
	if err != nil {
		return nil, utils.Wrap(err, "network: create libp2p host")
	}
	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		return nil, utils.Wrap(err, "network: create gossipsub")
	}
	topic, err := ps.Join(yacTopicName)
	if err != nil {
		return nil, utils.Wrap(err, "network: join topic")
	}
	sub, err := topic.Subscribe()
	if err != nil {
		return nil, utils.Wrap(err, "network: subscribe topic")
	}

	n := &GossipNetwork{host: h, topic: topic, sub: sub, log: log}
	go n.dispatchLoop(ctx)
	return n, nil
}

// ID returns the local host's libp2p peer ID string, for logging.
func (n *GossipNetwork) ID() string { return n.host.ID().String() }

func (n *GossipNetwork) publish(ctx context.Context, kind string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return utils.Wrap(err, "network: marshal payload")
	}
	env, err := json.Marshal(wireEnvelope{Kind: kind, Payload: raw})
	if err != nil {
		return utils.Wrap(err, "network: marshal envelope")
	}
	if err := n.topic.Publish(ctx, env); err != nil {
		return utils.Wrap(err, "network: publish")
	}
	return nil
}

// SendVote publishes vote to the shared topic. Gossipsub fans out to the
// whole cluster regardless of the `to` list; it is kept in the signature to
// satisfy Network and to let a future point-to-point transport honor it.
func (n *GossipNetwork) SendVote(ctx context.Context, to []Peer, vote VoteMessage) error {
	return n.publish(ctx, "vote", vote)
}

// SendCommit publishes commit to the shared topic.
func (n *GossipNetwork) SendCommit(ctx context.Context, to []Peer, commit CommitMessage) error {
	return n.publish(ctx, "commit", commit)
}

// SendReject publishes reject to the shared topic.
func (n *GossipNetwork) SendReject(ctx context.Context, to []Peer, reject RejectMessage) error {
	return n.publish(ctx, "reject", reject)
}

func (n *GossipNetwork) OnVote(f func(VoteMessage)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onVote = f
}

func (n *GossipNetwork) OnCommit(f func(CommitMessage)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onCommit = f
}

func (n *GossipNetwork) OnReject(f func(RejectMessage)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onReject = f
}

// dispatchLoop reads gossipsub messages until ctx is done, decoding each
// envelope and routing it to the registered handler for its kind.
func (n *GossipNetwork) dispatchLoop(ctx context.Context) {
	for {
		msg, err := n.sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			n.log.WithError(err).Warn("network: gossipsub read failed")
			continue
		}
		if msg.ReceivedFrom == n.host.ID() {
			continue
		}
		n.dispatch(msg.Data)
	}
}

func (n *GossipNetwork) dispatch(data []byte) {
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		n.log.WithError(err).Warn("network: malformed envelope")
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	switch env.Kind {
	case "vote":
		if n.onVote == nil {
			return
		}
		var v VoteMessage
		if err := json.Unmarshal(env.Payload, &v); err != nil {
			n.log.WithError(err).Warn("network: malformed vote")
			return
		}
		n.onVote(v)
	case "commit":
		if n.onCommit == nil {
			return
		}
		var c CommitMessage
		if err := json.Unmarshal(env.Payload, &c); err != nil {
			n.log.WithError(err).Warn("network: malformed commit")
			return
		}
		n.onCommit(c)
	case "reject":
		if n.onReject == nil {
			return
		}
		var r RejectMessage
		if err := json.Unmarshal(env.Payload, &r); err != nil {
			n.log.WithError(err).Warn("network: malformed reject")
			return
		}
		n.onReject(r)
	default:
		n.log.Warn(fmt.Sprintf("network: unknown envelope kind %q", env.Kind))
	}
}

// Close shuts down the subscription and host.
func (n *GossipNetwork) Close() error {
	n.sub.Cancel()
	return n.host.Close()
}
