package main

// main.go – the node binary: wires Crypto, GossipNetwork, BlockStore and
// YacEngine together behind a cobra root command. Grounded on the
// teacher's cmd/*server pattern of cobra root command + viper config +
// godotenv + logrus, trimmed to the flags spec.md §6 names (this binary is
// an external collaborator around the core library, not core logic
// itself: the client-ingress pipeline, genesis generation and persistent
// block storage it would otherwise need are out of scope).

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"yac-network/core"
	"yac-network/pkg/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	log := logrus.New()

	cmd := &cobra.Command{
		Use:   "yac-node",
		Short: "runs a YAC consensus node",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd, v, log)
		},
	}

	if err := config.BindFlags(cmd, v); err != nil {
		log.WithError(err).Fatal("bind flags")
	}
	return cmd
}

func runNode(cmd *cobra.Command, v *viper.Viper, log *logrus.Logger) error {
	_ = godotenv.Load() // best-effort; env vars already set take precedence

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log.SetLevel(logrus.InfoLevel)
	log.WithFields(logrus.Fields{
		"peer":       fmt.Sprintf("%s:%d", cfg.PeerHost, cfg.PeerPort),
		"client_api": fmt.Sprintf("%s:%d", cfg.ClientAPIHost, cfg.ClientAPIPort),
	}).Info("starting node")

	crypto, err := loadCrypto(cfg.PublicKeyPath, cfg.PrivateKeyPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	listenAddr := fmt.Sprintf("/ip4/%s/tcp/%d", cfg.PeerHost, cfg.PeerPort)
	network, err := core.NewGossipNetwork(ctx, listenAddr, log)
	if err != nil {
		return err
	}
	defer network.Close()

	store := core.NewBlockStore(log)
	// The client-API query surface (Torii) that would drive BlockQuery is an
	// external collaborator out of scope here; constructing it now only
	// proves it wires against store.
	_ = core.NewBlockQuery(store)

	// Peer discovery/membership is an external collaborator spec.md §1 does
	// not name a CLI flag for, so the cluster ordering contains only this
	// node (N=1, f=0, threshold 1: its own vote alone would commit). Nothing
	// in this binary calls engine.Vote; the engine only reacts to messages
	// arriving over the network.
	self := core.Peer{Address: listenAddr, PublicKey: crypto.PublicKey()}
	order := core.NewClusterOrdering([]core.Peer{self})

	engine := core.NewYacEngine(crypto, network, order, time.Duration(cfg.VoteDelayMS)*time.Millisecond, log)
	engine.OnCommit(func(c core.CommitMessage) {
		log.WithField("hash", c.Hash.BlockHash.Hex()).Info("round committed")
	})
	engine.OnReject(func(core.RejectMessage) {
		log.Warn("round rejected")
	})
	engine.OnAbandoned(func(err error) {
		log.WithError(err).Warn("round abandoned, awaiting re-seed")
	})

	log.WithField("id", network.ID()).Info("node ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info("shutting down")
	case <-ctx.Done():
	}
	return nil
}
