package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestBlockStoreInsertGenesis(t *testing.T) {
	s := NewBlockStore(nil)
	genesis := NewBlock(1, ZeroHash, 100, nil)
	if !s.Insert(genesis) {
		t.Fatal("expected genesis insert to succeed")
	}
	if s.Height() != 1 {
		t.Fatalf("expected height 1, got %d", s.Height())
	}
}

func TestBlockStoreRejectsWrongGenesis(t *testing.T) {
	s := NewBlockStore(nil)
	bad := NewBlock(2, ZeroHash, 100, nil)
	if s.Insert(bad) {
		t.Fatal("expected insert of non-height-1 genesis to fail")
	}
	if s.Height() != 0 {
		t.Fatal("store should be unchanged after a rejected insert")
	}
}

func TestBlockStoreChains(t *testing.T) {
	s := NewBlockStore(nil)
	genesis := NewBlock(1, ZeroHash, 100, nil)
	s.Insert(genesis)
	b2 := NewBlock(2, genesis.Hash(), 200, nil)
	if !s.Insert(b2) {
		t.Fatal("expected valid successor insert to succeed")
	}
	if s.Height() != 2 {
		t.Fatalf("expected height 2, got %d", s.Height())
	}

	for i := 1; i < int(s.Height()); i++ {
		prev := s.BlockByHeight(uint64(i))
		cur := s.BlockByHeight(uint64(i + 1))
		if !cur.PrevHash.Equal(prev.Hash()) || cur.Height != prev.Height+1 {
			t.Fatalf("adjacent blocks %d,%d violate chain invariant", i, i+1)
		}
	}
}

func TestBlockStoreRejectsBrokenChain(t *testing.T) {
	s := NewBlockStore(nil)
	genesis := NewBlock(1, ZeroHash, 100, nil)
	s.Insert(genesis)
	bad := NewBlock(2, SumPayload([]byte("wrong")), 200, nil)
	if s.Insert(bad) {
		t.Fatal("expected insert with wrong prev-hash to fail")
	}
	if s.Height() != 1 {
		t.Fatal("store should be unchanged after a rejected insert")
	}
}

func TestBlockStoreByHash(t *testing.T) {
	s := NewBlockStore(nil)
	genesis := NewBlock(1, ZeroHash, 100, nil)
	s.Insert(genesis)
	if got := s.BlockByHash(genesis.Hash()); got == nil || got.Height != 1 {
		t.Fatal("expected BlockByHash to find the genesis block")
	}
	if got := s.BlockByHash(SumPayload([]byte("nope"))); got != nil {
		t.Fatal("expected BlockByHash miss to return nil")
	}
}

func TestBlockStoreLogsRejectedInsert(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	s := NewBlockStore(log)
	bad := NewBlock(2, ZeroHash, 100, nil)
	if s.Insert(bad) {
		t.Fatal("expected non-height-1 genesis to be rejected")
	}
	if !strings.Contains(buf.String(), "blockstore: rejecting block, invariant violation") {
		t.Fatalf("expected a warning logged for the rejected insert, got %q", buf.String())
	}
}

func TestBlockStoreDropStorage(t *testing.T) {
	s := NewBlockStore(nil)
	s.Insert(NewBlock(1, ZeroHash, 100, nil))
	s.DropStorage()
	if s.Height() != 0 {
		t.Fatal("expected height 0 after DropStorage")
	}
	if s.Top() != nil {
		t.Fatal("expected nil top after DropStorage")
	}
	if !s.Insert(NewBlock(1, ZeroHash, 100, nil)) {
		t.Fatal("expected a fresh genesis insert to succeed after DropStorage")
	}
}
