package core

import "testing"

func TestPagerFirstPage(t *testing.T) {
	p := NewPager(ZeroHash, 10)
	if !p.FirstPage() {
		t.Fatal("zero cursor should report FirstPage")
	}
	p2 := NewPager(SumPayload([]byte("x")), 10)
	if p2.FirstPage() {
		t.Fatal("non-zero cursor should not report FirstPage")
	}
}
