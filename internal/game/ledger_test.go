package game

import (
	"errors"
	"math"
	"testing"
)

func TestLedgerAdd(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	if err := l.Add(10); err != nil {
		t.Fatalf("Add(10) returned error: %v", err)
	}
	if err := l.Add(25); err != nil {
		t.Fatalf("Add(25) returned error: %v", err)
	}

	if l.Pool() != 35 {
		t.Errorf("Expected pool of 35, got %d", l.Pool())
	}
	if l.Added() != 35 {
		t.Errorf("Expected lifetime added of 35, got %d", l.Added())
	}
	if l.Paid() != 0 {
		t.Errorf("Expected nothing paid, got %d", l.Paid())
	}
}

func TestLedgerAddOverflow(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	if err := l.Add(math.MaxInt64); err != nil {
		t.Fatalf("Add(MaxInt64) returned error: %v", err)
	}

	err := l.Add(1)
	if !errors.Is(err, ErrArithmetic) {
		t.Fatalf("Expected ErrArithmetic, got %v", err)
	}
	if l.Pool() != math.MaxInt64 {
		t.Errorf("Expected pool unchanged at MaxInt64, got %d", l.Pool())
	}
	if l.Added() != math.MaxInt64 {
		t.Errorf("Expected lifetime added unchanged at MaxInt64, got %d", l.Added())
	}
}

func TestLedgerSettleOnce(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	if err := l.Add(30); err != nil {
		t.Fatalf("Add(30) returned error: %v", err)
	}

	payout, ok := l.Settle("alice")
	if !ok {
		t.Fatal("Expected first Settle to authorize the payout")
	}
	if payout.To != "alice" || payout.Amount != 30 {
		t.Errorf("Expected payout of 30 to alice, got %d to %s", payout.Amount, payout.To)
	}
	if !l.Settled() {
		t.Error("Expected ledger to be settled")
	}
	if l.Paid() != 30 {
		t.Errorf("Expected 30 paid, got %d", l.Paid())
	}

	// The final prize stays on record for completed rooms.
	if l.Pool() != 30 {
		t.Errorf("Expected pool to keep reporting 30, got %d", l.Pool())
	}

	if _, ok := l.Settle("bob"); ok {
		t.Error("Expected second Settle to be refused")
	}
	if l.Paid() != 30 {
		t.Errorf("Expected paid unchanged after second Settle, got %d", l.Paid())
	}
}

func TestLedgerRefundAll(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	if err := l.Add(10); err != nil {
		t.Fatalf("Add(10) returned error: %v", err)
	}
	if err := l.Add(20); err != nil {
		t.Fatalf("Add(20) returned error: %v", err)
	}

	players := []*Player{
		{ID: "alice", TotalStaked: 10},
		{ID: "bob", TotalStaked: 20},
		{ID: "carol", TotalStaked: 0},
	}

	refunds, ok := l.RefundAll(players)
	if !ok {
		t.Fatal("Expected first RefundAll to authorize refunds")
	}
	if len(refunds) != 2 {
		t.Fatalf("Expected 2 refunds (carol staked nothing), got %d", len(refunds))
	}
	if refunds[0].To != "alice" || refunds[0].Amount != 10 {
		t.Errorf("Expected refund of 10 to alice, got %d to %s", refunds[0].Amount, refunds[0].To)
	}
	if refunds[1].To != "bob" || refunds[1].Amount != 20 {
		t.Errorf("Expected refund of 20 to bob, got %d to %s", refunds[1].Amount, refunds[1].To)
	}

	if l.Pool() != 0 {
		t.Errorf("Expected drained pool after refunds, got %d", l.Pool())
	}
	if l.Paid() != 30 {
		t.Errorf("Expected 30 paid out, got %d", l.Paid())
	}
	if l.Added() != l.Paid() {
		t.Errorf("Expected added %d to equal paid %d after refunds", l.Added(), l.Paid())
	}

	if _, ok := l.RefundAll(players); ok {
		t.Error("Expected second RefundAll to be refused")
	}
}

func TestLedgerSettleEmptyPool(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	payout, ok := l.Settle("alice")
	if !ok {
		t.Fatal("Expected Settle on an empty pool to authorize")
	}
	if payout.Amount != 0 {
		t.Errorf("Expected zero payout, got %d", payout.Amount)
	}
}
