package game

import "math"

// Transfer is an authorized movement of escrowed value to a recipient.
// The engine only authorizes transfers; moving real value is the
// caller's concern.
type Transfer struct {
	To     ID
	Amount int64
}

// Ledger tracks the prize pool escrow of a single room. Stakes are
// added with overflow checking and leave through a single settlement
// authorization: a payout to the winner, which leaves the final pool
// figure on record, or refunds on cancel, which drain it. The pool
// always equals the sum of the players' recorded stakes, and lifetime
// paid never exceeds lifetime added.
type Ledger struct {
	pool    int64
	added   int64
	paid    int64
	settled bool
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{}
}

// Pool returns the currently escrowed amount
func (l *Ledger) Pool() int64 {
	return l.pool
}

// Added returns the lifetime total of escrowed stakes
func (l *Ledger) Added() int64 {
	return l.added
}

// Paid returns the lifetime total of authorized transfers
func (l *Ledger) Paid() int64 {
	return l.paid
}

// Settled returns true once a payout or refund has been authorized
func (l *Ledger) Settled() bool {
	return l.settled
}

// Add escrows amount into the pool. On overflow it returns
// ErrArithmetic and the ledger is unchanged.
func (l *Ledger) Add(amount int64) error {
	newPool, err := addChecked(l.pool, amount)
	if err != nil {
		return err
	}
	newAdded, err := addChecked(l.added, amount)
	if err != nil {
		return err
	}
	l.pool = newPool
	l.added = newAdded
	return nil
}

// Settle authorizes paying the entire pool to the winner. The first
// call returns the transfer and true; every later call returns false
// and moves nothing. The pool figure is not drained: a completed room
// keeps reporting its final prize alongside the players' stakes.
func (l *Ledger) Settle(winner ID) (Transfer, bool) {
	if l.settled {
		return Transfer{}, false
	}
	l.settled = true
	t := Transfer{To: winner, Amount: l.pool}
	l.paid += l.pool
	return t, true
}

// RefundAll authorizes returning each player's total stake. Like
// Settle, it fires at most once.
func (l *Ledger) RefundAll(players []*Player) ([]Transfer, bool) {
	if l.settled {
		return nil, false
	}
	l.settled = true
	var transfers []Transfer
	for _, p := range players {
		if p.TotalStaked == 0 {
			continue
		}
		transfers = append(transfers, Transfer{To: p.ID, Amount: p.TotalStaked})
		l.paid += p.TotalStaked
		l.pool -= p.TotalStaked
	}
	return transfers, true
}

// addChecked returns a+b, or ErrArithmetic when the sum would exceed
// the int64 range. Stakes are never negative so only the upper bound
// needs checking.
func addChecked(a, b int64) (int64, error) {
	if a > math.MaxInt64-b {
		return 0, ErrArithmetic
	}
	return a + b, nil
}
