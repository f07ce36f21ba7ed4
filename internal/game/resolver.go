package game

// CountDigit returns how many times digit occurs across the decimal
// digits of the given secrets. Every secret contributes exactly
// SecretDigits positions.
func CountDigit(secrets []int, digit int) int {
	count := 0
	for _, s := range secrets {
		for i := 0; i < SecretDigits; i++ {
			if s%10 == digit {
				count++
			}
			s /= 10
		}
	}
	return count
}

// resolve scores the standing bid against the true digit count over all
// revealed secrets. The claim holds, and the last bidder wins, when the
// count is at least the claimed quantity; otherwise the challenger wins.
func (r *Room) resolve() (winner ID, count int) {
	if r.CurrentBid == nil {
		panic("resolve requires a standing bid")
	}
	secrets := make([]int, 0, r.registry.Len())
	for _, p := range r.registry.Players() {
		if p.Revealed {
			secrets = append(secrets, p.Secret)
		}
	}
	count = CountDigit(secrets, r.CurrentBid.Digit)
	if count >= r.CurrentBid.Quantity {
		return r.LastBidder, count
	}
	return r.Challenger, count
}
