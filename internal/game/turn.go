package game

// firstActive returns the first active player in join order, or the
// empty identity when no player is active.
func (r *Room) firstActive() ID {
	for _, p := range r.registry.Players() {
		if p.Active {
			return p.ID
		}
	}
	return ""
}

// nextActive returns the active player after the given one in join
// order, wrapping past the end and skipping inactive players. With a
// single active player the turn returns to them.
func (r *Room) nextActive(after ID) ID {
	players := r.registry.Players()
	start := -1
	for i, p := range players {
		if p.ID == after {
			start = i
			break
		}
	}
	if start == -1 {
		return r.firstActive()
	}
	for i := 1; i <= len(players); i++ {
		p := players[(start+i)%len(players)]
		if p.Active {
			return p.ID
		}
	}
	return ""
}
