package game

// Error is an engine error with a stable machine-readable code. The
// transport layer forwards codes verbatim to clients, so codes are part
// of the wire contract and must not change between releases.
type Error struct {
	Code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Engine errors. Every rejected operation returns exactly one of these,
// and a returned error guarantees the room was left untouched.
var (
	ErrInvalidPlayerCount = &Error{"invalid_player_count", "required players must be between 2 and 6"}
	ErrInvalidBidAmount   = &Error{"invalid_bid_amount", "minimum bid must be positive"}
	ErrInvalidDigit       = &Error{"invalid_digit", "digit must be between 0 and 9"}
	ErrInvalidQuantity    = &Error{"invalid_quantity", "quantity must be positive"}
	ErrRoomNotJoinable    = &Error{"room_not_joinable", "room is not accepting players"}
	ErrRoomFull           = &Error{"room_full", "room already has the maximum number of players"}
	ErrAlreadyJoined      = &Error{"already_joined", "identity already joined this room"}
	ErrInvalidGameState   = &Error{"invalid_game_state", "operation not allowed in the current phase"}
	ErrNotEnoughPlayers   = &Error{"not_enough_players", "not enough players have joined"}
	ErrNotAuthorized      = &Error{"not_authorized", "identity may not perform this operation"}
	ErrNotYourTurn        = &Error{"not_your_turn", "acting out of turn"}
	ErrBidTooLow          = &Error{"bid_too_low", "stake is below the room minimum"}
	ErrInvalidBid         = &Error{"invalid_bid", "bid does not escalate the standing bid"}
	ErrNoBidToChallenge   = &Error{"no_bid_to_challenge", "no standing bid to challenge"}
	ErrAlreadyRevealed    = &Error{"already_revealed", "secret was already revealed"}
	ErrArithmetic         = &Error{"arithmetic_overflow", "stake arithmetic would overflow"}
)

// ErrorCode extracts the machine-readable code from an engine error.
// Non-engine errors map to "internal".
func ErrorCode(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return "internal"
}
