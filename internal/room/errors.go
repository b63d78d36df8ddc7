package room

import "errors"

var (
	// ErrUnknownRoom is returned when an action names a code with no live room.
	ErrUnknownRoom = errors.New("unknown room")
	// ErrNotHost is returned when a host-only action comes from another connection.
	ErrNotHost = errors.New("not the room host")
	// ErrRoundNotActive is returned for actions that need a running round.
	ErrRoundNotActive = errors.New("round not active")
	// ErrRoundStarted is returned when a round is started outside the lobby.
	ErrRoundStarted = errors.New("round already started")
	// ErrStaleAdvance is returned when a manual advance names a question that already closed.
	ErrStaleAdvance = errors.New("question already advanced")
	// ErrNotPlayer is returned when a connection that never joined tries to answer.
	ErrNotPlayer = errors.New("not a player in this room")
	// ErrInvalidPreference is returned when a preference field was ignored.
	ErrInvalidPreference = errors.New("invalid preference")
	// ErrRegistryFull is returned when every room code is taken.
	ErrRegistryFull = errors.New("no room codes available")
)
