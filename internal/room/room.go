// internal/room/room.go
package room

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	// MaxNameLength caps a player's display name, in characters.
	MaxNameLength = 40
	// DefaultPlayerName is used when a player joins without a name.
	DefaultPlayerName = "Player"
	// DefaultQuestionTimer is the number of seconds between automatic advances.
	DefaultQuestionTimer = 5
	// MaxQuestionTimer is the longest delay a host may set between automatic advances.
	MaxQuestionTimer = 3600
)

// Player is one joined connection. The connection id doubles as the player id.
type Player struct {
	ID     uuid.UUID   `json:"id"`
	Name   string      `json:"name"`
	Avatar interface{} `json:"avatar"`
	Score  int         `json:"score"`
}

// LeaderboardEntry is the public projection of a player's standing.
type LeaderboardEntry struct {
	Name   string      `json:"name"`
	Score  int         `json:"score"`
	Avatar interface{} `json:"avatar"`
}

// Snapshot is the full room state broadcast as a state event.
type Snapshot struct {
	Code                 string      `json:"code"`
	HostID               *uuid.UUID  `json:"hostId"`
	Players              []Player    `json:"players"`
	Answered             []uuid.UUID `json:"answered"`
	CurrentQuestionIndex int         `json:"currentQuestionIndex"`
	RoundActive          bool        `json:"roundActive"`
	AutoLeaderboard      bool        `json:"autoLeaderboard"`
	AutoQuestionTimer    float64     `json:"autoQuestionTimer"`
}

// Room is a single live trivia session. Every field is guarded by mu.
type Room struct {
	mu sync.Mutex

	code   string
	hostID uuid.UUID

	players map[uuid.UUID]*Player
	order   []uuid.UUID // join order, for stable iteration

	currentQuestionIndex int
	roundActive          bool
	answers              map[uuid.UUID]interface{}

	autoLeaderboard   bool
	autoQuestionTimer float64

	// advance scheduling; timerGen invalidates callbacks that already fired
	timer    *time.Timer
	timerGen uint64

	closed         bool
	actionIndex    int
	roundStartedAt time.Time
}

func newRoom(code string, timer float64) *Room {
	if timer <= 0 {
		timer = DefaultQuestionTimer
	}
	return &Room{
		code:                 code,
		players:              make(map[uuid.UUID]*Player),
		currentQuestionIndex: -1,
		answers:              make(map[uuid.UUID]interface{}),
		autoQuestionTimer:    timer,
	}
}

// Code returns the room's join code.
func (r *Room) Code() string {
	return r.code
}

// Snapshot returns a copy of the room state.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() Snapshot {
	var host *uuid.UUID
	if r.hostID != uuid.Nil {
		id := r.hostID
		host = &id
	}
	answered := lo.Filter(r.order, func(id uuid.UUID, _ int) bool {
		_, ok := r.answers[id]
		return ok
	})
	return Snapshot{
		Code:                 r.code,
		HostID:               host,
		Players:              r.playersLocked(),
		Answered:             answered,
		CurrentQuestionIndex: r.currentQuestionIndex,
		RoundActive:          r.roundActive,
		AutoLeaderboard:      r.autoLeaderboard,
		AutoQuestionTimer:    r.autoQuestionTimer,
	}
}

// playersLocked returns copies of the players in join order.
func (r *Room) playersLocked() []Player {
	return lo.FilterMap(r.order, func(id uuid.UUID, _ int) (Player, bool) {
		p, ok := r.players[id]
		if !ok {
			return Player{}, false
		}
		return *p, true
	})
}

func (r *Room) leaderboardLocked() []LeaderboardEntry {
	return lo.Map(r.playersLocked(), func(p Player, _ int) LeaderboardEntry {
		return LeaderboardEntry{Name: p.Name, Score: p.Score, Avatar: p.Avatar}
	})
}

// putPlayerLocked inserts or replaces the player for a connection. A rejoin resets the score.
func (r *Room) putPlayerLocked(id uuid.UUID, name string, avatar interface{}) *Player {
	if _, exists := r.players[id]; !exists {
		r.order = append(r.order, id)
	}
	p := &Player{ID: id, Name: displayName(name), Avatar: avatar}
	r.players[id] = p
	return p
}

// removePlayerLocked reports whether the connection was a player here.
func (r *Room) removePlayerLocked(id uuid.UUID) bool {
	if _, ok := r.players[id]; !ok {
		return false
	}
	delete(r.players, id)
	delete(r.answers, id)
	r.order = lo.Without(r.order, id)
	return true
}

func (r *Room) emptyLocked() bool {
	return r.hostID == uuid.Nil && len(r.players) == 0
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return DefaultPlayerName
	}
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	return string([]rune(name)[:MaxNameLength])
}
