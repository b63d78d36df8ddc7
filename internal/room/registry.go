// internal/room/registry.go
package room

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

const (
	// CodeAlphabet omits letters that are easy to confuse (I, L, O).
	CodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ"
	// CodeLength is the number of characters in a room code.
	CodeLength = 4
)

// Registry owns every live room, keyed by code.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	intn  func(n int) int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		intn:  rand.IntN,
	}
}

func codeSpace() int {
	n := 1
	for i := 0; i < CodeLength; i++ {
		n *= len(CodeAlphabet)
	}
	return n
}

func (reg *Registry) makeCode() string {
	var sb strings.Builder
	sb.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		sb.WriteByte(CodeAlphabet[reg.intn(len(CodeAlphabet))])
	}
	return sb.String()
}

// Create allocates a room under a fresh code. The room is resolvable by Get
// as soon as Create returns.
func (reg *Registry) Create(timer float64) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if len(reg.rooms) >= codeSpace() {
		return nil, ErrRegistryFull
	}
	code := reg.makeCode()
	for {
		if _, taken := reg.rooms[code]; !taken {
			break
		}
		code = reg.makeCode()
	}
	r := newRoom(code, timer)
	reg.rooms[code] = r
	return r, nil
}

// Get looks up a live room. Codes are matched case-insensitively.
func (reg *Registry) Get(code string) (*Room, bool) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, false
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[code]
	return r, ok
}

// Delete removes r from the registry if it is still the room stored under its code.
func (reg *Registry) Delete(r *Room) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if cur, ok := reg.rooms[r.code]; ok && cur == r {
		delete(reg.rooms, r.code)
		return true
	}
	return false
}

// List returns every live room, ordered by code.
func (reg *Registry) List() []*Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	codes := lo.Keys(reg.rooms)
	slices.Sort(codes)
	return lo.Map(codes, func(code string, _ int) *Room {
		return reg.rooms[code]
	})
}

// Len returns the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// NormalizeCode trims and upper-cases a user-entered code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
