// internal/room/service.go
package room

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/trivia/internal/catalog"
	"github.com/sirupsen/logrus"
)

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	// DefaultTimer is the initial autoQuestionTimer of new rooms, in timer units.
	DefaultTimer float64
	// TimeUnit is the length of one timer unit. Defaults to one second.
	TimeUnit time.Duration
	// RemoveEmptyRooms drops a room once it has neither host nor players.
	RemoveEmptyRooms bool

	Journal Journal
	Results ResultStore
}

// Service applies host and player actions to rooms and runs the automatic question flow.
type Service struct {
	registry *Registry
	catalog  *catalog.Catalog
	gw       Gateway
	logger   *logrus.Logger

	defaultTimer     float64
	timeUnit         time.Duration
	removeEmptyRooms bool
	journal          Journal
	results          ResultStore
}

// NewService wires a room service. The catalog must not change afterwards.
func NewService(cat *catalog.Catalog, gw Gateway, logger *logrus.Logger, opts Options) *Service {
	if cat == nil {
		cat = catalog.Empty()
	}
	if logger == nil {
		logger = logrus.New()
	}
	s := &Service{
		registry:         NewRegistry(),
		catalog:          cat,
		gw:               gw,
		logger:           logger,
		defaultTimer:     opts.DefaultTimer,
		timeUnit:         opts.TimeUnit,
		removeEmptyRooms: opts.RemoveEmptyRooms,
		journal:          opts.Journal,
		results:          opts.Results,
	}
	if s.defaultTimer <= 0 {
		s.defaultTimer = DefaultQuestionTimer
	}
	if s.timeUnit <= 0 {
		s.timeUnit = time.Second
	}
	return s
}

// Registry exposes the room registry for read-only listings.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Catalog returns the question catalog the service was built with.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *Service) roomLog(r *Room) *logrus.Entry {
	return s.logger.WithField("room", r.code)
}

// withRoom runs fn with the room locked. A room removed between lookup and
// locking counts as unknown.
func (s *Service) withRoom(code string, fn func(r *Room) error) error {
	r, ok := s.registry.Get(code)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRoom, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("%w: %q", ErrUnknownRoom, code)
	}
	return fn(r)
}

// rejectUnknown tells the caller the room does not exist, if that is what err says.
func (s *Service) rejectUnknown(caller uuid.UUID, err error, signal EventType) error {
	if errors.Is(err, ErrUnknownRoom) {
		s.gw.Send(caller, Event{Type: signal})
	}
	return err
}

func (s *Service) broadcast(r *Room, t EventType, payload interface{}) {
	s.gw.Broadcast(r.code, Event{Type: t, Payload: payload})
}

func (s *Service) broadcastState(r *Room) {
	s.broadcast(r, EventState, r.snapshotLocked())
}

// CreateRoom opens a new room and makes the caller its host.
func (s *Service) CreateRoom(caller uuid.UUID) (string, error) {
	r, err := s.registry.Create(s.defaultTimer)
	if err != nil {
		s.logger.WithError(err).Error("could not create room")
		return "", err
	}
	s.gw.Join(caller, r.code)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.hostID = caller
	s.gw.Send(caller, Event{Type: EventRoomCreated, Payload: CodePayload{Code: r.code}})
	s.broadcastState(r)
	s.logAction(r, caller, ActionCreateRoom, nil)
	s.roomLog(r).WithField("host", caller).Info("room created")
	return r.code, nil
}

// HostJoin makes the caller host of an existing room.
func (s *Service) HostJoin(caller uuid.UUID, code string) error {
	err := s.withRoom(code, func(r *Room) error {
		s.gw.Join(caller, r.code)
		r.hostID = caller
		s.gw.Send(caller, Event{Type: EventHostAccepted, Payload: CodePayload{Code: r.code}})
		s.broadcastState(r)
		s.logAction(r, caller, ActionHostJoin, nil)
		return nil
	})
	return s.rejectUnknown(caller, err, EventErrorRoom)
}

// PlayerJoin adds the caller to a room as a player, replacing any earlier entry for
// the same connection.
func (s *Service) PlayerJoin(caller uuid.UUID, code, name string, avatar interface{}) error {
	err := s.withRoom(code, func(r *Room) error {
		s.gw.Join(caller, r.code)
		p := r.putPlayerLocked(caller, name, avatar)
		s.broadcastState(r)
		s.gw.Send(caller, Event{Type: EventJoinedAck, Payload: JoinedAckPayload{ID: caller, Code: r.code}})
		s.broadcast(r, EventPlaySound, SoundPayload{Name: "join"})
		s.logAction(r, caller, ActionPlayerJoin, map[string]interface{}{"name": p.Name})
		return nil
	})
	return s.rejectUnknown(caller, err, EventJoinRejected)
}

// StartQuiz begins the round. Host only, and only from the lobby.
func (s *Service) StartQuiz(caller uuid.UUID, code string) error {
	err := s.withRoom(code, func(r *Room) error {
		if r.hostID != caller {
			return ErrNotHost
		}
		if r.roundActive || r.currentQuestionIndex != -1 {
			return ErrRoundStarted
		}
		r.currentQuestionIndex = 0
		r.roundActive = true
		r.answers = make(map[uuid.UUID]interface{})
		r.roundStartedAt = time.Now()

		s.broadcast(r, EventRoundStarted, RoundStartedPayload{Idx: r.currentQuestionIndex})
		s.broadcastState(r)
		s.logAction(r, caller, ActionStartQuiz, nil)
		s.startFlowLocked(r)
		return nil
	})
	return s.ignoreOrReject(caller, code, err)
}

// SubmitAnswer records the caller's answer for the current question. A later
// submission replaces an earlier one.
func (s *Service) SubmitAnswer(caller uuid.UUID, code string, answer interface{}) error {
	err := s.withRoom(code, func(r *Room) error {
		if !r.roundActive {
			s.gw.Send(caller, Event{Type: EventAnswerRejected})
			return ErrRoundNotActive
		}
		p, ok := r.players[caller]
		if !ok {
			s.gw.Send(caller, Event{Type: EventAnswerRejected})
			return ErrNotPlayer
		}
		r.answers[caller] = answer
		s.broadcast(r, EventPlayerAnsweredLive, PlayerAnsweredPayload{PlayerID: caller, Name: p.Name})
		s.logAction(r, caller, ActionSubmitAnswer, map[string]interface{}{
			"question": r.currentQuestionIndex,
			"answer":   answer,
		})
		return nil
	})
	return s.rejectUnknown(caller, err, EventErrorRoom)
}

// NextQuestion is the host's manual advance. It pre-empts the pending timer for
// the current question.
func (s *Service) NextQuestion(caller uuid.UUID, code string) error {
	return s.nextQuestion(caller, code, -1)
}

// NextQuestionAt advances only if question idx is still the current one, so a click
// that loses the race against the timer does not also skip the following question.
// A negative idx behaves like NextQuestion.
func (s *Service) NextQuestionAt(caller uuid.UUID, code string, idx int) error {
	return s.nextQuestion(caller, code, idx)
}

func (s *Service) nextQuestion(caller uuid.UUID, code string, expected int) error {
	err := s.withRoom(code, func(r *Room) error {
		if r.hostID != caller {
			return ErrNotHost
		}
		if !r.roundActive {
			return ErrRoundNotActive
		}
		if expected >= 0 && expected != r.currentQuestionIndex {
			s.roomLog(r).WithFields(logrus.Fields{
				"expected": expected,
				"current":  r.currentQuestionIndex,
			}).Debug("question already advanced, ignoring manual advance")
			return ErrStaleAdvance
		}
		s.advanceLocked(r, caller)
		return nil
	})
	return s.ignoreOrReject(caller, code, err)
}

// ShowLeaderboard broadcasts the current standings. Any connection may ask.
func (s *Service) ShowLeaderboard(caller uuid.UUID, code string) error {
	err := s.withRoom(code, func(r *Room) error {
		s.broadcast(r, EventLeaderboard, LeaderboardPayload{Leaderboard: r.leaderboardLocked()})
		return nil
	})
	return s.rejectUnknown(caller, err, EventErrorRoom)
}

// Prefs is a host preference update. Fields are raw client values; nil means unset.
type Prefs struct {
	Timer           interface{}
	AutoLeaderboard interface{}
}

// SetPrefs applies each valid preference field and ignores the rest. A pending
// automatic advance keeps its original delay; a new timer applies from the next question.
func (s *Service) SetPrefs(caller uuid.UUID, code string, prefs Prefs) error {
	err := s.withRoom(code, func(r *Room) error {
		if r.hostID != caller {
			return ErrNotHost
		}
		var invalid []error
		applied := map[string]interface{}{}
		if prefs.Timer != nil {
			if t, ok := catalog.ToNumber(prefs.Timer); ok && t > 0 && t <= MaxQuestionTimer {
				r.autoQuestionTimer = t
				applied["timer"] = t
			} else {
				invalid = append(invalid, fmt.Errorf("%w: timer %v", ErrInvalidPreference, prefs.Timer))
			}
		}
		if prefs.AutoLeaderboard != nil {
			if b, ok := prefs.AutoLeaderboard.(bool); ok {
				r.autoLeaderboard = b
				applied["autoLeaderboard"] = b
			} else {
				invalid = append(invalid, fmt.Errorf("%w: autoLeaderboard %v", ErrInvalidPreference, prefs.AutoLeaderboard))
			}
		}
		s.broadcastState(r)
		s.logAction(r, caller, ActionSetPrefs, applied)
		return errors.Join(invalid...)
	})
	return s.ignoreOrReject(caller, code, err)
}

// Disconnect removes a connection from every room it belongs to. The round and any
// pending advance are left running.
func (s *Service) Disconnect(caller uuid.UUID) {
	for _, r := range s.registry.List() {
		s.disconnectFrom(r, caller)
	}
}

func (s *Service) disconnectFrom(r *Room, caller uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	changed := false
	if r.removePlayerLocked(caller) {
		changed = true
		s.broadcastState(r)
		s.logAction(r, caller, ActionLeave, nil)
	}
	if r.hostID == caller {
		changed = true
		r.hostID = uuid.Nil
		s.broadcast(r, EventHostLeft, nil)
		s.logAction(r, caller, ActionHostLeft, nil)
		s.roomLog(r).Info("host left")
	}
	if changed && s.removeEmptyRooms && r.emptyLocked() {
		s.closeLocked(r)
	}
}

// closeLocked tears a room down: cancels its pending advance and unregisters it.
// Assumes the room lock is held.
func (s *Service) closeLocked(r *Room) {
	s.cancelAdvanceLocked(r)
	r.closed = true
	r.roundActive = false
	s.registry.Delete(r)
	s.gw.Disband(r.code)
	s.logAction(r, uuid.Nil, ActionRoomRemoved, nil)
	s.roomLog(r).Info("room removed")
}

// Close tears down every room, cancelling all pending advances.
func (s *Service) Close() {
	for _, r := range s.registry.List() {
		r.mu.Lock()
		if !r.closed {
			s.closeLocked(r)
		}
		r.mu.Unlock()
	}
}

// ignoreOrReject signals unknown rooms to the caller and swallows host-only
// rejections, which are not surfaced to clients.
func (s *Service) ignoreOrReject(caller uuid.UUID, code string, err error) error {
	if errors.Is(err, ErrNotHost) {
		s.logger.WithFields(logrus.Fields{"room": code, "conn": caller}).Debug("ignoring host action from non-host")
	}
	return s.rejectUnknown(caller, err, EventErrorRoom)
}
