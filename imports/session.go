package imports

import (
	"context"
	"sync"

	"club-import/common"
	"club-import/parsers"
	"club-import/store"

	"github.com/pkg/errors"
)

type State string

const (
	StateIdle       State = "idle"
	StatePreviewing State = "previewing"
	StateCommitting State = "committing"
	StateCompleted  State = "completed"
)

var (
	ErrInvalidTransition = errors.New("invalid import state transition")
	ErrUnknownRecord     = errors.New("no record at that index")
	ErrNotDuplicate      = errors.New("record is not a duplicate")
)

// Preview is what a session shows before anything is written
type Preview struct {
	EntityType     common.EntityType       `json:"entity_type"`
	Headers        []string                `json:"headers"`
	Records        []PlannedRecord         `json:"records"`
	Actions        map[int]DuplicateAction `json:"actions"`
	DuplicateCount int                     `json:"duplicate_count"`
}

// Session holds one import from upload to outcome:
// idle -> previewing -> committing -> completed, and back to idle on Reset.
type Session struct {
	mu         sync.Mutex
	state      State
	generation int
	entityType common.EntityType
	headers    []string
	records    []PlannedRecord
	actions    map[int]DuplicateAction
	progress   Progress
	outcome    *Outcome
	cancel     context.CancelFunc
}

func NewSession() *Session {
	return &Session{state: StateIdle}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Preview parses text and resolves every row against snap
func (s *Session) Preview(text string, entityType common.EntityType, snap *store.Snapshot) (*Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return nil, errors.Wrapf(ErrInvalidTransition, "cannot preview while %s", s.state)
	}

	parsed := parsers.ParseCSV(text, entityType)
	s.entityType = entityType
	s.headers = parsed.Headers
	s.records = Analyze(parsed, entityType, snap)
	s.actions = DefaultActions(s.records)
	s.progress = Progress{Total: len(s.records)}
	s.outcome = nil
	s.state = StatePreviewing
	return s.previewLocked(), nil
}

func (s *Session) previewLocked() *Preview {
	records := make([]PlannedRecord, len(s.records))
	copy(records, s.records)
	return &Preview{
		EntityType:     s.entityType,
		Headers:        s.headers,
		Records:        records,
		Actions:        s.actionsLocked(),
		DuplicateCount: len(s.actions),
	}
}

func (s *Session) actionsLocked() map[int]DuplicateAction {
	actions := make(map[int]DuplicateAction, len(s.actions))
	for k, v := range s.actions {
		actions[k] = v
	}
	return actions
}

// CurrentPreview returns the preview of a session that has one
func (s *Session) CurrentPreview() (*Preview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		return nil, false
	}
	return s.previewLocked(), true
}

// SetAction chooses skip or replace for a duplicate record
func (s *Session) SetAction(index int, action DuplicateAction) error {
	if _, err := ParseDuplicateAction(string(action)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePreviewing {
		return errors.Wrapf(ErrInvalidTransition, "cannot change actions while %s", s.state)
	}
	if index < 0 || index >= len(s.records) {
		return errors.Wrapf(ErrUnknownRecord, "index %d", index)
	}
	if !s.records[index].IsDuplicate() {
		return errors.Wrapf(ErrNotDuplicate, "index %d", index)
	}
	s.actions[index] = action
	return nil
}

// Start moves the session to committing and runs the commit in the
// background. The returned channel yields the outcome once.
func (s *Session) Start(ctx context.Context, applier Applier, opts CommitOptions) (<-chan *Outcome, error) {
	s.mu.Lock()
	if s.state != StatePreviewing {
		state := s.state
		s.mu.Unlock()
		return nil, errors.Wrapf(ErrInvalidTransition, "cannot commit while %s", state)
	}
	ctx, cancel := context.WithCancel(ctx)
	s.state = StateCommitting
	s.cancel = cancel
	generation := s.generation
	entityType := s.entityType
	records := s.records
	actions := s.actionsLocked()
	s.mu.Unlock()

	onProgress := opts.OnProgress
	opts.OnProgress = func(p Progress) {
		s.mu.Lock()
		if s.generation == generation {
			s.progress = p
		}
		s.mu.Unlock()
		if onProgress != nil {
			onProgress(p)
		}
	}

	done := make(chan *Outcome, 1)
	go func() {
		defer cancel()
		outcome := Commit(ctx, entityType, records, actions, applier, opts)

		s.mu.Lock()
		if s.generation == generation {
			s.state = StateCompleted
			s.outcome = outcome
			s.cancel = nil
		}
		s.mu.Unlock()

		done <- outcome
	}()
	return done, nil
}

// Commit runs Start and waits for the outcome
func (s *Session) Commit(ctx context.Context, applier Applier, opts CommitOptions) (*Outcome, error) {
	done, err := s.Start(ctx, applier, opts)
	if err != nil {
		return nil, err
	}
	return <-done, nil
}

// Cancel stops dispatching further batches of a running commit
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCommitting || s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

func (s *Session) Outcome() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Reset discards everything and returns to idle. A running commit is
// cancelled and its outcome dropped.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.state = StateIdle
	s.entityType = ""
	s.headers = nil
	s.records = nil
	s.actions = nil
	s.progress = Progress{}
	s.outcome = nil
}

// Registry keeps the live sessions keyed by import job id
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) Put(id string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
