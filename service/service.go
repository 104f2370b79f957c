package service

import (
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/npcflow/engine"
	"github.com/BaSui01/npcflow/types"
)

// Service is the shared access point to one conversation engine. It is an
// explicitly constructed, explicitly passed instance — there is no process
// global. It serializes all entry points, so the lock-free engine can be
// driven from any goroutine, and it re-emits the engine's events on its own
// bus verbatim: no filtering, no buffering, same order, same payloads,
// still synchronous within the triggering call.
//
// Event handlers subscribed on Events() run while the service lock is
// held; calling back into the service from a handler is disallowed.
type Service struct {
	mu     sync.Mutex
	engine *engine.Engine
	subs   []string

	bus    *engine.Bus
	logger *zap.Logger
}

// NewService creates a service with no engine. Operations before the first
// Reload return their sentinel results instead of failing.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		bus:    engine.NewBus(logger),
		logger: logger,
	}
}

// Events returns the forwarding bus.
func (s *Service) Events() *engine.Bus { return s.bus }

// Reload builds a fresh engine indexed from db and replaces the owned one.
// The old engine's forwarding subscription is torn down first, so events
// are only ever forwarded from the engine the service currently owns.
func (s *Service) Reload(db *types.Database) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	eng := engine.NewEngine(s.logger)
	if err := eng.LoadDatabase(db); err != nil {
		return err
	}

	s.detachLocked()
	s.engine = eng
	s.subs = []string{
		eng.Events().Subscribe(engine.EventAll, func(ev engine.Event) {
			s.bus.Publish(ev)
		}),
	}
	return nil
}

// Start activates the conversation with the given id. Returns false when
// the id is unknown or no engine has been loaded yet.
func (s *Service) Start(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return false, nil
	}
	return s.engine.TryStartConversation(id)
}

// Choose delegates to the engine; a no-op with no engine loaded.
func (s *Service) Choose(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return
	}
	s.engine.Choose(index)
}

// End delegates to the engine; a no-op with no engine loaded.
func (s *Service) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return
	}
	s.engine.EndConversation()
}

// IsActive reports whether a conversation is in progress.
func (s *Service) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine != nil && s.engine.IsActive()
}

// CurrentConversation returns the active conversation, or nil.
func (s *Service) CurrentConversation() *types.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil
	}
	return s.engine.CurrentConversation()
}

// CurrentNode returns the active node, or nil.
func (s *Service) CurrentNode() *types.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil
	}
	return s.engine.CurrentNode()
}

// Close tears down the forwarding subscription and releases the engine.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked()
	s.engine = nil
}

func (s *Service) detachLocked() {
	if s.engine == nil {
		return
	}
	for _, id := range s.subs {
		s.engine.Events().Unsubscribe(id)
	}
	s.subs = nil
}
