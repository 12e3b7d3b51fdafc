// Package chat implements the domain services behind the event surface:
// identity, contact graph, groups, message routing, and history.
package chat

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/auth"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/protocol"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/registry"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/store"
)

// Metrics receives domain-level observations. Implementations must accept
// calls from concurrent sessions; a nil Metrics disables recording.
type Metrics interface {
	RecordMessage(kind string)
	RecordDelivery()
	RecordAuthFailure()
}

// Options configures optional Service collaborators.
type Options struct {
	Metrics Metrics
	// Now overrides the timestamp source, for tests.
	Now func() time.Time
	// NewID overrides message ID generation, for tests.
	NewID func() string
}

// Service wires the store, registry, and verifier behind the event
// operations. All pushes are fire-and-forget.
type Service struct {
	log      *zap.Logger
	store    store.Store
	registry registry.ConnectionRegistry
	verifier auth.Verifier
	metrics  Metrics
	now      func() time.Time
	newID    func() string
}

// NewService constructs the domain service.
func NewService(log *zap.Logger, st store.Store, reg registry.ConnectionRegistry, verifier auth.Verifier, opts Options) *Service {
	svc := &Service{
		log:      log,
		store:    st,
		registry: reg,
		verifier: verifier,
		metrics:  opts.Metrics,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.newID == nil {
		svc.newID = uuid.NewString
	}
	return svc
}

// pushPresence sends username its current friend-presence snapshot, if the
// identity is registered. Failures are swallowed.
func (s *Service) pushPresence(username string) {
	conn, ok := s.registry.Lookup(username)
	if !ok {
		return
	}
	user, err := s.store.GetUser(username)
	if err != nil {
		s.log.Warn("presence snapshot read failed", zap.String("username", username), zap.Error(err))
		return
	}
	conn.Push(protocol.NewUserList(s.registry.Snapshot(user.Friends)))
}

// pushGroupList sends username the list of groups it belongs to, if the
// identity is registered. Failures are swallowed.
func (s *Service) pushGroupList(username string) {
	conn, ok := s.registry.Lookup(username)
	if !ok {
		return
	}
	groups, err := s.store.GroupsFor(username)
	if err != nil {
		s.log.Warn("group list read failed", zap.String("username", username), zap.Error(err))
		return
	}
	conn.Push(protocol.NewGroupList(groups))
}

func (s *Service) recordMessage(kind string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordMessage(kind)
}

func (s *Service) recordDelivery() {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordDelivery()
}

func (s *Service) recordAuthFailure() {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordAuthFailure()
}
