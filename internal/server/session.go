package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/chat"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/protocol"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/registry"
)

const sendBufferSize = 32

var errNotAuthenticated = &chat.Error{Code: "NOT_AUTHENTICATED", Message: "authenticate first"}
var errInvalidEvent = &chat.Error{Code: "INVALID_EVENT", Message: "malformed event"}

// session owns one WebSocket connection. It is the registry.Conn handle
// bound to the authenticated identity; outbound pushes are serialized by a
// single writer goroutine over a bounded channel.
type session struct {
	conn    *websocket.Conn
	log     *zap.Logger
	svc     *chat.Service
	reg     registry.ConnectionRegistry
	metrics *serverMetrics

	sendCh chan protocol.Outbound
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	identity string
}

func newSession(parent context.Context, conn *websocket.Conn, log *zap.Logger, svc *chat.Service, reg registry.ConnectionRegistry, metrics *serverMetrics) *session {
	ctx, cancel := context.WithCancel(parent)
	return &session{
		conn:    conn,
		log:     log,
		svc:     svc,
		reg:     reg,
		metrics: metrics,
		sendCh:  make(chan protocol.Outbound, sendBufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Push queues an event for delivery. Delivery is fire-and-forget: a full
// send buffer disconnects the session rather than blocking the caller.
func (s *session) Push(evt protocol.Outbound) {
	select {
	case <-s.ctx.Done():
	case s.sendCh <- evt:
	default:
		s.log.Warn("session send buffer full; dropping connection", zap.String("identity", s.boundIdentity()))
		s.cancel()
	}
}

// run services the connection until it closes, then tears down presence.
func (s *session) run() {
	s.metrics.incSession()
	defer s.cleanup()

	go s.writer()
	go func() {
		// Cancellation must also unblock the read loop, or a session
		// dropped for backpressure stays registered forever.
		<-s.ctx.Done()
		s.conn.Close()
	}()

	for {
		var evt protocol.Inbound
		if err := s.conn.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("session read failed", zap.Error(err))
			}
			return
		}
		s.dispatch(evt)
	}
}

func (s *session) writer() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case evt := <-s.sendCh:
			if err := s.conn.WriteJSON(evt); err != nil {
				s.log.Debug("session write failed", zap.Error(err), zap.String("identity", s.boundIdentity()))
				s.cancel()
				return
			}
		}
	}
}

// cleanup removes only this identity's registry entry; friends are not
// notified, matching connect also not notifying them.
func (s *session) cleanup() {
	s.cancel()
	if identity := s.boundIdentity(); identity != "" {
		s.reg.Unregister(identity)
		s.log.Info("session disconnected", zap.String("identity", identity))
	}
	s.conn.Close()
	s.metrics.decSession()
}

func (s *session) dispatch(evt protocol.Inbound) {
	start := time.Now()
	err := s.route(evt)
	s.metrics.observeLatency(evt.Type, time.Since(start))
	if err == nil {
		return
	}

	var domainErr *chat.Error
	if errors.As(err, &domainErr) {
		s.metrics.recordError(domainErr.Code)
		eventType := protocol.EventErrorMsg
		if domainErr.Auth {
			eventType = protocol.EventAuthError
		}
		s.Push(protocol.Outbound{
			Type:    eventType,
			Payload: protocol.ErrorMessage{Message: domainErr.Message},
		})
		return
	}

	// Storage and other internal failures abort the operation without a
	// client-visible reply; nothing is retried.
	s.metrics.recordError("internal")
	s.log.Error("event handling failed",
		zap.String("event", evt.Type),
		zap.String("identity", s.boundIdentity()),
		zap.Error(err))
}

func (s *session) route(evt protocol.Inbound) error {
	if evt.Type == protocol.EventAuthenticate {
		var req protocol.Authenticate
		if err := json.Unmarshal(evt.Payload, &req); err != nil {
			return errInvalidEvent
		}
		if err := s.svc.Authenticate(s, req); err != nil {
			return err
		}
		// Re-authentication rebinds the socket; the previous identity's
		// presence entry must not outlive the binding.
		if prev := s.bindIdentity(req.Username); prev != "" && prev != req.Username {
			s.reg.Unregister(prev)
			s.log.Info("session rebound",
				zap.String("previous", prev),
				zap.String("identity", req.Username))
		}
		return nil
	}

	identity := s.boundIdentity()
	if identity == "" {
		return errNotAuthenticated
	}

	switch evt.Type {
	case protocol.EventSendRequest:
		var req protocol.SendRequest
		if err := json.Unmarshal(evt.Payload, &req); err != nil {
			return errInvalidEvent
		}
		return s.svc.SendFriendRequest(identity, req.TargetName)
	case protocol.EventAcceptRequest:
		var req protocol.AcceptRequest
		if err := json.Unmarshal(evt.Payload, &req); err != nil {
			return errInvalidEvent
		}
		return s.svc.AcceptFriendRequest(identity, req.From)
	case protocol.EventGetProfile:
		var req protocol.GetProfile
		if err := json.Unmarshal(evt.Payload, &req); err != nil {
			return errInvalidEvent
		}
		return s.svc.GetProfile(identity, req.Target)
	case protocol.EventUpdateProfile:
		var req protocol.UpdateProfile
		if err := json.Unmarshal(evt.Payload, &req); err != nil {
			return errInvalidEvent
		}
		return s.svc.UpdateProfile(identity, req)
	case protocol.EventChatMessage:
		var req protocol.ChatMessage
		if err := json.Unmarshal(evt.Payload, &req); err != nil {
			return errInvalidEvent
		}
		return s.svc.SendMessage(identity, req)
	case protocol.EventCreateGroup:
		var req protocol.CreateGroup
		if err := json.Unmarshal(evt.Payload, &req); err != nil {
			return errInvalidEvent
		}
		return s.svc.CreateGroup(identity, req.Name)
	case protocol.EventAddMember:
		var req protocol.AddMember
		if err := json.Unmarshal(evt.Payload, &req); err != nil {
			return errInvalidEvent
		}
		return s.svc.AddMember(identity, req.GroupName, req.UserToAdd)
	case protocol.EventGetHistory:
		var req protocol.GetHistory
		if err := json.Unmarshal(evt.Payload, &req); err != nil {
			return errInvalidEvent
		}
		return s.svc.History(identity, req.Other, req.IsGroup)
	default:
		return &chat.Error{Code: "INVALID_EVENT", Message: "unsupported event " + evt.Type}
	}
}

// bindIdentity swaps in the new identity and returns the one it replaced.
func (s *session) bindIdentity(identity string) (previous string) {
	s.mu.Lock()
	previous = s.identity
	s.identity = identity
	s.mu.Unlock()
	return previous
}

func (s *session) boundIdentity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}
