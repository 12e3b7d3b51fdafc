package chat

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/model"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/protocol"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/registry"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/store"
)

// SendMessage persists the message and fans it out. Persistence comes
// first so history never lags behind what was sent; delivery afterwards is
// best-effort and unacknowledged — an offline recipient catches up through
// history.
func (s *Service) SendMessage(sender string, req protocol.ChatMessage) error {
	senderConn, ok := s.registry.Lookup(sender)
	if !ok {
		s.log.Warn("message from unregistered sender dropped", zap.String("sender", sender))
		return nil
	}

	msg := model.Message{
		ID:         s.newID(),
		From:       sender,
		To:         req.To,
		IsGroup:    req.IsGroup,
		Body:       req.Body,
		Attachment: req.Attachment,
		Timestamp:  s.now(),
	}

	if err := s.store.AppendMessage(msg); err != nil {
		return err
	}

	if req.IsGroup {
		s.recordMessage("group")
		return s.fanOutGroup(msg)
	}
	s.recordMessage("direct")
	s.deliverDirect(senderConn, msg)
	return nil
}

// fanOutGroup delivers to every member with a registered connection. A
// missing group delivers to nobody; the message is already persisted.
func (s *Service) fanOutGroup(msg model.Message) error {
	group, err := s.store.GetGroup(msg.To)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	evt := protocol.NewMessage(msg)
	for _, member := range group.Members {
		if conn, ok := s.registry.Lookup(member); ok {
			conn.Push(evt)
			s.recordDelivery()
		}
	}
	return nil
}

// deliverDirect pushes to the recipient if registered and always echoes to
// the sender, so the sender's own view reflects the send.
func (s *Service) deliverDirect(senderConn registry.Conn, msg model.Message) {
	evt := protocol.NewMessage(msg)

	if conn, ok := s.registry.Lookup(msg.To); ok {
		conn.Push(evt)
		s.recordDelivery()
	}
	senderConn.Push(evt)
	s.recordDelivery()
}
