package chat

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/protocol"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/store"
)

// SendFriendRequest delivers a friend-request notification to targetName's
// live connection. Requests are never persisted: an offline target simply
// never sees it, and the sender is told the user was unreachable.
func (s *Service) SendFriendRequest(from, targetName string) error {
	if targetName == from {
		return ErrInvalidTarget
	}

	if _, err := s.store.GetUser(targetName); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	conn, ok := s.registry.Lookup(targetName)
	if !ok {
		return ErrUserNotReachable
	}

	conn.Push(protocol.Outbound{
		Type:    protocol.EventReceiveRequest,
		Payload: protocol.ReceiveRequest{From: from},
	})
	return nil
}

// AcceptFriendRequest adds each party to the other's friend set and then
// refreshes both presence snapshots. The two set-adds are independent,
// idempotent single-document updates; no transaction spans them, so a
// crash between the writes leaves an asymmetric friendship behind.
func (s *Service) AcceptFriendRequest(accepter, requesterName string) error {
	if err := s.store.AddFriend(requesterName, accepter); err != nil {
		return err
	}
	if err := s.store.AddFriend(accepter, requesterName); err != nil {
		s.log.Error("second friend write failed; friendship is one-sided",
			zap.String("accepter", accepter),
			zap.String("requester", requesterName),
			zap.Error(err))
		return err
	}

	s.pushPresence(accepter)
	s.pushPresence(requesterName)
	return nil
}
