package chat

import (
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/model"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/protocol"
)

// History pushes the full persisted conversation between the requester and
// other (a username, or a group name when isGroup is set) to the
// requester, ascending by timestamp. There is no upper bound and no
// pagination; every call returns the whole conversation.
func (s *Service) History(requester, other string, isGroup bool) error {
	var (
		msgs []model.Message
		err  error
	)
	if isGroup {
		msgs, err = s.store.GroupHistory(other)
	} else {
		msgs, err = s.store.DirectHistory(requester, other)
	}
	if err != nil {
		return err
	}

	if conn, ok := s.registry.Lookup(requester); ok {
		conn.Push(protocol.NewHistory(msgs))
	}
	return nil
}
