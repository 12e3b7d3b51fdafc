package chat

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/model"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/store"
)

// CreateGroup creates a group with the creator as admin and sole member,
// then pushes the creator's refreshed group list.
func (s *Service) CreateGroup(creator, name string) error {
	err := s.store.CreateGroup(model.Group{
		Name:    name,
		Admin:   creator,
		Members: []string{creator},
	})
	if errors.Is(err, store.ErrDuplicateKey) {
		return ErrNameTaken
	}
	if err != nil {
		return err
	}

	s.pushGroupList(creator)
	return nil
}

// AddMember adds newMember to the group if the requester is its admin. A
// request from anyone else is dropped without a reply; the requester is
// never told the call was ignored.
func (s *Service) AddMember(requester, groupName, newMember string) error {
	group, err := s.store.GetGroup(groupName)
	if errors.Is(err, store.ErrNotFound) {
		return ErrGroupNotFound
	}
	if err != nil {
		return err
	}

	if requester != group.Admin {
		s.log.Debug("non-admin membership change dropped",
			zap.String("group", groupName),
			zap.String("requester", requester))
		return nil
	}

	if err := s.store.AddGroupMember(groupName, newMember); err != nil {
		return err
	}

	if _, ok := s.registry.Lookup(newMember); ok {
		s.pushGroupList(newMember)
	}
	return nil
}
