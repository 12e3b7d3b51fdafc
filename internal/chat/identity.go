package chat

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/model"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/protocol"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/registry"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/store"
)

// DefaultAvatar is assigned to every freshly registered user.
const DefaultAvatar = "/uploads/default-avatar.png"

// Authenticate registers or logs in the given credentials and, on success,
// binds conn to the identity in the connection registry, acknowledges with
// auth_success, and pushes the initial presence snapshot and group list.
func (s *Service) Authenticate(conn registry.Conn, req protocol.Authenticate) error {
	if req.IsRegistering {
		if err := s.register(req); err != nil {
			s.recordAuthFailure()
			return err
		}
	} else {
		if err := s.login(req); err != nil {
			s.recordAuthFailure()
			return err
		}
	}

	// A prior handle for the same identity is replaced, never closed.
	s.registry.Register(req.Username, conn)
	conn.Push(protocol.Outbound{
		Type:    protocol.EventAuthSuccess,
		Payload: protocol.AuthSuccess{Username: req.Username},
	})
	s.pushPresence(req.Username)
	s.pushGroupList(req.Username)

	s.log.Info("identity authenticated",
		zap.String("username", req.Username),
		zap.Bool("registered", req.IsRegistering))
	return nil
}

// register creates the user document. Uniqueness is enforced by the store
// inside a serialized transaction, so two simultaneous registrations of
// the same name cannot both win.
func (s *Service) register(req protocol.Authenticate) error {
	digest, err := s.verifier.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.store.CreateUser(model.User{
		Username:     req.Username,
		PasswordHash: digest,
		Email:        req.Email,
		Avatar:       DefaultAvatar,
		Friends:      []string{},
	})
	if errors.Is(err, store.ErrDuplicateKey) {
		return ErrDuplicateIdentity
	}
	return err
}

func (s *Service) login(req protocol.Authenticate) error {
	user, err := s.store.GetUser(req.Username)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if !s.verifier.Verify(req.Password, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	return nil
}

// GetProfile pushes the target's public profile to the requester.
func (s *Service) GetProfile(requester, target string) error {
	user, err := s.store.GetUser(target)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if conn, ok := s.registry.Lookup(requester); ok {
		conn.Push(protocol.Outbound{
			Type: protocol.EventProfileData,
			Payload: protocol.ProfileData{
				Username: user.Username,
				Bio:      user.Bio,
				Avatar:   user.Avatar,
				Email:    user.Email,
			},
		})
	}
	return nil
}

// UpdateProfile applies a partial update to the caller's own document.
// Empty fields in the request are left unchanged.
func (s *Service) UpdateProfile(username string, req protocol.UpdateProfile) error {
	patch := store.ProfilePatch{}
	if req.Bio != "" {
		patch.Bio = &req.Bio
	}
	if req.Avatar != "" {
		patch.Avatar = &req.Avatar
	}
	if req.Email != "" {
		patch.Email = &req.Email
	}

	err := s.store.SetProfile(username, patch)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
