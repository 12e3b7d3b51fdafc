package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	bolt "go.etcd.io/bbolt"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/model"
)

var (
	bucketUsers    = []byte("users")
	bucketGroups   = []byte("groups")
	bucketMessages = []byte("messages")
)

// BoltStore implements Store on a single bbolt file. Update transactions
// are serialized by bbolt, which makes uniqueness checks authoritative and
// set-adds atomic without any multi-document coordination.
type BoltStore struct {
	db *bolt.DB
}

// userDoc is the stored shape of a User; the password hash is persisted
// here but never serialized outward by model.User.
type userDoc struct {
	Username     string   `json:"username"`
	PasswordHash string   `json:"passwordHash"`
	Email        string   `json:"email,omitempty"`
	Avatar       string   `json:"avatar,omitempty"`
	Bio          string   `json:"bio,omitempty"`
	Friends      []string `json:"friends"`
}

// OpenBolt opens (creating if necessary) the store file at path.
func OpenBolt(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketUsers, bucketGroups, bucketMessages} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// CreateUser inserts a user document, failing on an existing username.
func (s *BoltStore) CreateUser(user model.User) error {
	doc := userDoc{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Email:        user.Email,
		Avatar:       user.Avatar,
		Bio:          user.Bio,
		Friends:      user.Friends,
	}
	if doc.Friends == nil {
		doc.Friends = []string{}
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		key := []byte(user.Username)
		if b.Get(key) != nil {
			return ErrDuplicateKey
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return b.Put(key, raw)
	})
}

// GetUser fetches a user by username.
func (s *BoltStore) GetUser(username string) (model.User, error) {
	var doc userDoc
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketUsers).Get([]byte(username))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, &doc)
	})
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
		Email:        doc.Email,
		Avatar:       doc.Avatar,
		Bio:          doc.Bio,
		Friends:      doc.Friends,
	}, nil
}

// SetProfile applies a partial update to a user document.
func (s *BoltStore) SetProfile(username string, patch ProfilePatch) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		key := []byte(username)
		raw := b.Get(key)
		if raw == nil {
			return ErrNotFound
		}
		var doc userDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		if patch.Bio != nil {
			doc.Bio = *patch.Bio
		}
		if patch.Avatar != nil {
			doc.Avatar = *patch.Avatar
		}
		if patch.Email != nil {
			doc.Email = *patch.Email
		}
		updated, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return b.Put(key, updated)
	})
}

// AddFriend adds friend to username's friend set. A missing username
// matches no document and the update is a silent no-op.
func (s *BoltStore) AddFriend(username, friend string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		key := []byte(username)
		raw := b.Get(key)
		if raw == nil {
			return nil
		}
		var doc userDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		for _, f := range doc.Friends {
			if f == friend {
				return nil
			}
		}
		doc.Friends = append(doc.Friends, friend)
		updated, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return b.Put(key, updated)
	})
}

// CreateGroup inserts a group document, failing on an existing name.
func (s *BoltStore) CreateGroup(group model.Group) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketGroups)
		key := []byte(group.Name)
		if b.Get(key) != nil {
			return ErrDuplicateKey
		}
		raw, err := json.Marshal(group)
		if err != nil {
			return err
		}
		return b.Put(key, raw)
	})
}

// GetGroup fetches a group by name.
func (s *BoltStore) GetGroup(name string) (model.Group, error) {
	var group model.Group
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketGroups).Get([]byte(name))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, &group)
	})
	if err != nil {
		return model.Group{}, err
	}
	return group, nil
}

// AddGroupMember adds member to the group's member set, idempotently. A
// missing group is a silent no-op.
func (s *BoltStore) AddGroupMember(name, member string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketGroups)
		key := []byte(name)
		raw := b.Get(key)
		if raw == nil {
			return nil
		}
		var group model.Group
		if err := json.Unmarshal(raw, &group); err != nil {
			return err
		}
		if group.HasMember(member) {
			return nil
		}
		group.Members = append(group.Members, member)
		updated, err := json.Marshal(group)
		if err != nil {
			return err
		}
		return b.Put(key, updated)
	})
}

// GroupsFor lists every group containing username as a member.
func (s *BoltStore) GroupsFor(username string) ([]model.Group, error) {
	groups := []model.Group{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketGroups).ForEach(func(_, raw []byte) error {
			var group model.Group
			if err := json.Unmarshal(raw, &group); err != nil {
				return err
			}
			if group.HasMember(username) {
				groups = append(groups, group)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// AppendMessage persists one message under a monotonic sequence key.
func (s *BoltStore) AppendMessage(msg model.Message) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessages)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		raw, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		return b.Put(key, raw)
	})
}

// GroupHistory returns all messages targeting the group, ascending by
// timestamp. The scan is unbounded; the full conversation is returned.
func (s *BoltStore) GroupHistory(name string) ([]model.Message, error) {
	return s.scanMessages(func(m *model.Message) bool {
		return m.IsGroup && m.To == name
	})
}

// DirectHistory returns the messages between a and b in either direction,
// ascending by timestamp.
func (s *BoltStore) DirectHistory(a, b string) ([]model.Message, error) {
	return s.scanMessages(func(m *model.Message) bool {
		if m.IsGroup {
			return false
		}
		return (m.From == a && m.To == b) || (m.From == b && m.To == a)
	})
}

func (s *BoltStore) scanMessages(match func(*model.Message) bool) ([]model.Message, error) {
	msgs := []model.Message{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMessages).ForEach(func(_, raw []byte) error {
			var msg model.Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				return err
			}
			if match(&msg) {
				msgs = append(msgs, msg)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	// Keys preserve insertion order already; the sort keeps the contract
	// explicit for messages sharing a timestamp.
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}
