package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/skycast/internal/domain/session"
)

// ValkeyStore persists sessions in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "skycast"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Load(ctx context.Context, clientID string) (session.Session, bool, error) {
	cmd := s.client.B().Get().Key(s.sessionKey(clientID)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, err
	}
	var sess session.Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return session.Session{}, false, err
	}
	return sess, true, nil
}

func (s *ValkeyStore) Save(ctx context.Context, clientID string, sess session.Session, ttl time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.sessionKey(clientID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) Delete(ctx context.Context, clientID string) error {
	return s.client.Do(ctx, s.client.B().Del().Key(s.sessionKey(clientID)).Build()).Error()
}

func (s *ValkeyStore) sessionKey(clientID string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, clientID)
}

var _ session.Store = (*ValkeyStore)(nil)
