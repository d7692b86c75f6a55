package viewstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
)

// ValkeyStore persists session views in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "dashboard"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) SaveView(ctx context.Context, view dashboard.StoredView, ttl time.Duration) error {
	if view.SessionID == "" {
		return nil
	}
	payload, err := json.Marshal(view)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.viewKey(view.SessionID)).Value(string(payload))
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

func (s *ValkeyStore) GetView(ctx context.Context, sessionID string) (dashboard.StoredView, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.viewKey(sessionID)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return dashboard.StoredView{}, false, nil
		}
		return dashboard.StoredView{}, false, err
	}
	var view dashboard.StoredView
	if err := json.Unmarshal([]byte(payload), &view); err != nil {
		return dashboard.StoredView{}, false, err
	}
	return view, true, nil
}

func (s *ValkeyStore) DeleteView(ctx context.Context, sessionID string) error {
	return s.client.Do(ctx, s.client.B().Del().Key(s.viewKey(sessionID)).Build()).Error()
}

func (s *ValkeyStore) viewKey(sessionID string) string {
	return fmt.Sprintf("%s:view:%s", s.prefix, sessionID)
}

var _ dashboard.ViewStore = (*ValkeyStore)(nil)
