package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/imagen-studio/internal/model"
)

type memStore struct {
	saved []model.ActivityLog
	err   error
}

func (m *memStore) Create(_ context.Context, a *model.ActivityLog) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, *a)
	return nil
}

func TestHandleMessagePersistsEvent(t *testing.T) {
	store := &memStore{}
	c := NewConsumer("amqp://unused", "admin.activity", store, nil)

	target := uint64(9)
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	body, err := json.Marshal(ActivityEvent{
		AdminID: 1, AdminEmail: "root@example.com", Action: model.ActionAddCredits,
		TargetUserID: &target, TargetName: "Bob", Details: "Added 10 credits", OccurredAt: at,
	})
	require.NoError(t, err)

	require.NoError(t, c.handleMessage(context.Background(), body))
	require.Len(t, store.saved, 1)
	got := store.saved[0]
	assert.Equal(t, model.ActionAddCredits, got.Action)
	assert.Equal(t, uint64(9), *got.TargetUserID)
	assert.Equal(t, at, got.CreatedAt)
}

func TestHandleMessageRejectsBadPayloads(t *testing.T) {
	c := NewConsumer("amqp://unused", "q", &memStore{}, nil)
	assert.Error(t, c.handleMessage(context.Background(), []byte("{not json")))
	assert.Error(t, c.handleMessage(context.Background(), []byte(`{"admin_id":1}`)))
}

func TestHandleMessageSurfacesStoreError(t *testing.T) {
	boom := errors.New("db down")
	c := NewConsumer("amqp://unused", "q", &memStore{err: boom}, nil)
	err := c.handleMessage(context.Background(), []byte(`{"admin_id":1,"action":"delete_user"}`))
	assert.ErrorIs(t, err, boom)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewConsumer("amqp://127.0.0.1:1/", "q", &memStore{}, nil)
	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
}
