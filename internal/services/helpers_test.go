package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/hypernova-labs/invoice-designer/internal/database"
	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/sirupsen/logrus"
)

var errStorageDown = errors.New("storage down")

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// flakyStore envuelve un MemoryStore y puede fallar en escrituras
type flakyStore struct {
	*database.MemoryStore
	failSet bool
	sets    int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: database.NewMemoryStore()}
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	f.sets++
	if f.failSet {
		return errStorageDown
	}
	return f.MemoryStore.Set(ctx, key, value)
}

// recordingNotifier guarda las notificaciones recibidas
type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Action)
	}
	return out
}

func newTestStore(storage database.KeyValueStore, notifier Notifier) *CustomizationStore {
	return NewCustomizationStore(storage, NewTemplateRegistry(), notifier, "", testLogger())
}
