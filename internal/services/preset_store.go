package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/invoice-designer/internal/database"
	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrPresetNameRequired se retorna al guardar un preset sin nombre
var ErrPresetNameRequired = errors.New("preset name is required")

// PresetStore mantiene la lista de presets guardados por el usuario
type PresetStore struct {
	mu sync.Mutex

	storage  database.KeyValueStore
	key      string
	live     *CustomizationStore
	notifier Notifier
	logger   *logrus.Logger

	now   func() time.Time
	newID func() string

	presets []models.SavedTemplate
}

// PresetStoreOption configura un PresetStore
type PresetStoreOption func(*PresetStore)

// WithClock reemplaza el reloj usado para lastModified
func WithClock(now func() time.Time) PresetStoreOption {
	return func(s *PresetStore) { s.now = now }
}

// WithIDGenerator reemplaza el generador de IDs de presets
func WithIDGenerator(newID func() string) PresetStoreOption {
	return func(s *PresetStore) { s.newID = newID }
}

// NewPresetStore crea una nueva instancia del store de presets
func NewPresetStore(storage database.KeyValueStore, live *CustomizationStore, notifier Notifier, keyPrefix string, logger *logrus.Logger, opts ...PresetStoreOption) *PresetStore {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	s := &PresetStore{
		storage:  storage,
		key:      keyPrefix + PresetsKey,
		live:     live,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		presets:  []models.SavedTemplate{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize carga la lista persistida; ausente o corrupta resulta en lista vacía
func (s *PresetStore) Initialize(ctx context.Context) []models.SavedTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.presets = []models.SavedTemplate{}

	data, err := s.storage.Get(ctx, s.key)
	switch {
	case errors.Is(err, database.ErrKeyNotFound):
		s.logger.WithField("key", s.key).Debug("No persisted presets")
	case err != nil:
		s.logger.WithError(err).WithField("key", s.key).Warn("Error reading persisted presets, starting empty")
	default:
		var presets []models.SavedTemplate
		if err := json.Unmarshal(data, &presets); err != nil {
			s.logger.WithError(err).WithField("key", s.key).Warn("Corrupt persisted presets, starting empty")
		} else if presets != nil {
			s.presets = presets
		}
	}

	return clonePresets(s.presets)
}

// List retorna los presets, el más reciente primero
func (s *PresetStore) List() []models.SavedTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePresets(s.presets)
}

// Get obtiene un preset por ID
func (s *PresetStore) Get(id string) (models.SavedTemplate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return s.presets[i].Clone(), true
	}
	return models.SavedTemplate{}, false
}

// Save guarda la plantilla y personalización activas bajo un nombre nuevo.
// Si la persistencia falla, el preset queda en memoria y se retorna el error.
func (s *PresetStore) Save(ctx context.Context, name string) (models.SavedTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.SavedTemplate{}, ErrPresetNameRequired
	}

	live := s.live.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	preset := models.SavedTemplate{
		ID:            s.newID(),
		Name:          name,
		TemplateID:    live.TemplateID,
		Customization: live.Customization.Clone(),
		LastModified:  s.now(),
	}
	s.presets = append([]models.SavedTemplate{preset}, s.presets...)

	if err := s.persistLocked(ctx); err != nil {
		return preset.Clone(), err
	}

	s.logger.WithFields(logrus.Fields{
		"preset_id":   preset.ID,
		"name":        preset.Name,
		"template_id": preset.TemplateID,
	}).Info("Preset saved")

	s.notifier.Notify(ctx, models.Notification{
		Level:   models.NotificationSuccess,
		Action:  models.ActionPresetSaved,
		Message: fmt.Sprintf("Template %q saved", preset.Name),
		Fields:  map[string]string{"presetId": preset.ID},
	})

	return preset.Clone(), nil
}

// Load aplica un preset sobre el store activo. Retorna false si el ID no existe.
func (s *PresetStore) Load(ctx context.Context, id string) (bool, error) {
	preset, ok := s.Get(id)
	if !ok {
		return false, nil
	}

	if _, err := s.live.Replace(ctx, preset.TemplateID, preset.Customization); err != nil {
		return true, fmt.Errorf("error loading preset %s: %w", id, err)
	}

	s.notifier.Notify(ctx, models.Notification{
		Level:   models.NotificationSuccess,
		Action:  models.ActionPresetLoaded,
		Message: fmt.Sprintf("Template %q loaded", preset.Name),
		Fields:  map[string]string{"presetId": preset.ID},
	})

	return true, nil
}

// Delete elimina un preset. Un ID desconocido no modifica nada y retorna false.
func (s *PresetStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	name := s.presets[i].Name
	s.presets = append(s.presets[:i:i], s.presets[i+1:]...)

	if err := s.persistLocked(ctx); err != nil {
		return true, err
	}

	s.notifier.Notify(ctx, models.Notification{
		Level:   models.NotificationSuccess,
		Action:  models.ActionPresetDeleted,
		Message: fmt.Sprintf("Template %q deleted", name),
		Fields:  map[string]string{"presetId": id},
	})

	return true, nil
}

func (s *PresetStore) indexOf(id string) int {
	for i := range s.presets {
		if s.presets[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *PresetStore) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.presets)
	if err == nil {
		err = s.storage.Set(ctx, s.key, data)
	}
	if err != nil {
		s.logger.WithError(err).WithField("key", s.key).Error("Error persisting presets")
		s.notifier.Notify(ctx, models.Notification{
			Level:   models.NotificationError,
			Action:  models.ActionPresetsFailed,
			Message: "Could not save templates",
			Fields:  map[string]string{"error": err.Error()},
		})
		return fmt.Errorf("error persisting presets: %w", err)
	}
	return nil
}

func clonePresets(in []models.SavedTemplate) []models.SavedTemplate {
	out := make([]models.SavedTemplate, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
