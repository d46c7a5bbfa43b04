package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hypernova-labs/invoice-designer/internal/database"
	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/sirupsen/logrus"
)

// Claves de persistencia del estado del diseñador
const (
	CustomizationKey = "invoice-template-config"
	PresetsKey       = "invoice-saved-templates"
)

// StateListener recibe una copia del estado después de cada cambio
type StateListener func(state models.CustomizationState)

// CustomizationStore mantiene la plantilla seleccionada y la personalización activa
type CustomizationStore struct {
	// writeMu serializa mutación, persistencia y notificación
	writeMu sync.Mutex
	mu      sync.RWMutex

	storage  database.KeyValueStore
	key      string
	registry *TemplateRegistry
	notifier Notifier
	logger   *logrus.Logger

	state     models.CustomizationState
	listeners map[int]StateListener
	nextID    int
}

// NewCustomizationStore crea una nueva instancia del store con el estado por defecto.
// keyPrefix se antepone a la clave de persistencia.
func NewCustomizationStore(storage database.KeyValueStore, registry *TemplateRegistry, notifier Notifier, keyPrefix string, logger *logrus.Logger) *CustomizationStore {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &CustomizationStore{
		storage:  storage,
		key:      keyPrefix + CustomizationKey,
		registry: registry,
		notifier: notifier,
		logger:   logger,
		state: models.CustomizationState{
			TemplateID:    registry.DefaultID(),
			Customization: models.DefaultCustomization(),
		},
		listeners: make(map[int]StateListener),
	}
}

// Initialize carga el estado persistido. Un valor ausente o corrupto deja
// los valores por defecto; nunca retorna error al llamador.
func (s *CustomizationStore) Initialize(ctx context.Context) models.CustomizationState {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	state := models.CustomizationState{
		TemplateID:    s.registry.DefaultID(),
		Customization: models.DefaultCustomization(),
	}

	data, err := s.storage.Get(ctx, s.key)
	switch {
	case errors.Is(err, database.ErrKeyNotFound):
		s.logger.WithField("key", s.key).Debug("No persisted customization, using defaults")
	case err != nil:
		s.logger.WithError(err).WithField("key", s.key).Warn("Error reading persisted customization, using defaults")
	default:
		decoded, decodeErr := models.DecodeCustomizationState(data, s.registry.DefaultID())
		if decodeErr != nil {
			s.logger.WithError(decodeErr).WithField("key", s.key).Warn("Corrupt persisted customization, using defaults")
		} else {
			state = decoded
		}
	}

	s.mu.Lock()
	s.state = state
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	s.emit(snapshot, listeners)
	return snapshot
}

// Snapshot retorna una copia del estado actual
func (s *CustomizationStore) Snapshot() models.CustomizationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Update aplica un patch sobre una única sección. Las demás secciones no cambian.
func (s *CustomizationStore) Update(ctx context.Context, patch models.Patch) (models.CustomizationState, error) {
	if patch == nil {
		return s.Snapshot(), fmt.Errorf("%w: empty patch", models.ErrInvalidPatch)
	}
	if details := patch.Validate(); len(details) > 0 {
		return s.Snapshot(), fmt.Errorf("%w: %s %s", models.ErrInvalidPatch, details[0].Field, details[0].Issue)
	}

	return s.mutate(ctx, func(state *models.CustomizationState) {
		state.Customization = state.Customization.Apply(patch)
	})
}

// Reset restaura la personalización por defecto; la plantilla seleccionada se conserva
func (s *CustomizationStore) Reset(ctx context.Context) (models.CustomizationState, error) {
	state, err := s.mutate(ctx, func(state *models.CustomizationState) {
		state.Customization = models.DefaultCustomization()
	})
	if err != nil {
		return state, err
	}

	s.notifier.Notify(ctx, models.Notification{
		Level:   models.NotificationInfo,
		Action:  models.ActionCustomizationReset,
		Message: "Customization reset to defaults",
	})

	return state, nil
}

// SelectTemplate cambia la plantilla activa. Un ID desconocido se almacena
// tal cual; el renderer lo resuelve a la plantilla por defecto.
func (s *CustomizationStore) SelectTemplate(ctx context.Context, templateID string) (models.CustomizationState, error) {
	return s.mutate(ctx, func(state *models.CustomizationState) {
		state.TemplateID = templateID
	})
}

// Replace sustituye plantilla y personalización a la vez (carga de presets)
func (s *CustomizationStore) Replace(ctx context.Context, templateID string, customization models.Customization) (models.CustomizationState, error) {
	return s.mutate(ctx, func(state *models.CustomizationState) {
		state.TemplateID = templateID
		state.Customization = customization.Clone()
	})
}

// Subscribe registra un listener que se ejecuta de forma síncrona después
// de cada cambio. Los listeners no deben mutar el store.
func (s *CustomizationStore) Subscribe(listener StateListener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *CustomizationStore) mutate(ctx context.Context, fn func(state *models.CustomizationState)) (models.CustomizationState, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	fn(&s.state)
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	err := s.persist(ctx, snapshot)
	s.emit(snapshot, listeners)

	return snapshot, err
}

func (s *CustomizationStore) snapshotLocked() (models.CustomizationState, []StateListener) {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	listeners := make([]StateListener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	return s.state.Clone(), listeners
}

func (s *CustomizationStore) emit(state models.CustomizationState, listeners []StateListener) {
	for _, listener := range listeners {
		listener(state.Clone())
	}
}

// persist escribe el estado; el cambio en memoria se conserva aunque falle
func (s *CustomizationStore) persist(ctx context.Context, state models.CustomizationState) error {
	data, err := json.Marshal(state)
	if err == nil {
		err = s.storage.Set(ctx, s.key, data)
	}
	if err != nil {
		s.logger.WithError(err).WithField("key", s.key).Error("Error persisting customization")
		s.notifier.Notify(ctx, models.Notification{
			Level:   models.NotificationError,
			Action:  models.ActionCustomizationFailed,
			Message: "Could not save customization",
			Fields:  map[string]string{"error": err.Error()},
		})
		return fmt.Errorf("error persisting customization: %w", err)
	}
	return nil
}
