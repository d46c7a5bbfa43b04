package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/hypernova-labs/invoice-designer/internal/config"
	"github.com/sirupsen/logrus"
)

// ErrKeyNotFound se retorna cuando la clave no existe en el almacenamiento
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore es el límite de persistencia del diseñador: cada clave guarda
// un documento JSON completo que se lee al iniciar y se reescribe en cada cambio.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// OpenStore crea el almacenamiento indicado en la configuración
func OpenStore(cfg *config.Config, logger *logrus.Logger) (KeyValueStore, error) {
	switch cfg.Storage.Type {
	case config.StorageTypeMemory:
		logger.Warn("Using in-memory storage, designer state will not survive restarts")
		return NewMemoryStore(), nil

	case config.StorageTypeFile:
		store, err := NewFileStore(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.Storage.Path).Info("Using file storage")
		return store, nil

	case config.StorageTypeRedis:
		client, err := ConnectRedis(cfg)
		if err != nil {
			return nil, err
		}
		logger.WithField("addr", cfg.GetRedisAddr()).Info("Using Redis storage")
		return NewRedisStore(client, logger), nil

	case config.StorageTypePostgres:
		db, err := Connect(cfg)
		if err != nil {
			return nil, err
		}
		store, err := NewPostgresStore(db, cfg.Database.Table, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		if err := store.EnsureSchema(context.Background()); err != nil {
			db.Close()
			return nil, err
		}
		logger.WithField("table", cfg.Database.Table).Info("Using PostgreSQL storage")
		return store, nil
	}

	return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
}
