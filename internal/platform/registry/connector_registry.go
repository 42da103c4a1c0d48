// internal/platform/registry/connector_registry.go
package registry

import (
	"fmt"
	"sort"
	"sync"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/logx"
)

// ConnectorRegistry gestiona el registro y construcción de conectores.
// Implementa el patrón Registry + Factory: cada paquete de fuente se registra
// desde init() y la aplicación construye solo los habilitados.
type ConnectorRegistry struct {
	mu        sync.RWMutex
	factories map[domain.ArchiveSource]ConnectorFactory
	metadata  map[domain.ArchiveSource]ports.ConnectorMetadata
	logger    logx.Logger
}

// ConnectorFactory crea una instancia de Connector.
type ConnectorFactory func(cfg ports.ConnectorConfig, logger logx.Logger) (ports.Connector, error)

var (
	globalRegistry *ConnectorRegistry
	once           sync.Once
)

// Global retorna la instancia global del registry.
func Global() *ConnectorRegistry {
	once.Do(func() {
		globalRegistry = NewConnectorRegistry(logx.NewSilent())
	})
	return globalRegistry
}

// NewConnectorRegistry crea un registry vacío.
func NewConnectorRegistry(logger logx.Logger) *ConnectorRegistry {
	return &ConnectorRegistry{
		factories: make(map[domain.ArchiveSource]ConnectorFactory),
		metadata:  make(map[domain.ArchiveSource]ports.ConnectorMetadata),
		logger:    logger.With("component", "connector-registry"),
	}
}

// Register registra una factory con su metadata.
// Típicamente llamado desde init() de cada paquete de fuente.
func (r *ConnectorRegistry) Register(name domain.ArchiveSource, factory ConnectorFactory, meta ports.ConnectorMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !name.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownSource, name)
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil for connector %s", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("connector %s is already registered", name)
	}

	meta.Name = name
	r.factories[name] = factory
	r.metadata[name] = meta
	r.logger.Debug("connector registered", "name", name, "domain_keyed", meta.DomainKeyed)

	return nil
}

// MustRegister es Register para init(); hace panic ante un registro inválido.
func (r *ConnectorRegistry) MustRegister(name domain.ArchiveSource, factory ConnectorFactory, meta ports.ConnectorMetadata) {
	if err := r.Register(name, factory, meta); err != nil {
		panic(err)
	}
}

// Build construye los conectores habilitados en enabled, en orden canónico.
// Fuentes sin config usan ports.DefaultConnectorConfig. Una factory que falla
// se omite y se reporta en el error agregado; los demás conectores se retornan igual.
func (r *ConnectorRegistry) Build(enabled domain.SourceSet, configs map[domain.ArchiveSource]ports.ConnectorConfig, logger logx.Logger) ([]ports.Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	connectors := make([]ports.Connector, 0, len(enabled))
	var errs []error

	for _, name := range enabled.Ordered() {
		factory, ok := r.factories[name]
		if !ok {
			r.logger.Warn("connector not registered, skipping", "source", name)
			errs = append(errs, fmt.Errorf("connector %s not registered", name))
			continue
		}

		cfg, ok := configs[name]
		if !ok {
			cfg = ports.DefaultConnectorConfig()
		}
		if !cfg.Enabled {
			continue
		}

		c, err := factory(cfg, logger)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to build connector %s: %w", name, err))
			continue
		}
		connectors = append(connectors, c)
		r.logger.Debug("connector built", "name", name)
	}

	for _, err := range errs {
		r.logger.Warn("connector build error", "error", err.Error())
	}

	if len(errs) > 0 {
		return connectors, errors.Join(errs...)
	}
	return connectors, nil
}

// List retorna las fuentes registradas en orden canónico.
func (r *ConnectorRegistry) List() []domain.ArchiveSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]domain.ArchiveSource, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Order() < names[j].Order() })
	return names
}

// GetMetadata retorna el metadata de un conector.
func (r *ConnectorRegistry) GetMetadata(name domain.ArchiveSource) (ports.ConnectorMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, exists := r.metadata[name]
	return meta, exists
}

// IsRegistered verifica si un conector está registrado.
func (r *ConnectorRegistry) IsRegistered(name domain.ArchiveSource) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

// Clear elimina todos los registros (útil para testing).
func (r *ConnectorRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories = make(map[domain.ArchiveSource]ConnectorFactory)
	r.metadata = make(map[domain.ArchiveSource]ports.ConnectorMetadata)
}
