// Package container wires the portal components and manages their lifecycle.
package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/rfq-portal/internal/application/dispatcher"
	"github.com/garyjia/rfq-portal/internal/application/port"
	"github.com/garyjia/rfq-portal/internal/application/service"
	"github.com/garyjia/rfq-portal/internal/config"
	"github.com/garyjia/rfq-portal/internal/domain/event"
	"github.com/garyjia/rfq-portal/internal/domain/workflow"
	"github.com/garyjia/rfq-portal/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components start in dependency order and close in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	data    port.DataService
	db      *database.DB
	notices *NoticeBundle
	portal  service.PortalService

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{config: cfg, logger: logger}, nil
}

// Start initializes all components:
// 1. Data service (and the local database for the sqlite driver)
// 2. Event dispatcher and notice feed
// 3. Portal service
// 4. Initial supplier load, when enabled
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization", zap.String("driver", c.config.DataService.Driver))

	data, err := ProvideDataService(ctx, c.config, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize data service: %w", err)
	}
	c.data, c.db = data.Service, data.DB
	c.logger.Info("Data service initialized")

	notices, err := ProvideNotices(c.config.Portal.NoticeBuffer, c.logger)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize dispatcher: %w", err)
	}
	c.notices = notices
	c.logger.Info("Dispatcher and notice feed initialized")

	portal, err := ProvidePortal(&PortalDeps{
		Config:  c.config,
		Data:    c.data,
		Notices: c.notices,
		Logger:  c.logger,
	})
	if err != nil {
		_ = c.notices.Dispatcher.Close()
		c.closeDatabase()
		return fmt.Errorf("failed to initialize portal service: %w", err)
	}
	c.portal = portal
	c.logger.Info("Portal service initialized")

	if c.config.Portal.LoadOnStart {
		state := c.portal.LoadSuppliers(ctx)
		c.logger.Info("Initial supplier load finished",
			zap.String("state", state.SupplierLoad.String()),
			zap.Int("suppliers", len(state.Suppliers)))
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close shuts down components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")
	var errs []error

	if c.notices != nil {
		if err := c.notices.Dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}

	if err := c.closeDatabase(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) closeDatabase() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	if err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
	}
	c.db = nil
	return err
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	mark := func(name string, healthy bool, msg string) {
		status.Components[name] = ComponentHealth{Healthy: healthy, Message: msg}
		if !healthy {
			status.Overall = false
		}
	}

	if c.data != nil {
		mark("data_service", true, c.config.DataService.Driver)
	} else {
		mark("data_service", false, "not initialized")
	}

	if c.config.DataService.Driver == config.DriverSQLite {
		switch {
		case c.db == nil:
			mark("database", false, "not initialized")
		case c.db.Ping() != nil:
			mark("database", false, "ping failed")
		default:
			mark("database", true, "")
		}
	}

	if c.notices != nil {
		subscribers := c.notices.Dispatcher.Handlers(event.TypeNoticeRaised)
		mark("dispatcher", len(subscribers) > 0, fmt.Sprintf("%d notice subscribers", len(subscribers)))
		if dropped := c.notices.Feed.Dropped(); dropped > 0 {
			mark("notice_feed", true, fmt.Sprintf("%d notices dropped unread", dropped))
		} else {
			mark("notice_feed", true, "")
		}
	} else {
		mark("dispatcher", false, "not initialized")
	}

	if c.portal != nil {
		state := c.portal.Snapshot()
		mark("suppliers", state.SupplierLoad != workflow.StateFailed, state.SupplierLoad.String())
	} else {
		mark("suppliers", false, "not initialized")
	}

	return status
}

// Portal returns the portal service.
func (c *Container) Portal() service.PortalService {
	return c.portal
}

// Notices returns the notice feed drained by the API.
func (c *Container) Notices() *service.NoticeFeed {
	if c.notices == nil {
		return nil
	}
	return c.notices.Feed
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	if c.notices == nil {
		return nil
	}
	return c.notices.Dispatcher
}

// DataService returns the configured data service.
func (c *Container) DataService() port.DataService {
	return c.data
}

// Logger returns a key-value logger for the interface layer.
func (c *Container) Logger() *KVLogger {
	return NewKVLogger(c.logger)
}
