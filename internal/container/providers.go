package container

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/rfq-portal/internal/application/dispatcher"
	"github.com/garyjia/rfq-portal/internal/application/port"
	"github.com/garyjia/rfq-portal/internal/application/service"
	"github.com/garyjia/rfq-portal/internal/config"
	"github.com/garyjia/rfq-portal/internal/domain/deadline"
	"github.com/garyjia/rfq-portal/internal/domain/event"
	"github.com/garyjia/rfq-portal/internal/infrastructure/dataservice"
	"github.com/garyjia/rfq-portal/internal/infrastructure/export"
	"github.com/garyjia/rfq-portal/pkg/database"
)

// DataBundle holds the data service and, for the sqlite driver, its database.
type DataBundle struct {
	Service port.DataService
	DB      *database.DB
}

// ProvideDataService builds the data service selected by cfg.DataService.Driver.
// The sqlite driver opens the database, applies migrations and optional fixtures.
func ProvideDataService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*DataBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	switch cfg.DataService.Driver {
	case config.DriverSOAP:
		client := dataservice.NewSOAPClient(dataservice.SOAPConfig{
			URL:       cfg.DataService.ClientURL,
			Namespace: cfg.DataService.SOAPNamespace,
			Timeout:   cfg.DataService.Timeout,
		}, nil, logger.Named("soap"))
		return &DataBundle{Service: client}, nil

	case config.DriverSQLite:
		db, err := database.New(database.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}, logger)
		if err != nil {
			return nil, err
		}

		if err := database.NewMigrator(db, logger).RunMigrations(ctx, cfg.Database.MigrationsDir); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		source := dataservice.NewSQLiteSource(db, logger.Named("sqlite"))
		if cfg.Database.FixturesPath != "" {
			if err := source.LoadFixtures(ctx, cfg.Database.FixturesPath); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("failed to load fixtures: %w", err)
			}
		}
		return &DataBundle{Service: source, DB: db}, nil

	default:
		return nil, fmt.Errorf("unknown data service driver %q", cfg.DataService.Driver)
	}
}

// NoticeBundle holds the dispatcher and the notice feed subscribed to it.
type NoticeBundle struct {
	Dispatcher dispatcher.Dispatcher
	Feed       *service.NoticeFeed
	Notifier   port.Notifier
}

// ProvideNotices creates the dispatcher, attaches the notice feed and logs
// every load outcome.
func ProvideNotices(bufferSize int, logger *zap.Logger) (*NoticeBundle, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	kv := NewKVLogger(logger.Named("events"))
	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(kv))

	feed := service.NewNoticeFeed(bufferSize)
	feed.Attach(disp)

	logSub := service.LogSubscriber(kv)
	for _, t := range []event.Type{
		event.TypeNoticeRaised,
		event.TypeSuppliersLoaded,
		event.TypeQuotationsLoaded,
		event.TypeLoadFailed,
		event.TypeSelectionChanged,
		event.TypeResponseDiscarded,
	} {
		disp.Subscribe(t, "event-log", logSub)
	}

	return &NoticeBundle{
		Dispatcher: disp,
		Feed:       feed,
		Notifier:   service.NewEventNotifier(disp, kv),
	}, nil
}

// PortalDeps holds dependencies for the portal service.
type PortalDeps struct {
	Config  *config.Config
	Data    port.DataService
	Notices *NoticeBundle
	Logger  *zap.Logger
}

// ProvidePortal creates the portal service with the configured timezone,
// date layout and Excel exporter.
func ProvidePortal(deps *PortalDeps) (service.PortalService, error) {
	if deps == nil || deps.Config == nil || deps.Data == nil || deps.Notices == nil || deps.Logger == nil {
		return nil, fmt.Errorf("portal dependencies are incomplete")
	}

	loc, err := deps.Config.Portal.Location()
	if err != nil {
		return nil, err
	}

	classifier := deadline.NewClassifier(deadline.WithLocation(loc))
	exporter := export.NewExcelExporter(deps.Logger.Named("export"))

	ds := deps.Config.DataService
	return service.NewPortalService(
		deps.Data,
		deps.Notices.Notifier,
		deps.Notices.Dispatcher,
		classifier,
		exporter,
		service.PortalConfig{
			SupplierModel:  ds.SupplierModel,
			QuotationModel: ds.QuotationModel,
			VendorColumn:   strings.TrimSpace(ds.VendorColumn),
			DateLayout:     deps.Config.Portal.DateLayout,
		},
		NewKVLogger(deps.Logger.Named("portal")),
	), nil
}
