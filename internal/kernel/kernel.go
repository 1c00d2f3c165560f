// Package kernel wires configuration, infrastructure and application services
// into a runnable app.Application.
package kernel

import (
	"context"
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/controllers"
	"github.com/nuber-eats/nuber/app/routes"
	"github.com/nuber-eats/nuber/app/schema"
	"github.com/nuber-eats/nuber/app/services"
	"github.com/nuber-eats/nuber/config"
	"github.com/nuber-eats/nuber/pkg/app"
	"github.com/nuber-eats/nuber/pkg/auth"
	"github.com/nuber-eats/nuber/pkg/cache"
	"github.com/nuber-eats/nuber/pkg/database"
	"github.com/nuber-eats/nuber/pkg/logger"
	"github.com/nuber-eats/nuber/pkg/mail"
	"github.com/nuber-eats/nuber/pkg/middleware"
	"github.com/nuber-eats/nuber/pkg/migration"
	"github.com/nuber-eats/nuber/pkg/rbac"
	"github.com/nuber-eats/nuber/pkg/router"
	"github.com/nuber-eats/nuber/pkg/schedule"
	"github.com/nuber-eats/nuber/pkg/storage"
	"github.com/nuber-eats/nuber/pkg/ws"
)

// Kernel is a booted application and the pieces the CLI inspects.
type Kernel struct {
	App       *app.Application
	Scheduler *schedule.Scheduler
	Registry  *rbac.Registry
}

// Boot connects every backing service and builds the application. Optional
// backends (Mongo log sink, Redis) only warn when unreachable.
func Boot(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	if err := logger.AttachMongo(); err != nil {
		logger.Warn("kernel: mongo log sink disabled", "error", err)
	}

	if err := database.Connect(); err != nil {
		return nil, err
	}
	if config.Get("DB_AUTO_MIGRATE", "true") == "true" {
		if _, err := migration.New(database.DB, io.Discard).Run(); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("kernel: migrate: %w", err)
		}
	}

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("kernel: cache disabled", "error", err)
		cache.Use(nil)
	}

	disks, err := storage.FromConfig(ctx)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	ws.SetCheckOrigin(middleware.CORSFromConfig().CheckOrigin)

	mailer := mail.NewDispatcher(mail.FromConfig(), 2)
	hub := ws.NewHub()

	k, err := assemble(database.DB, mailer, hub, disks)
	if err != nil {
		mailer.Close()
		_ = database.Close()
		return nil, err
	}

	k.App.
		Worker("ws", hub.Run).
		Worker("scheduler", k.Scheduler.Start).
		OnShutdown(func(context.Context) error { logger.Close(); return nil }).
		OnShutdown(func(context.Context) error { return database.Close() }).
		OnShutdown(func(context.Context) error { mailer.Close(); return nil })

	return k, nil
}

// assemble builds services, the schema, the scheduler and the routes on top
// of already-open backends.
func assemble(db *gorm.DB, mailer services.Mailer, hub *ws.Hub, disks *storage.Manager) (*Kernel, error) {
	users := services.NewUsersService(db, mailer)
	var publisher services.Publisher
	if hub != nil {
		publisher = hub
	}

	gqlSchema, registry, err := schema.New(schema.Services{
		Users:       users,
		Restaurants: services.NewRestaurantService(db),
		Orders:      services.NewOrderService(db, publisher),
		Payments:    services.NewPaymentService(db, config.PromotionPeriod()),
	})
	if err != nil {
		return nil, fmt.Errorf("kernel: build schema: %w", err)
	}

	sched := schedule.New()
	sweeper := services.NewPromotionSweeper(db)
	sched.Interval(config.PromotionSweepInterval()).
		Name("promotions:expire").
		WithoutOverlapping().
		Run(sweeper.Run)

	deps := routes.Deps{
		Schema:  &gqlSchema,
		Hub:     hub,
		Storage: disks,
		Health:  controllers.NewHealthController(db),
	}

	a := app.New().
		Use(middleware.Identify(auth.NewResolver(users.Accounts()))).
		Routes(func(r *router.Router) { routes.Register(r, deps) })

	return &Kernel{App: a, Scheduler: sched, Registry: registry}, nil
}

// Describe builds the application without connecting to anything, for
// route:list and policy:list.
func Describe() (*Kernel, error) {
	disks := storage.NewManager("local")
	local, err := storage.NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	if err != nil {
		return nil, err
	}
	disks.Register("local", local)
	return assemble(nil, nil, ws.NewHub(), disks)
}
