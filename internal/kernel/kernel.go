// Package kernel builds the application graph: connections, services and
// the HTTP handler. Everything is constructed once and injected; nothing
// below this package reaches for a global connection.
package kernel

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/reflaxess123/obedi/app/events"
	"github.com/reflaxess123/obedi/app/jobs"
	"github.com/reflaxess123/obedi/app/repositories"
	"github.com/reflaxess123/obedi/app/services"
	"github.com/reflaxess123/obedi/config"
	"github.com/reflaxess123/obedi/pkg/auth"
	"github.com/reflaxess123/obedi/pkg/cache"
	"github.com/reflaxess123/obedi/pkg/database"
	"github.com/reflaxess123/obedi/pkg/event"
	"github.com/reflaxess123/obedi/pkg/logger"
	"github.com/reflaxess123/obedi/pkg/metrics"
	"github.com/reflaxess123/obedi/pkg/queue"
	"github.com/reflaxess123/obedi/pkg/storage"
)

// Deps are the external resources the kernel is built from.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client // optional
	Disk   storage.Disk
	Tokens *auth.Tokens
	Google auth.GoogleVerifier
	Queue  queue.Driver // defaults to an in-memory driver
}

// Kernel is the wired application.
type Kernel struct {
	DB      *gorm.DB
	Disk    storage.Disk
	Gateway *storage.Gateway
	Queue   *queue.Manager
	Bus     *event.Bus
	Tokens  *auth.Tokens

	Users   *services.UserService
	Auth    *services.AuthService
	Lunches *services.LunchService
	Orders  *services.OrderService
	Sweeper *services.StorageSweeper

	// QueueIsLocal is true when jobs live in this process only.
	QueueIsLocal bool

	closers []func()
}

// New wires services around d.
func New(d Deps) *Kernel {
	k := &Kernel{DB: d.DB, Disk: d.Disk, Tokens: d.Tokens}

	driver := d.Queue
	if driver == nil {
		driver = queue.NewMemoryDriver()
		k.QueueIsLocal = true
	}
	k.Queue = queue.New(driver, queue.WithFailedJobsDB(d.DB), queue.WithBackoff(2*time.Second))
	k.Queue.OnProcessed = metrics.RecordQueueJob

	k.Gateway = storage.NewGateway(d.Disk)
	jobs.Register(k.Queue, k.Gateway)

	k.Bus = event.New()
	events.Register(k.Bus)

	userRepo := repositories.NewUserRepository(d.DB)
	lunchRepo := repositories.NewLunchRepository(d.DB)
	orderRepo := repositories.NewOrderRepository(d.DB)

	k.Users = services.NewUserService(userRepo)
	k.Auth = services.NewAuthService(k.Users, d.Tokens, d.Google)
	k.Lunches = services.NewLunchService(lunchRepo, k.Gateway, k.Queue, cache.New(d.Redis, "obedi:"))
	k.Orders = services.NewOrderService(orderRepo, k.Users, k.Bus)
	k.Sweeper = services.NewStorageSweeper(lunchRepo, d.Disk, k.Gateway, 4)
	return k
}

// Boot connects to everything the configuration names and wires the
// kernel. Redis and the MongoDB log sink are optional: when they cannot be
// reached the cache is disabled, jobs stay in memory and logs go to stdout.
func Boot(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}

	var closers []func()

	if uri := config.Get("LOG_MONGO_URI", ""); uri != "" {
		flush, err := logger.AttachMongo(uri, config.Get("LOG_MONGO_DB", "obedi"), config.Get("LOG_MONGO_COLLECTION", "logs"))
		if err != nil {
			logger.Warn("kernel: mongo log sink disabled", "error", err)
		} else {
			closers = append(closers, flush)
		}
	}

	db, err := database.Connect()
	if err != nil {
		return nil, err
	}
	closers = append(closers, func() { _ = database.Close(db) })
	if err := metrics.InstrumentDB(db); err != nil {
		logger.Warn("kernel: db metrics disabled", "error", err)
	}

	rdb, err := cache.Connect(ctx)
	if err != nil {
		logger.Warn("kernel: redis unavailable, cache disabled", "error", err)
		rdb = nil
	} else {
		closers = append(closers, func() { _ = rdb.Close() })
	}

	var driver queue.Driver
	if config.QueueDriver() == "redis" {
		if rdb != nil {
			driver = queue.NewRedisDriver(rdb)
		} else {
			logger.Warn("kernel: QUEUE_DRIVER=redis but redis is unavailable, using memory queue")
		}
	}

	disks, err := storage.NewManager(ctx)
	if err != nil {
		return nil, err
	}

	k := New(Deps{
		DB:     db,
		Redis:  rdb,
		Disk:   disks.Default(),
		Tokens: auth.NewTokensFromConfig(),
		Google: auth.NewTokenInfoVerifier(config.GoogleClientID()),
		Queue:  driver,
	})
	k.closers = closers

	logger.Info("kernel: booted",
		"env", config.AppEnv(), "db", config.DatabaseDriver(), "disk", disks.DefaultName(),
		"cache", rdb != nil, "queue_local", k.QueueIsLocal)
	return k, nil
}

// Close releases connections in reverse order of acquisition.
func (k *Kernel) Close() {
	for i := len(k.closers) - 1; i >= 0; i-- {
		k.closers[i]()
	}
	k.closers = nil
}
