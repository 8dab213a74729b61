// Command shop-api serves the storefront REST API: catalog, cart, checkout,
// orders, accounts and the intake forms.
//
//	@title			VNB Store API
//	@version		1.0
//	@description	Storefront catalog, cart, checkout and accounts.
//	@BasePath		/api
//	@securityDefinitions.apikey	BearerAuth
//	@in				header
//	@name			Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/MikeMC777/vnb-store/internal/cache"
	"github.com/MikeMC777/vnb-store/internal/cart"
	"github.com/MikeMC777/vnb-store/internal/config"
	"github.com/MikeMC777/vnb-store/internal/db"
	"github.com/MikeMC777/vnb-store/internal/intake"
	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/memstore"
	"github.com/MikeMC777/vnb-store/internal/notify"
	"github.com/MikeMC777/vnb-store/internal/order"
	"github.com/MikeMC777/vnb-store/internal/product"
	"github.com/MikeMC777/vnb-store/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger config lives in cfg, so this one goes to stderr
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log, err := logx.New(logx.Options{Production: cfg.Production(), Level: cfg.App.LogLevel, File: cfg.App.LogFile})
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		log.Fatal("notifier", "driver", cfg.Notify.Driver, "error", err)
	}
	events := notify.NewDispatcher(notifier, log)
	defer events.Close()

	s, cleanup, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("store", "driver", cfg.Store.Driver, "error", err)
	}
	defer cleanup()

	tokens := user.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	carts := cart.NewService(s.carts, s.products, log)
	a := &app{
		log:      log,
		products: s.products,
		tokens:   tokens,
		carts:    carts,
		orders:   order.NewService(s.orders, carts, events, log, order.WithIdempotency(s.idem)),
		accounts: user.NewService(s.users, tokens, s.resets, events, log),
		intake:   intake.NewService(s.intake, events, log),
		origins:  cfg.CORS.AllowOrigins,
	}

	if addr := cfg.Account.ServiceAddr; addr != "" {
		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			log.Fatal("account service", "addr", addr, "error", err)
		}
		defer conn.Close()
		a.validator = user.NewRemoteValidator(user.NewIdentityClient(conn))
		log.Info("validating bearer subjects remotely", "addr", addr)
	}

	srv := &http.Server{
		Addr:              cfg.App.HTTPAddr,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("shop-api listening", "addr", srv.Addr, "store", cfg.Store.Driver, "notify", cfg.Notify.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
}

type stores struct {
	products product.Repository
	carts    cart.Repository
	orders   order.Repository
	users    user.Repository
	intake   intake.Repository
	idem     order.IdempotencyStore
	resets   user.ResetTokens
}

func openStores(ctx context.Context, cfg config.Config, log *logx.Logger) (*stores, func(), error) {
	if cfg.Store.Driver == "memory" {
		log.Warn("using in-memory store; data is lost on exit")
		m := memstore.New()
		kv := cache.NewMemory(cfg.Checkout.IdempotencyTTL)
		return &stores{
			products: m.Products(),
			carts:    m.Carts(),
			orders:   m.Orders(),
			users:    m.Users(),
			intake:   m.Intake(),
			idem:     kv,
			resets:   kv,
		}, func() {}, nil
	}

	pool, err := db.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns, log)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	rdb, err := cache.Connect(ctx, cache.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pgStores(pool, rdb, cfg.Checkout.IdempotencyTTL), func() {
		_ = rdb.Close()
		pool.Close()
	}, nil
}

func pgStores(pool *pgxpool.Pool, rdb *redis.Client, idemTTL time.Duration) *stores {
	return &stores{
		products: product.NewPGRepo(pool),
		carts:    cart.NewPGRepo(pool),
		orders:   order.NewPGRepo(pool),
		users:    user.NewPGRepo(pool),
		intake:   intake.NewPGRepo(pool),
		idem:     cache.NewRedisIdempotencyStore(rdb, idemTTL),
		resets:   cache.NewRedisResetTokens(rdb),
	}
}

func newNotifier(cfg config.Config, log *logx.Logger) (notify.Notifier, error) {
	switch cfg.Notify.Driver {
	case "rabbitmq":
		return notify.DialRabbit(cfg.Notify.RabbitURL, cfg.Notify.Exchange)
	case "kafka":
		return notify.DialKafka(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
	default:
		return notify.NewLogNotifier(log), nil
	}
}
