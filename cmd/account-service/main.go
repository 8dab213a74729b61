// Command account-service answers identity questions over gRPC for the
// other services.
package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/MikeMC777/vnb-store/internal/cache"
	"github.com/MikeMC777/vnb-store/internal/config"
	"github.com/MikeMC777/vnb-store/internal/db"
	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/memstore"
	"github.com/MikeMC777/vnb-store/internal/notify"
	"github.com/MikeMC777/vnb-store/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
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

	var users user.Repository
	var resets user.ResetTokens
	if cfg.Store.Driver == "memory" {
		users = memstore.New().Users()
		resets = cache.NewMemory(user.ResetTTL)
	} else {
		pool, err := db.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns, log)
		if err != nil {
			log.Fatal("postgres", "error", err)
		}
		defer pool.Close()
		rdb, err := cache.Connect(ctx, cache.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal("redis", "error", err)
		}
		defer rdb.Close()
		users = user.NewPGRepo(pool)
		resets = cache.NewRedisResetTokens(rdb)
	}

	events := notify.NewDispatcher(notify.NewLogNotifier(log), log)
	defer events.Close()
	tokens := user.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	svc := user.NewService(users, tokens, resets, events, log)

	lis, err := net.Listen("tcp", cfg.App.GRPCAddr)
	if err != nil {
		log.Fatal("listen", "addr", cfg.App.GRPCAddr, "error", err)
	}

	srv := grpc.NewServer()
	user.RegisterIdentityServer(srv, user.NewIdentity(svc, log))
	hs := health.NewServer()
	hs.SetServingStatus(user.IdentityServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	if !cfg.Production() {
		reflection.Register(srv)
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	log.Info("account-service listening", "addr", lis.Addr().String(), "store", cfg.Store.Driver)
	if err := srv.Serve(lis); err != nil {
		log.Fatal("serve", "error", err)
	}
}
