package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"pairquiz-service/internal/app"
	"pairquiz-service/internal/config"
	"pairquiz-service/internal/domain"
	"pairquiz-service/internal/infra/memory"
	pgloader "pairquiz-service/internal/infra/postgres"
	redisinfra "pairquiz-service/internal/infra/redis"
	transport "pairquiz-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the coordinator.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the pair quiz coordinator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.PoolLoader = memory.NewStaticPoolLoader(memory.BuiltinPools())
	if pool != nil {
		loader = pgloader.NewPoolLoader(pool)
	}

	poolTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var bank app.QuestionBank
	if redisClient != nil {
		bank = redisinfra.NewQuestionBank(redisClient, loader, poolTTL)
	} else {
		bank = memory.NewQuestionBank(loader, poolTTL)
	}

	sessionTTL := config.TTLDuration(cfg.Session.TTL, 30*time.Minute)
	retention := config.TTLDuration(cfg.Session.Retention, 5*time.Minute)
	sweepEvery := config.TTLDuration(cfg.Session.Sweep, time.Minute)

	local := memory.NewSessionStore(sessionTTL, retention)
	var store app.SessionStore = local
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, local, redisTTL)
	}

	rewards := domain.RewardPolicy{
		CoinsPerCorrect: config.IntOrDefault(cfg.Rewards.CoinsPerCorrect, 5),
		PerfectBonus:    config.IntOrDefault(cfg.Rewards.PerfectBonus, 10),
	}
	service := app.NewPairService(store, bank, rewards)

	handler := transport.NewHandler(service)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws/pair", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				if evicted := store.Sweep(now); len(evicted) > 0 {
					log.Printf("swept %d sessions", len(evicted))
				}
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	go func() {
		log.Printf("starting pair quiz coordinator on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
