package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deepref-rcs-service/internal/app"
	"deepref-rcs-service/internal/config"
	"deepref-rcs-service/internal/domain"
	"deepref-rcs-service/internal/infra/memory"
	"deepref-rcs-service/internal/infra/postgres"
	redisinfra "deepref-rcs-service/internal/infra/redis"
	"deepref-rcs-service/internal/scoring"
	transport "deepref-rcs-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the scoring server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// scoringStore is what the wiring needs from a backing store: all three
// scoring collaborators plus the sample loader the Redis cache feeds on.
type scoringStore interface {
	app.SubmissionRepository
	app.PopulationStore
	app.ResultSink
	redisinfra.PopulationLoader
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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	populationTTL := config.TTLDuration(cfg.Scoring.PopulationTTL, 5*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var store scoringStore = memory.NewStore(sampleSubmissions())
	if pool != nil {
		store = postgres.NewSubmissionStore(pool)
	}

	population := app.PopulationStore(memory.NewPopulationCache(store, populationTTL))
	sink := app.ResultSink(store)
	if redisClient != nil {
		population = redisinfra.NewPopulationCache(redisClient, store, populationTTL)
		sink = redisinfra.NewResultCache(redisClient, store, redisTTL)
	}

	engine, err := scoring.NewEngine(cfg.Weights())
	if err != nil {
		return err
	}
	service := app.NewRcsService(store, population, sink, engine)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting rcs service on :%s", finalPort)
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

// sampleSubmissions seeds demo mode with a few completed references; a
// Postgres-backed store replaces this in production.
func sampleSubmissions() map[string]domain.Submission {
	submitted := time.Now().Add(-48 * time.Hour)
	deepfake := 0.05
	return map[string]domain.Submission{
		"ref-1": {
			ID:          "ref-1",
			RequesterID: "seeker-1",
			Role:        "Software Engineer",
			Status:      domain.StatusCompleted,
			Questions:   []string{"q1", "q2", "q3"},
			Responses: map[string]*string{
				"q1": strPtr("An excellent engineer with deep technical knowledge. Their system architecture work was outstanding and the team relied on them daily."),
				"q2": strPtr("They are highly skilled at debugging and always professional under pressure. I would highly recommend them for any engineering role."),
				"q3": strPtr("Dedicated, reliable, and a great mentor to junior colleagues on the team."),
			},
			SubmittedAt:         &submitted,
			CreatedAt:           submitted.Add(-72 * time.Hour),
			DeepfakeProbability: &deepfake,
		},
		"ref-2": {
			ID:          "ref-2",
			RequesterID: "seeker-1",
			Role:        "Project Manager",
			Status:      domain.StatusCompleted,
			Questions:   []string{"q1", "q2"},
			Responses: map[string]*string{
				"q1": strPtr("Solid project planning and coordination."),
			},
			CreatedAt: submitted.Add(-24 * time.Hour),
		},
	}
}

func strPtr(s string) *string {
	return &s
}
