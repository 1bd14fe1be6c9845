package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"fleet-dispatch-service/internal/adapters/cache"
	"fleet-dispatch-service/internal/adapters/distance"
	"fleet-dispatch-service/internal/adapters/repositories"
	"fleet-dispatch-service/internal/api"
	"fleet-dispatch-service/internal/config"
	"fleet-dispatch-service/internal/platform/db"
	"fleet-dispatch-service/internal/ports"
	"fleet-dispatch-service/internal/roster"
	"fleet-dispatch-service/internal/services"
	"fleet-dispatch-service/internal/workhours"
)

// main is the application composition root. It wires concrete adapters
// (Postgres, Redis, the routing backend) behind ports and starts the HTTP
// server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	rosterPath := config.Get("ROSTER_PATH", "")

	provider, err := buildProvider()
	if err != nil {
		log.Fatal(err)
	}

	tracker := workhours.NewTracker(config.WorkHoursLimits())

	var repo ports.WorkHoursRepository = repositories.NewMemoryWorkHoursRepository()
	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) != "" {
		sqlDB, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer sqlDB.Close()
		if err := repositories.InitSchema(sqlDB); err != nil {
			log.Fatal(err)
		}
		repo = repositories.NewPostgresWorkHoursRepository(sqlDB)
	} else {
		log.Println("DATABASE_URL not set; work-hours ledger is in-memory only")
	}

	recs, err := repo.LoadAll(context.Background())
	if err != nil {
		log.Fatal(fmt.Errorf("hydrate work-hours ledger: %w", err))
	}
	tracker.Seed(recs)
	log.Printf("Work-hours ledger hydrated drivers=%d", len(recs))

	optimizer := services.NewOptimizer(provider, tracker)
	rosterSvc := roster.NewService(provider)
	if rosterPath != "" {
		if err := seedRoster(rosterSvc, rosterPath); err != nil {
			log.Fatal(err)
		}
	}
	reporter := workhours.NewReporter(tracker)

	router := api.NewRouter(optimizer, rosterSvc, reporter)

	// Timeouts are tuned for cold-cache matrix building (external API latency).
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server listening addr=:%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Flush the ledger so the next start resumes mid-shift.
	for _, rec := range tracker.Snapshot() {
		if err := repo.Save(shutdownCtx, rec); err != nil {
			log.Printf("persist ledger driver=%s: %v", rec.DriverID, err)
		}
	}
}

// buildProvider assembles the distance provider stack from the environment:
// a routing backend, optionally rate limited, optionally fronted by Redis.
func buildProvider() (ports.DistanceProvider, error) {
	var provider ports.DistanceProvider

	kind := strings.ToLower(config.Get("DISTANCE_PROVIDER", "ors"))
	switch kind {
	case "ors":
		key := os.Getenv("ORS_API_KEY")
		if strings.TrimSpace(key) == "" {
			return nil, errors.New("ORS_API_KEY is required for DISTANCE_PROVIDER=ors")
		}
		p, err := distance.NewORSProvider(key)
		if err != nil {
			return nil, err
		}
		provider = p
	case "google":
		key := os.Getenv("GOOGLE_MAPS_API_KEY")
		if strings.TrimSpace(key) == "" {
			return nil, errors.New("GOOGLE_MAPS_API_KEY is required for DISTANCE_PROVIDER=google")
		}
		p, err := distance.NewGoogleProvider(key)
		if err != nil {
			return nil, err
		}
		provider = p
	case "haversine":
		p, err := distance.NewHaversineProvider(config.GetFloat("AVG_SPEED_KMH", 48))
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, fmt.Errorf("unknown DISTANCE_PROVIDER %q", kind)
	}

	if rps := config.GetFloat("PROVIDER_RPS", 0); rps > 0 && kind != "haversine" {
		provider = distance.NewRateLimitedProvider(provider, rps, config.GetInt("PROVIDER_BURST", 5))
	}

	if addr := config.Get("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		ttl := config.GetDuration("LEG_CACHE_TTL", 6*time.Hour)
		provider = cache.NewRedisLegCache(rdb, provider, ttl)
		log.Printf("Leg cache enabled redis=%s ttl=%s", addr, ttl)
	}

	return provider, nil
}

// seedRoster loads the driver roster from a JSON file for local runs.
func seedRoster(s *roster.Service, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("seed roster: read %q: %w", path, err)
	}
	var drivers []roster.RosterDriver
	if err := json.Unmarshal(b, &drivers); err != nil {
		return fmt.Errorf("seed roster: parse %q: %w", path, err)
	}
	s.RegisterDrivers(drivers)
	log.Printf("Roster seeded drivers=%d path=%s", len(drivers), path)
	return nil
}
