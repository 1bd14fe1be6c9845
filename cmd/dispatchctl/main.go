// dispatchctl is the operator tool: initialize the work-hours schema and run
// offline planning passes against a problem file without a live server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"fleet-dispatch-service/internal/adapters/distance"
	"fleet-dispatch-service/internal/adapters/repositories"
	"fleet-dispatch-service/internal/api/dto"
	"fleet-dispatch-service/internal/config"
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/platform/db"
	"fleet-dispatch-service/internal/services"
	"fleet-dispatch-service/internal/workhours"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	initDB := flag.Bool("init-db", false, "create the work_hours schema and exit")
	planPath := flag.String("plan", "", "plan the problem in this JSON file offline and print the result")
	flag.Parse()

	switch {
	case *initDB:
		if err := runInitDB(); err != nil {
			log.Fatal(err)
		}
	case *planPath != "":
		if err := runPlan(*planPath); err != nil {
			log.Fatal(err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runInitDB() error {
	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(databaseURL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(sqlDB); err != nil {
		return err
	}
	log.Println("Schema ready.")
	return nil
}

type problemFile struct {
	Tasks    []dto.TaskRequest   `json:"tasks"`
	Drivers  []dto.DriverRequest `json:"drivers"`
	DepartAt *time.Time          `json:"depart_at,omitempty"`
}

// runPlan solves a problem file with the straight-line provider, so it works
// offline and without API keys. Useful for sanity-checking fleet inputs.
func runPlan(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read problem file %q: %w", path, err)
	}
	var problem problemFile
	if err := json.Unmarshal(b, &problem); err != nil {
		return fmt.Errorf("parse problem file %q: %w", path, err)
	}

	provider, err := distance.NewHaversineProvider(config.GetFloat("AVG_SPEED_KMH", 48))
	if err != nil {
		return err
	}
	tracker := workhours.NewTracker(config.WorkHoursLimits())

	req := services.OptimizeRequest{
		Tasks:   make([]domain.Task, 0, len(problem.Tasks)),
		Drivers: make([]domain.Driver, 0, len(problem.Drivers)),
	}
	for _, t := range problem.Tasks {
		req.Tasks = append(req.Tasks, t.ToDomain())
	}
	for _, d := range problem.Drivers {
		req.Drivers = append(req.Drivers, d.ToDomain())
	}
	if problem.DepartAt != nil {
		req.DepartAt = *problem.DepartAt
	}

	optimizer := services.NewOptimizer(provider, tracker)
	result, err := optimizer.Optimize(context.Background(), req)
	if err != nil {
		return fmt.Errorf("plan %q: %w", path, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
