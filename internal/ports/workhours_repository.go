package ports

import (
	"context"

	"fleet-dispatch-service/internal/domain"
)

// Port: a boundary for persisting per-driver work-hours ledgers across runs.
type WorkHoursRepository interface {
	// Retrieve all ledger records.
	LoadAll(ctx context.Context) ([]domain.WorkHoursRecord, error)
	// Upsert a single driver's ledger record.
	Save(ctx context.Context, rec domain.WorkHoursRecord) error
}
