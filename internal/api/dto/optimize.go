package dto

import (
	"time"

	"fleet-dispatch-service/internal/domain"
)

type TimeWindowRequest struct {
	Earliest *time.Time `json:"earliest,omitempty"`
	Latest   *time.Time `json:"latest,omitempty"`
}

type TaskRequest struct {
	ID                     string             `json:"id"`
	Location               domain.Coordinate  `json:"location"`
	ServiceDurationMinutes float64            `json:"service_duration_minutes"`
	TimeWindow             *TimeWindowRequest `json:"time_window,omitempty"`
	Priority               int                `json:"priority"`
}

type DriverRequest struct {
	ID                    string             `json:"id"`
	Name                  string             `json:"name"`
	StartLocation         domain.Coordinate  `json:"start_location"`
	EndLocation           *domain.Coordinate `json:"end_location,omitempty"`
	MaxDailyHours         float64            `json:"max_daily_hours"`
	IsAvailable           bool               `json:"is_available"`
	CurrentWorkHoursToday float64            `json:"current_work_hours_today"`
	Status                string             `json:"status,omitempty"`
}

type OptimizeScheduleRequest struct {
	Tasks        []TaskRequest   `json:"tasks"`
	Drivers      []DriverRequest `json:"drivers"`
	DepartAt     *time.Time      `json:"depart_at,omitempty"`
	TimeBudgetMs int             `json:"time_budget_ms,omitempty"`
}

func (t TaskRequest) ToDomain() domain.Task {
	task := domain.Task{
		ID:                     t.ID,
		Location:               t.Location,
		ServiceDurationMinutes: t.ServiceDurationMinutes,
		Priority:               t.Priority,
	}
	if t.TimeWindow != nil {
		tw := &domain.TimeWindow{}
		if t.TimeWindow.Earliest != nil {
			tw.Earliest = *t.TimeWindow.Earliest
		}
		if t.TimeWindow.Latest != nil {
			tw.Latest = *t.TimeWindow.Latest
		}
		task.TimeWindow = tw
	}
	return task
}

func (d DriverRequest) ToDomain() domain.Driver {
	return domain.Driver{
		ID:                    d.ID,
		Name:                  d.Name,
		StartLocation:         d.StartLocation,
		EndLocation:           d.EndLocation,
		MaxDailyHours:         d.MaxDailyHours,
		IsAvailable:           d.IsAvailable,
		CurrentWorkHoursToday: d.CurrentWorkHoursToday,
		Status:                domain.DriverStatus(d.Status),
	}
}
