package domain

// DriverStatus is the closed set of operational states a driver can be in.
// The engine handles these exhaustively; there is no free-form fallthrough.
type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverOnTrip    DriverStatus = "on_trip"
	DriverOnBreak   DriverStatus = "on_break"
	DriverResting   DriverStatus = "resting"
	DriverOffDuty   DriverStatus = "off_duty"
)

// Valid reports whether s is one of the known statuses.
func (s DriverStatus) Valid() bool {
	switch s {
	case DriverAvailable, DriverOnTrip, DriverOnBreak, DriverResting, DriverOffDuty:
		return true
	}
	return false
}

// Driver describes one member of the fleet for a single planning horizon (one day).
// EndLocation nil means the driver must return to StartLocation.
type Driver struct {
	ID                    string
	Name                  string
	StartLocation         Coordinate
	EndLocation           *Coordinate
	MaxDailyHours         float64
	IsAvailable           bool
	CurrentWorkHoursToday float64
	Status                DriverStatus
}

// End returns the effective end-of-route location.
func (d Driver) End() Coordinate {
	if d.EndLocation != nil {
		return *d.EndLocation
	}
	return d.StartLocation
}

// RemainingDutyMinutes is the duty budget still usable in this run.
func (d Driver) RemainingDutyMinutes() float64 {
	rem := (d.MaxDailyHours - d.CurrentWorkHoursToday) * 60
	if rem < 0 {
		return 0
	}
	return rem
}
