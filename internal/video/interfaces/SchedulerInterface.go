package interfaces

import "time"

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
	Schedule(id string, fireAt time.Time)
}

// Clock abstracts wall time so expiry firing is testable.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}
