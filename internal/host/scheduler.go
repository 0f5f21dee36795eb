package host

// Handle controls a scheduled task.
// Cancel is idempotent; a cancelled task never runs again.
type Handle interface {
	Cancel()
	Cancelled() bool
}

// Scheduler runs callbacks on the host's tick loop.
// Delays and intervals are in ticks. Neither method blocks.
type Scheduler interface {
	// Schedule runs fn once after delayTicks.
	Schedule(delayTicks int, fn func()) Handle

	// ScheduleRepeating runs fn after delayTicks and then every
	// intervalTicks until cancelled.
	ScheduleRepeating(delayTicks, intervalTicks int, fn func()) Handle
}
