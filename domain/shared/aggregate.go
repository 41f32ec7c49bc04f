package shared

// AggregateRoot is the entry point of a consistency boundary.
// Repositories persist aggregates, the unit of work pulls their events
// after commit and hands them to the Notifier.
type AggregateRoot interface {
	// ID returns the aggregate identity in its string form
	ID() string

	// PullEvents returns the recorded domain events and clears them
	PullEvents() []DomainEvent
}
