package model

// LinkState describes how a transaction relates to its external calendar
// event. The state is explicit so that a "waiting for credentials" marker
// can never be confused with a real event id.
type LinkState string

const (
	// LinkNone means no calendar synchronization was requested or achieved.
	LinkNone LinkState = "none"
	// LinkPending means sync was requested but no calendar session was
	// available; the pending-sync sweep retries these.
	LinkPending LinkState = "pending"
	// LinkSet means the transaction is tied to a concrete calendar event.
	LinkSet LinkState = "linked"
)

// CalendarLink ties a transaction to an external calendar event.
// EventID is only meaningful when State is LinkSet.
type CalendarLink struct {
	EventID string
	State   LinkState
}

// NoLink returns an unlinked CalendarLink.
func NoLink() CalendarLink {
	return CalendarLink{State: LinkNone}
}

// PendingLink returns a CalendarLink awaiting calendar credentials.
func PendingLink() CalendarLink {
	return CalendarLink{State: LinkPending}
}

// LinkTo returns a CalendarLink bound to the given event id.
func LinkTo(eventID string) CalendarLink {
	return CalendarLink{State: LinkSet, EventID: eventID}
}

// Linked reports whether the link holds a confirmed event id.
func (l CalendarLink) Linked() bool {
	return l.State == LinkSet && l.EventID != ""
}

// PendingSync reports whether the link is waiting for credentials.
func (l CalendarLink) PendingSync() bool {
	return l.State == LinkPending
}
