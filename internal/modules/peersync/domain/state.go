package domain

type ConnectionState string

const (
	StateNotConnected ConnectionState = "not_connected"
	StateConnected    ConnectionState = "connected"
)

type EventKind string

const (
	EventActivationCompleted EventKind = "activation_completed"
	EventReachabilityChanged EventKind = "reachability_changed"
	EventBecameInactive      EventKind = "became_inactive"
	EventDeactivated         EventKind = "deactivated"
	EventMessageReceived     EventKind = "message_received"
)

// Event is one notification from the session transport. Reachable is the
// peer reachability observed when the event was produced.
type Event struct {
	Kind      EventKind
	Activated bool
	Err       error
	Reachable bool
	Message   *Inbound
}

func ActivationCompleted(activated bool, reachable bool, err error) Event {
	return Event{Kind: EventActivationCompleted, Activated: activated && err == nil, Reachable: reachable, Err: err}
}

func ReachabilityChanged(reachable bool) Event {
	return Event{Kind: EventReachabilityChanged, Reachable: reachable}
}

func BecameInactive() Event {
	return Event{Kind: EventBecameInactive}
}

func Deactivated() Event {
	return Event{Kind: EventDeactivated}
}

func MessageReceived(message *Inbound) Event {
	return Event{Kind: EventMessageReceived, Message: message}
}

// Next is the connection state after event. Only a successful activation
// with a reachable peer, or reachability returning, leads to Connected.
func Next(current ConnectionState, event Event) ConnectionState {
	switch event.Kind {
	case EventActivationCompleted:
		if event.Activated && event.Err == nil && event.Reachable {
			return StateConnected
		}
		return StateNotConnected
	case EventReachabilityChanged:
		if event.Reachable {
			return StateConnected
		}
		return StateNotConnected
	case EventBecameInactive, EventDeactivated:
		return StateNotConnected
	case EventMessageReceived:
		return current
	default:
		return current
	}
}

// NeedsReactivation reports whether the session must be activated again
// after event.
func NeedsReactivation(event Event) bool {
	return event.Kind == EventDeactivated
}
