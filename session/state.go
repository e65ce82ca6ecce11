package session

// State is the lifecycle state of a session.
type State uint8

const (
	// Inactive: no session requested yet.
	Inactive State = iota

	// Negotiating: the session request is outstanding.
	Negotiating

	// Active: the device granted the session. The hit-test source may still
	// be pending.
	Active

	// Ended is terminal.
	Ended
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Inactive:
		return "Inactive"
	case Negotiating:
		return "Negotiating"
	case Active:
		return "Active"
	case Ended:
		return "Ended"
	default:
		return "Unknown"
	}
}
