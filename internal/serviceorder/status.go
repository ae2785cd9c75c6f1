package serviceorder

import "fmt"

// Status is the lifecycle state of a service order.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// InitialStatus is assigned to every new order.
const InitialStatus = StatusOpen

// AllStatuses lists every state in display order.
func AllStatuses() []Status {
	return []Status{StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled}
}

// ParseStatus converts a wire value into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("status desconhecido %q: %w", s, ErrValidation)
	}
}

// NextStates returns the states reachable from s in one step.
// Terminal states return an empty, non-nil slice.
func (s Status) NextStates() []Status {
	switch s {
	case StatusOpen:
		return []Status{StatusInProgress, StatusCancelled}
	case StatusInProgress:
		return []Status{StatusCompleted, StatusCancelled}
	case StatusCompleted, StatusCancelled:
		return []Status{}
	default:
		return []Status{}
	}
}

// CanTransitionTo reports whether target is in s.NextStates().
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range s.NextStates() {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return len(s.NextStates()) == 0
}

// Label is the pt-BR name shown to shop staff.
func (s Status) Label() string {
	switch s {
	case StatusOpen:
		return "Aberta"
	case StatusInProgress:
		return "Em Andamento"
	case StatusCompleted:
		return "Concluída"
	case StatusCancelled:
		return "Cancelada"
	default:
		return string(s)
	}
}

// Predecessors returns every state from which target can be reached in one
// step. Repositories use it to restrict the status UPDATE to legal rows.
func Predecessors(target Status) []Status {
	var from []Status
	for _, s := range AllStatuses() {
		if s.CanTransitionTo(target) {
			from = append(from, s)
		}
	}
	return from
}
