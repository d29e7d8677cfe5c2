// internal/lifecycle/transitions.go
//
// Site status state machine.
//
// Context
// -------
// The happy path walks created → building → deploying → deployed.  Any
// non-terminal state may drop to failed or error on operational failure,
// or jump straight to archived on explicit decommission.  failed and
// error may re-enter building (retry).  archived is terminal; nothing
// leaves it.
package lifecycle

import "github.com/mocher01/lowebi-sub005/internal/store"

// transitions maps each status to the set of statuses it may move to.
var transitions = map[store.Status]map[store.Status]struct{}{
	store.StatusCreated: {
		store.StatusBuilding: {},
		store.StatusFailed:   {},
		store.StatusError:    {},
		store.StatusArchived: {},
	},
	store.StatusBuilding: {
		store.StatusDeploying: {},
		store.StatusFailed:    {},
		store.StatusError:     {},
		store.StatusArchived:  {},
	},
	store.StatusDeploying: {
		store.StatusDeployed: {},
		store.StatusFailed:   {},
		store.StatusError:    {},
		store.StatusArchived: {},
	},
	store.StatusDeployed: {
		store.StatusFailed:   {},
		store.StatusError:    {},
		store.StatusArchived: {},
	},
	// Retry path: a failed or errored build may be attempted again.
	store.StatusFailed: {
		store.StatusBuilding: {},
		store.StatusArchived: {},
	},
	store.StatusError: {
		store.StatusBuilding: {},
		store.StatusArchived: {},
	},
	store.StatusArchived: {}, // terminal
}

// CanTransition reports whether the from → to edge is permitted.
func CanTransition(from, to store.Status) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// AllowedFrom returns the permitted targets from a status, in enum order.
func AllowedFrom(from store.Status) []store.Status {
	allowed := transitions[from]
	out := make([]store.Status, 0, len(allowed))
	for _, s := range store.AllStatuses {
		if _, ok := allowed[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
