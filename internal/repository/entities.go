package repository

import (
	"fmt"
	"sort"
)

// Entity names under which executors register with the coordinator.
const (
	EntityAccount = "account"
	EntityFlight  = "flight"
	EntityTrip    = "trip"
	EntityAirport = "airport"
	EntityPilot   = "pilot"
	EntityFare    = "fare"
	EntityCard    = "card"
)

// buildPatch turns a params map into a SET clause. Keys are whitelisted per
// entity and sorted so the generated SQL is deterministic. Placeholders start
// at $2; $1 is reserved for the row key.
func buildPatch(params map[string]any, allowed map[string]bool) (string, []any, error) {
	if len(params) == 0 {
		return "", nil, fmt.Errorf("empty params")
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		if !allowed[k] {
			return "", nil, fmt.Errorf("column %q is not updatable", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clause := ""
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		if i > 0 {
			clause += ", "
		}
		clause += fmt.Sprintf("%s=$%d", k, i+2)
		args = append(args, params[k])
	}
	return clause, args, nil
}
