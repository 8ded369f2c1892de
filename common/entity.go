package common

import (
	"fmt"
	"strings"
)

// EntityType names one of the club record collections an import can target.
type EntityType string

const (
	EntityPlayers EntityType = "players"
	EntityTeams   EntityType = "teams"
	EntityCoaches EntityType = "coaches"
)

// EntityTypes lists the supported entity types in display order.
var EntityTypes = []EntityType{EntityPlayers, EntityTeams, EntityCoaches}

// Record is a header-keyed row. Parsed rows and normalized rows share the shape;
// a missing key means the field is absent, which is not the same as "".
type Record map[string]string

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether the field is present with a non-blank value.
func (r Record) Has(field string) bool {
	return strings.TrimSpace(r[field]) != ""
}

// ParseEntityType validates a user supplied entity type.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range EntityTypes {
		if t == known {
			return t, nil
		}
	}
	allowed := make([]string, len(EntityTypes))
	for i, known := range EntityTypes {
		allowed[i] = string(known)
	}
	return "", fmt.Errorf("entity_type must be one of: %s", strings.Join(allowed, ", "))
}
