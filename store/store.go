// Package store is the entity store the import engine commits into. Every
// operation is keyed by entity type and takes or returns normalized records.
package store

import (
	"context"

	"club-import/coaches"
	"club-import/common"
	"club-import/players"
	"club-import/teams"
)

// Entity is a stored player, team or coach flattened to normalized fields
type Entity struct {
	ID     string            `json:"id"`
	Type   common.EntityType `json:"entity_type"`
	Name   string            `json:"name"`
	Fields common.Record     `json:"fields"`
}

// Store is the create/read/update/delete contract per entity type
type Store interface {
	Create(ctx context.Context, entityType common.EntityType, fields common.Record) (*Entity, error)
	Update(ctx context.Context, entityType common.EntityType, id string, fields common.Record) (*Entity, error)
	Delete(ctx context.Context, entityType common.EntityType, id string) error
	List(ctx context.Context, entityType common.EntityType) ([]Entity, error)
	Filter(ctx context.Context, entityType common.EntityType, where common.Record) ([]Entity, error)
	AddTeamToCoach(ctx context.Context, coachID, teamID string) error
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Snapshot is every existing entity, read once before an import starts.
// Slices keep store order, which decides ties in fuzzy matching.
type Snapshot struct {
	Players []players.PlayerModel
	Teams   []teams.TeamModel
	Coaches []coaches.CoachModel
}
