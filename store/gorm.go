package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"club-import/coaches"
	"club-import/common"
	"club-import/players"
	"club-import/teams"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("entity not found")
	ErrUnknownEntityType = errors.New("unknown entity type")
)

// model is the behaviour shared by the three entity models
type model interface {
	Apply(common.Record)
	ToRecord() common.Record
	Validate() error
}

// GormStore keeps players, teams and coaches in a gorm database
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates the entity tables
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&players.PlayerModel{}, &teams.TeamModel{}, &coaches.CoachModel{})
}

func newModel(entityType common.EntityType) (model, error) {
	switch entityType {
	case common.EntityPlayers:
		return &players.PlayerModel{}, nil
	case common.EntityTeams:
		return &teams.TeamModel{}, nil
	case common.EntityCoaches:
		return &coaches.CoachModel{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownEntityType, "%q", entityType)
	}
}

func toEntity(entityType common.EntityType, m model) *Entity {
	fields := m.ToRecord()
	name := fields["full_name"]
	if entityType == common.EntityTeams {
		name = fields["name"]
	}
	return &Entity{ID: fields["id"], Type: entityType, Name: name, Fields: fields}
}

func setIdentity(m model, id string, now time.Time) {
	switch v := m.(type) {
	case *players.PlayerModel:
		v.ID, v.CreatedAt, v.UpdatedAt = id, now, now
	case *teams.TeamModel:
		v.ID, v.CreatedAt, v.UpdatedAt = id, now, now
	case *coaches.CoachModel:
		v.ID, v.CreatedAt, v.UpdatedAt = id, now, now
	}
}

func touch(m model, now time.Time) {
	switch v := m.(type) {
	case *players.PlayerModel:
		v.UpdatedAt = now
	case *teams.TeamModel:
		v.UpdatedAt = now
	case *coaches.CoachModel:
		v.UpdatedAt = now
	}
}

// Create stores a new entity built from the normalized fields
func (s *GormStore) Create(ctx context.Context, entityType common.EntityType, fields common.Record) (*Entity, error) {
	m, err := newModel(entityType)
	if err != nil {
		return nil, err
	}
	m.Apply(fields)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	setIdentity(m, uuid.New().String(), time.Now())

	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", entityType)
	}
	return toEntity(entityType, m), nil
}

// Update overwrites the fields present in the record on an existing entity
func (s *GormStore) Update(ctx context.Context, entityType common.EntityType, id string, fields common.Record) (*Entity, error) {
	m, err := s.load(ctx, entityType, id)
	if err != nil {
		return nil, err
	}
	m.Apply(fields)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	touch(m, time.Now())

	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to update %s %s", entityType, id)
	}
	return toEntity(entityType, m), nil
}

// Delete removes an entity by id
func (s *GormStore) Delete(ctx context.Context, entityType common.EntityType, id string) error {
	m, err := newModel(entityType)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(m)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "failed to delete %s %s", entityType, id)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "%s %s", entityType, id)
	}
	return nil
}

// List returns every entity of a type in insertion order (sqlite rowid)
func (s *GormStore) List(ctx context.Context, entityType common.EntityType) ([]Entity, error) {
	return s.Filter(ctx, entityType, nil)
}

// Filter returns the entities whose columns equal every field in where
func (s *GormStore) Filter(ctx context.Context, entityType common.EntityType, where common.Record) ([]Entity, error) {
	query := s.ordered(ctx)

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	probe, err := newModel(entityType)
	if err != nil {
		return nil, err
	}
	known := probe.ToRecord()
	for _, k := range keys {
		if _, ok := known[k]; !ok || k == "team_ids" {
			return nil, fmt.Errorf("cannot filter %s by %q", entityType, k)
		}
		query = query.Where(fmt.Sprintf("%s = ?", k), where[k])
	}

	var out []Entity
	switch entityType {
	case common.EntityPlayers:
		var rows []players.PlayerModel
		if err := query.Find(&rows).Error; err != nil {
			return nil, errors.Wrap(err, "failed to list players")
		}
		for i := range rows {
			out = append(out, *toEntity(entityType, &rows[i]))
		}
	case common.EntityTeams:
		var rows []teams.TeamModel
		if err := query.Find(&rows).Error; err != nil {
			return nil, errors.Wrap(err, "failed to list teams")
		}
		for i := range rows {
			out = append(out, *toEntity(entityType, &rows[i]))
		}
	case common.EntityCoaches:
		var rows []coaches.CoachModel
		if err := query.Find(&rows).Error; err != nil {
			return nil, errors.Wrap(err, "failed to list coaches")
		}
		for i := range rows {
			out = append(out, *toEntity(entityType, &rows[i]))
		}
	}
	return out, nil
}

// AddTeamToCoach appends a team to a coach's team list. Load and save run
// inside one transaction so concurrent links to the same coach are not lost.
func (s *GormStore) AddTeamToCoach(ctx context.Context, coachID, teamID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var coach coaches.CoachModel
		if err := tx.Where("id = ?", coachID).First(&coach).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrapf(ErrNotFound, "coach %s", coachID)
			}
			return errors.Wrapf(err, "failed to load coach %s", coachID)
		}
		if !coach.AddTeam(teamID) {
			return nil
		}
		coach.UpdatedAt = time.Now()
		if err := tx.Save(&coach).Error; err != nil {
			return errors.Wrapf(err, "failed to link team %s to coach %s", teamID, coachID)
		}
		return nil
	})
}

// Snapshot loads every player, team and coach in insertion order
func (s *GormStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := s.ordered(ctx).Find(&snap.Players).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load players")
	}
	if err := s.ordered(ctx).Find(&snap.Teams).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load teams")
	}
	if err := s.ordered(ctx).Find(&snap.Coaches).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load coaches")
	}
	return snap, nil
}

func (s *GormStore) ordered(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Order("rowid")
}

func (s *GormStore) load(ctx context.Context, entityType common.EntityType, id string) (model, error) {
	m, err := newModel(entityType)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "%s %s", entityType, id)
		}
		return nil, errors.Wrapf(err, "failed to load %s %s", entityType, id)
	}
	return m, nil
}
