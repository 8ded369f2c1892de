package imports

import (
	"strings"

	"club-import/coaches"
	"club-import/common"
	"club-import/parsers"
	"club-import/players"
	"club-import/store"
	"club-import/teams"
)

// Match points at an existing entity by id and display name
type Match struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlannedRecord is one incoming row after normalization and matching. It is
// computed once at preview time.
type PlannedRecord struct {
	Index     int           `json:"index"`
	RowNumber int           `json:"row_number"`
	Name      string        `json:"name"`
	Fields    common.Record `json:"fields"`
	// Duplicate is the existing entity considered the same record.
	Duplicate *Match `json:"duplicate,omitempty"`
	// TeamMatch is the best-guess team for a player's free-text team_name.
	TeamMatch *Match `json:"team_match,omitempty"`
	// CoachMatch is the best-guess coach for a team's free-text coach.
	CoachMatch *Match `json:"coach_match,omitempty"`
}

// IsDuplicate reports whether the record needs a skip/replace decision
func (r *PlannedRecord) IsDuplicate() bool {
	return r.Duplicate != nil
}

// Normalize maps a parsed row onto the fields of entityType. Unknown entity
// types get a copy of the row back.
func Normalize(raw common.Record, entityType common.EntityType) common.Record {
	switch entityType {
	case common.EntityPlayers:
		return players.NormalizePlayerRecord(raw)
	case common.EntityTeams:
		return teams.NormalizeTeamRecord(raw)
	case common.EntityCoaches:
		return coaches.NormalizeCoachRecord(raw)
	default:
		return raw.Clone()
	}
}

// DisplayName is the label used for a record in previews and error lists
func DisplayName(record common.Record, entityType common.EntityType) string {
	name := record["full_name"]
	if entityType == common.EntityTeams {
		name = record["name"]
	}
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return strings.TrimSpace(record["email"])
}

// FindDuplicate looks the record up in the snapshot using the duplicate rule of
// its entity type
func FindDuplicate(record common.Record, entityType common.EntityType, snap *store.Snapshot) *Match {
	if snap == nil {
		return nil
	}
	switch entityType {
	case common.EntityPlayers:
		if p := players.FindDuplicate(record, snap.Players); p != nil {
			return &Match{ID: p.ID, Name: p.FullName}
		}
	case common.EntityTeams:
		if t := teams.FindDuplicate(record, snap.Teams); t != nil {
			return &Match{ID: t.ID, Name: t.Name}
		}
	case common.EntityCoaches:
		if c := coaches.FindDuplicate(record, snap.Coaches); c != nil {
			return &Match{ID: c.ID, Name: c.FullName}
		}
	}
	return nil
}

// FindTeamMatch resolves a player's free-text team name against the snapshot
func FindTeamMatch(teamName string, snap *store.Snapshot) *Match {
	if snap == nil {
		return nil
	}
	if t := teams.FindBestTeamMatch(teamName, snap.Teams); t != nil {
		return &Match{ID: t.ID, Name: t.Name}
	}
	return nil
}

// FindCoachMatch resolves a team's free-text coach against the snapshot
func FindCoachMatch(coach string, snap *store.Snapshot) *Match {
	if snap == nil {
		return nil
	}
	if c := coaches.FindCoachMatch(coach, snap.Coaches); c != nil {
		return &Match{ID: c.ID, Name: c.FullName}
	}
	return nil
}

// Analyze normalizes and matches every parsed row. Matching is a linear scan
// of the snapshot per record.
func Analyze(parsed *parsers.ParseResult, entityType common.EntityType, snap *store.Snapshot) []PlannedRecord {
	planned := make([]PlannedRecord, 0, parsed.Len())
	for i, raw := range parsed.Records {
		fields := Normalize(raw, entityType)
		rec := PlannedRecord{
			Index:     i,
			RowNumber: parsed.RowNumbers[i],
			Name:      DisplayName(fields, entityType),
			Fields:    fields,
			Duplicate: FindDuplicate(fields, entityType, snap),
		}

		switch entityType {
		case common.EntityPlayers:
			if !fields.Has("team_id") && fields.Has("team_name") {
				rec.TeamMatch = FindTeamMatch(fields["team_name"], snap)
			}
		case common.EntityTeams:
			if fields.Has("coach") {
				rec.CoachMatch = FindCoachMatch(fields["coach"], snap)
			}
		}

		planned = append(planned, rec)
	}
	return planned
}

// DefaultActions assigns skip to every duplicate record
func DefaultActions(records []PlannedRecord) map[int]DuplicateAction {
	actions := make(map[int]DuplicateAction)
	for _, r := range records {
		if r.IsDuplicate() {
			actions[r.Index] = ActionSkip
		}
	}
	return actions
}
