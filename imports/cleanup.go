package imports

import (
	"context"

	"club-import/coaches"
	"club-import/common"
	"club-import/players"
	"club-import/store"
	"club-import/teams"
)

// DuplicateGroup is one class of existing entities that match each other. Keep
// is the first of the class in store order.
type DuplicateGroup struct {
	Keep   Match   `json:"keep"`
	Remove []Match `json:"remove"`
}

// FindDuplicateGroups walks the existing entities in order and groups later
// entities under the first one they duplicate
func FindDuplicateGroups(entityType common.EntityType, snap *store.Snapshot) []DuplicateGroup {
	if snap == nil {
		return nil
	}
	switch entityType {
	case common.EntityPlayers:
		return groupDuplicates(snap.Players, (*players.PlayerModel).ToRecord, players.FindDuplicate,
			func(p *players.PlayerModel) Match { return Match{ID: p.ID, Name: p.FullName} })
	case common.EntityTeams:
		return groupDuplicates(snap.Teams, (*teams.TeamModel).ToRecord, teams.FindDuplicate,
			func(t *teams.TeamModel) Match { return Match{ID: t.ID, Name: t.Name} })
	case common.EntityCoaches:
		return groupDuplicates(snap.Coaches, (*coaches.CoachModel).ToRecord, coaches.FindDuplicate,
			func(c *coaches.CoachModel) Match { return Match{ID: c.ID, Name: c.FullName} })
	}
	return nil
}

func groupDuplicates[T any](
	items []T,
	toRecord func(*T) common.Record,
	findDuplicate func(common.Record, []T) *T,
	identify func(*T) Match,
) []DuplicateGroup {
	var keepers []T
	var groups []DuplicateGroup
	groupOf := make(map[string]int)

	for i := range items {
		item := &items[i]
		if kept := findDuplicate(toRecord(item), keepers); kept != nil {
			g := groupOf[identify(kept).ID]
			groups[g].Remove = append(groups[g].Remove, identify(item))
			continue
		}
		keepers = append(keepers, *item)
		keep := identify(item)
		groupOf[keep.ID] = len(groups)
		groups = append(groups, DuplicateGroup{Keep: keep})
	}

	result := make([]DuplicateGroup, 0)
	for _, g := range groups {
		if len(g.Remove) > 0 {
			result = append(result, g)
		}
	}
	return result
}

// RemovalCount is the number of entities a cleanup of groups would delete
func RemovalCount(groups []DuplicateGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Remove)
	}
	return n
}

// Cleanup deletes every entity listed for removal, batched like an import
func Cleanup(
	ctx context.Context,
	entityType common.EntityType,
	groups []DuplicateGroup,
	applier Applier,
	opts CommitOptions,
) *Outcome {
	targets := make([]Match, 0, RemovalCount(groups))
	for _, g := range groups {
		targets = append(targets, g.Remove...)
	}

	outcome := &Outcome{EntityType: entityType, Total: len(targets), Errors: []common.RecordError{}}
	results := make([]error, len(targets))

	apply := func(ctx context.Context, i int) {
		results[i] = applier.Delete(ctx, entityType, targets[i].ID)
	}
	settle := func(start, end int) Progress {
		for i := start; i < end; i++ {
			res := recordResult{kind: resultDeleted}
			if results[i] != nil {
				res = recordResult{kind: resultFailed, err: results[i]}
			}
			outcome.fold(i, 0, targets[i].Name, res)
		}
		return outcome.progress()
	}

	processed, err := runBatches(ctx, entityType, len(targets), opts, apply, settle)
	if err != nil {
		outcome.Cancelled = true
		for i := processed; i < len(targets); i++ {
			outcome.Errors = append(outcome.Errors, common.RecordError{
				Index: i, Name: targets[i].Name, Message: cancelledMessage,
			})
		}
	}
	outcome.record(opts.logger(), err)
	return outcome
}
