package teams

import (
	"strings"

	"club-import/common"
)

// FindDuplicate returns the first existing team whose name equals the record's,
// ignoring case
func FindDuplicate(record common.Record, existing []TeamModel) *TeamModel {
	name := strings.TrimSpace(record["name"])
	if name == "" {
		return nil
	}
	for i := range existing {
		if strings.EqualFold(name, strings.TrimSpace(existing[i].Name)) {
			return &existing[i]
		}
	}
	return nil
}

// FindBestTeamMatch resolves a free-text team name to an existing team.
// An exact case-insensitive match wins; otherwise the first team, in the order
// given, whose name contains the search text or is contained by it.
// Several partial hits are not ranked.
func FindBestTeamMatch(search string, existing []TeamModel) *TeamModel {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return nil
	}

	for i := range existing {
		if strings.ToLower(strings.TrimSpace(existing[i].Name)) == needle {
			return &existing[i]
		}
	}

	for i := range existing {
		name := strings.ToLower(strings.TrimSpace(existing[i].Name))
		if name == "" {
			continue
		}
		if strings.Contains(name, needle) || strings.Contains(needle, name) {
			return &existing[i]
		}
	}
	return nil
}
