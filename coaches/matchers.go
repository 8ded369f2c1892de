package coaches

import (
	"strings"

	"club-import/common"
)

// FindDuplicate returns the first existing coach with the same email (when both
// have one) or the same full name, ignoring case
func FindDuplicate(record common.Record, existing []CoachModel) *CoachModel {
	name := strings.TrimSpace(record["full_name"])
	email := strings.TrimSpace(record["email"])

	for i := range existing {
		c := &existing[i]
		if email != "" && c.Email != "" && strings.EqualFold(email, strings.TrimSpace(c.Email)) {
			return c
		}
		if name != "" && strings.EqualFold(name, strings.TrimSpace(c.FullName)) {
			return c
		}
	}
	return nil
}

// FindCoachMatch resolves a team's free-text coach to the first coach, in the
// order given, whose full name contains it (case-insensitive)
func FindCoachMatch(search string, existing []CoachModel) *CoachModel {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return nil
	}
	for i := range existing {
		if strings.Contains(strings.ToLower(existing[i].FullName), needle) {
			return &existing[i]
		}
	}
	return nil
}
