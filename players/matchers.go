package players

import (
	"strings"

	"club-import/common"
)

// FindDuplicate returns the first existing player with the same full name or,
// when both sides have one, the same email. Comparison ignores case.
// Each call scans existing in order; nothing is cached between records.
func FindDuplicate(record common.Record, existing []PlayerModel) *PlayerModel {
	name := strings.TrimSpace(record["full_name"])
	email := strings.TrimSpace(record["email"])

	for i := range existing {
		p := &existing[i]
		if name != "" && strings.EqualFold(name, strings.TrimSpace(p.FullName)) {
			return p
		}
		if email != "" && p.Email != "" && strings.EqualFold(email, strings.TrimSpace(p.Email)) {
			return p
		}
	}
	return nil
}
