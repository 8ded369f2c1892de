package teams

import "club-import/common"

// NormalizeTeamRecord maps a parsed teams row onto team fields.
// team_name is accepted as an alias for name.
func NormalizeTeamRecord(raw common.Record) common.Record {
	out := make(common.Record, len(raw))
	for k, v := range raw {
		if k == "team_name" {
			continue
		}
		out[k] = v
	}
	if v, ok := raw["team_name"]; ok && !out.Has("name") {
		out["name"] = v
	}
	return out
}
