package players

import (
	"strings"

	"club-import/common"
)

// renamed maps player CSV columns to the player field they fill
var renamed = map[string]string{
	"player_first_name": "first_name",
	"player_last_name":  "last_name",
	"phone_number":      "phone",
}

// NormalizePlayerRecord maps a parsed players row onto player fields.
// full_name is always set from the first and last name columns, possibly empty.
func NormalizePlayerRecord(raw common.Record) common.Record {
	out := make(common.Record, len(raw)+1)
	for k, v := range raw {
		if _, ok := renamed[k]; ok {
			continue
		}
		out[k] = v
	}
	for from, to := range renamed {
		if v, ok := raw[from]; ok {
			out[to] = v
		}
	}

	out["full_name"] = strings.TrimSpace(raw["player_first_name"] + " " + raw["player_last_name"])
	return out
}
