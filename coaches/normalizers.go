package coaches

import (
	"strings"

	"club-import/common"
)

var renamed = map[string]string{
	"email_address": "email",
	"phone_number":  "phone",
}

// NormalizeCoachRecord maps a parsed coaches row onto coach fields.
// full_name is always set from first_name and last_name, possibly empty.
func NormalizeCoachRecord(raw common.Record) common.Record {
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

	out["full_name"] = strings.TrimSpace(raw["first_name"] + " " + raw["last_name"])
	return out
}
