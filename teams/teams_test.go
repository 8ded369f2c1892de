package teams

import (
	"strings"
	"testing"

	"club-import/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTeamRecord(t *testing.T) {
	out := NormalizeTeamRecord(common.Record{"team_name": "U-15 Elite", "age_group": "U-15", "league": "Girls Academy"})

	assert.Equal(t, common.Record{"name": "U-15 Elite", "age_group": "U-15", "league": "Girls Academy"}, out)

	// an explicit name wins over the alias
	out = NormalizeTeamRecord(common.Record{"name": "U-16 Gold", "team_name": "Gold"})
	assert.Equal(t, "U-16 Gold", out["name"])

	out = NormalizeTeamRecord(common.Record{"season": "2024/2025"})
	_, hasName := out["name"]
	assert.False(t, hasName)
}

func TestFindDuplicate(t *testing.T) {
	existing := []TeamModel{{ID: "t1", Name: "U-15 Elite"}, {ID: "t2", Name: "U-15 White"}}

	got := FindDuplicate(common.Record{"name": "u-15 white"}, existing)
	require.NotNil(t, got)
	assert.Equal(t, "t2", got.ID)

	assert.Nil(t, FindDuplicate(common.Record{"name": "U-15"}, existing), "teams only match exactly")
	assert.Nil(t, FindDuplicate(common.Record{"name": ""}, existing))
}

func TestFindBestTeamMatch(t *testing.T) {
	existing := []TeamModel{
		{ID: "t1", Name: "U-15 Girls Academy"},
		{ID: "t2", Name: "U-15 White"},
		{ID: "t3", Name: "Academy"},
	}

	tests := []struct {
		search string
		wantID string
	}{
		{"Girls Academy", "t1"},    // candidate contains search
		{"academy", "t3"},          // exact beats an earlier substring hit
		{"U-15 White Squad", "t2"}, // search contains candidate
		{"U-15", "t1"},             // first substring hit in supplied order
		{"  u-15 white  ", "t2"},   // trimmed, case-insensitive exact
		{"Boys Premier", ""},
		{"", ""},
	}

	for _, tt := range tests {
		got := FindBestTeamMatch(tt.search, existing)
		if tt.wantID == "" {
			assert.Nil(t, got, tt.search)
			continue
		}
		require.NotNil(t, got, tt.search)
		assert.Equal(t, tt.wantID, got.ID, tt.search)
	}
}

func TestFindBestTeamMatch_OrderDecidesAmbiguousHits(t *testing.T) {
	a := TeamModel{ID: "a", Name: "U-15 Girls Academy"}
	b := TeamModel{ID: "b", Name: "U-17 Girls Academy"}

	assert.Equal(t, "a", FindBestTeamMatch("Girls Academy", []TeamModel{a, b}).ID)
	assert.Equal(t, "b", FindBestTeamMatch("Girls Academy", []TeamModel{b, a}).ID)
}

func TestTeamModel(t *testing.T) {
	m := TeamModel{}
	m.Apply(common.Record{"name": " U-15 Elite ", "league": "ECNL"})
	assert.Equal(t, "U-15 Elite", m.Name)
	assert.NoError(t, m.Validate())
	assert.Error(t, (&TeamModel{}).Validate())

	assert.Len(t, m.TemplateRow(), len(strings.Split(TemplateHeader, ",")))
	assert.Equal(t, "ECNL", m.ToRecord()["league"])
}
