package parsers

import (
	"testing"

	"club-import/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_ValidPlayers(t *testing.T) {
	csvData := `parent_name,email,phone_number,player_last_name,player_first_name,date_of_birth,gender,grade,team_name,branch,season
Maria Lopez,maria@example.com,555-0101,Lopez,Sofia,2011-04-02,Female,8,Girls Academy,North,2024/2025
Tom Reed,tom@example.com,555-0102,Reed,Ella,2012-01-15,Female,7,U-13 Blue,South,2024/2025`

	result := ParseCSV(csvData, common.EntityPlayers)

	require.Equal(t, 2, result.Len())
	assert.Len(t, result.Headers, 11)
	assert.Equal(t, []int{1, 2}, result.RowNumbers)

	assert.Equal(t, "Sofia", result.Records[0]["player_first_name"])
	assert.Equal(t, "Lopez", result.Records[0]["player_last_name"])
	assert.Equal(t, "Girls Academy", result.Records[0]["team_name"])
	assert.Equal(t, "2024/2025", result.Records[0]["season"])
	assert.Equal(t, "tom@example.com", result.Records[1]["email"])
}

func TestParseCSV_HeaderNormalization(t *testing.T) {
	csvData := ` "Player First Name" ,Player Last Name,EMAIL,League
Ana,Ruiz,ana@example.com,Girls Academy`

	result := ParseCSV(csvData, common.EntityPlayers)

	assert.Equal(t, []string{"player_first_name", "player_last_name", "email", "league"}, result.Headers)
	require.Equal(t, 1, result.Len())
	assert.Equal(t, "Ana", result.Records[0]["player_first_name"])
	assert.Equal(t, "Girls Academy", result.Records[0]["league"])
}

func TestParseCSV_QuotedCommasAndEscapedQuotes(t *testing.T) {
	csvData := `first_name,last_name,email_address,branch
"Smith, Jr.",Coach,coach@example.com,"North, East"
Jane,"O""Neil",jane@example.com,South`

	result := ParseCSV(csvData, common.EntityCoaches)

	require.Equal(t, 2, result.Len())
	assert.Equal(t, "Smith, Jr.", result.Records[0]["first_name"])
	assert.Equal(t, "North, East", result.Records[0]["branch"])
	assert.Equal(t, `O"Neil`, result.Records[1]["last_name"])
}

func TestParseCSV_DropsBlankTeamRow(t *testing.T) {
	csvData := "name,age_group,League,season\nU-15 Elite,U-15,Girls Academy,2024/2025\n,,,"

	result := ParseCSV(csvData, common.EntityTeams)

	require.Equal(t, 1, result.Len())
	assert.Equal(t, "U-15 Elite", result.Records[0]["name"])
	assert.Equal(t, "Girls Academy", result.Records[0]["league"])
}

func TestParseCSV_StripsByteOrderMark(t *testing.T) {
	csvData := "\ufeffname,age_group,League,season\nU-15 Elite,U-15,Girls Academy,2024/2025\n"

	result := ParseCSV(csvData, common.EntityTeams)

	assert.Equal(t, []string{"name", "age_group", "league", "season"}, result.Headers)
	require.Equal(t, 1, result.Len())
	assert.Equal(t, "U-15 Elite", result.Records[0]["name"])
}

func TestParseCSV_DropsRowsWithoutIdentity(t *testing.T) {
	csvData := `player_first_name,player_last_name,email,grade
,,,8
Sam,,,7
,,sam@example.com,
`

	result := ParseCSV(csvData, common.EntityPlayers)

	require.Equal(t, 2, result.Len())
	assert.Equal(t, []int{2, 3}, result.RowNumbers)
}

func TestParseCSV_MissingAndExtraValues(t *testing.T) {
	csvData := "name,age_group,league\r\nU-15 White\r\nU-17 Red,U-17,ECNL,extra\r\n"

	result := ParseCSV(csvData, common.EntityTeams)

	require.Equal(t, 2, result.Len())
	assert.Equal(t, "", result.Records[0]["age_group"], "Missing value should be empty string")
	assert.Equal(t, "ECNL", result.Records[1]["league"])
	assert.Len(t, result.Records[1], 3)
}

func TestParseCSV_MalformedQuotesAreTolerated(t *testing.T) {
	csvData := `name,age_group,league
"U-15 Elite,U-15,Girls Academy
U-16 Gold,U-16,ECNL`

	result := ParseCSV(csvData, common.EntityTeams)

	require.Equal(t, 2, result.Len())
	// The unterminated quote swallows the rest of the line into one field.
	assert.Equal(t, "U-15 Elite,U-15,Girls Academy", result.Records[0]["name"])
	assert.Equal(t, "", result.Records[0]["age_group"])
	assert.Equal(t, "U-16 Gold", result.Records[1]["name"])
}

func TestParseCSV_EmptyFile(t *testing.T) {
	for _, csvData := range []string{"", "\n\n", "name,age_group\n"} {
		result := ParseCSV(csvData, common.EntityTeams)
		assert.Equal(t, 0, result.Len(), "input %q", csvData)
	}
}

func TestParseCSV_UnknownEntityTypeKeepsAnyNonBlankRow(t *testing.T) {
	csvData := "a,b\n,\n,x\n"

	result := ParseCSV(csvData, common.EntityType("messages"))

	require.Equal(t, 1, result.Len())
	assert.Equal(t, "x", result.Records[0]["b"])
}

func TestParseCSV_Idempotent(t *testing.T) {
	csvData := `first_name,last_name,email_address
"Lee, Ann",Park,ann@example.com
Bo,Chen,bo@example.com`

	first := ParseCSV(csvData, common.EntityCoaches)
	second := ParseCSV(csvData, common.EntityCoaches)

	assert.Equal(t, first, second)
}

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"name":              `name`,
		"league":            `League`,
		"player_first_name": ` "Player First Name" `,
		"email_address":     `Email Address`,
		"":                  `""`,
	}
	for want, in := range tests {
		assert.Equal(t, want, NormalizeHeader(in), in)
	}
}
