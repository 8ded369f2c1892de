package parsers

import (
	"strings"

	"club-import/common"
)

// identityFields lists, per entity type, the columns that make a row worth
// importing. A row with none of them filled is treated as a blank line.
var identityFields = map[common.EntityType][]string{
	common.EntityPlayers: {"player_first_name", "player_last_name", "full_name", "email"},
	common.EntityTeams:   {"name", "team_name"},
	common.EntityCoaches: {"first_name", "last_name", "full_name", "email", "email_address"},
}

// ParseResult holds the rows of one CSV file in file order
type ParseResult struct {
	Headers []string
	Records []common.Record
	// RowNumbers[i] is the 1-based data row (header excluded) Records[i] came from.
	RowNumbers []int
}

// Len returns the number of kept records
func (r *ParseResult) Len() int {
	return len(r.Records)
}

// ParseCSV splits text into header-keyed records for the given entity type.
// Rows are line based: quoted fields may contain commas but not newlines.
// Mismatched quotes never fail; the row keeps whatever the scan produced.
func ParseCSV(text string, entityType common.EntityType) *ParseResult {
	result := &ParseResult{}

	// spreadsheet exports often start with a UTF-8 byte order mark
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return result
	}

	for _, h := range splitLine(strings.TrimSuffix(lines[0], "\r")) {
		result.Headers = append(result.Headers, NormalizeHeader(h))
	}

	for i, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		values := splitLine(line)
		record := make(common.Record, len(result.Headers))
		for j, header := range result.Headers {
			if j < len(values) {
				record[header] = values[j]
			} else {
				record[header] = "" // Missing column value
			}
		}

		if !hasIdentity(record, entityType) {
			continue
		}

		result.Records = append(result.Records, record)
		result.RowNumbers = append(result.RowNumbers, i+1)
	}

	return result
}

// NormalizeHeader trims, unquotes, lower-cases and underscores a header cell
func NormalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.Trim(h, `"`)
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

// splitLine scans one line, toggling an in-quotes flag on every quote.
// A doubled quote inside a quoted field is a literal quote.
func splitLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			current.WriteByte('"')
			i++
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))

	return fields
}

func hasIdentity(record common.Record, entityType common.EntityType) bool {
	fields, ok := identityFields[entityType]
	if !ok {
		for _, v := range record {
			if strings.TrimSpace(v) != "" {
				return true
			}
		}
		return false
	}

	for _, f := range fields {
		if record.Has(f) {
			return true
		}
	}
	return false
}
