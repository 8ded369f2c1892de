// Package parsers turns the text of an uploaded roster CSV into header-keyed
// records.
//
// Headers are normalized (trimmed, unquoted, lower-cased, spaces replaced with
// underscores) so "Player First Name" and player_first_name address the same
// field. Splitting is line based and tolerant: commas inside double quotes stay
// in the value, a doubled quote decodes to a literal quote, and malformed rows
// are assigned best-effort values instead of failing the file.
//
// Rows that carry no identity-bearing value for the target entity type (a name
// or email column) are dropped, which keeps trailing blank lines such as ",,,"
// from turning into phantom records.
//
// Example usage:
//
//	result := parsers.ParseCSV(text, common.EntityTeams)
//	for i, record := range result.Records {
//	    fmt.Println(result.RowNumbers[i], record["name"])
//	}
package parsers
