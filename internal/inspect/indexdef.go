package inspect

import "strings"

// SentinelColumns is reported for indexes with no recorded definition text,
// such as the ones the engine synthesizes for PRIMARY KEY constraints.
const SentinelColumns = "(auto)"

// IndexDef is the result of parsing one CREATE INDEX statement.
type IndexDef struct {
	Unique        bool
	Columns       string
	PartialClause string
	Partial       bool
}

// ParseIndexDef recovers uniqueness, the column list and an optional partial
// predicate from the raw text of a CREATE INDEX statement. hasSQL is false
// when the catalog holds no statement text for the index.
//
// This is a deliberate textual heuristic, not a SQL parser: the column list
// is the text between the first "(" and the last ")" before a " WHERE "
// clause (or the last ")" overall when there is none). Nested parentheses
// ahead of that close paren can mis-extract; callers accept that.
func ParseIndexDef(sqlText string, hasSQL bool) IndexDef {
	if !hasSQL {
		return IndexDef{Columns: SentinelColumns}
	}

	upper := strings.ToUpper(sqlText)
	def := IndexDef{Unique: strings.Contains(upper, "UNIQUE")}

	end := len(sqlText)
	if wherePos := strings.Index(upper, " WHERE "); wherePos >= 0 {
		end = wherePos
		def.PartialClause = strings.TrimSpace(sqlText[wherePos+len(" WHERE "):])
		def.Partial = true
	}

	if open := strings.Index(sqlText, "("); open >= 0 && open < end {
		if close := strings.LastIndex(sqlText[open:end], ")"); close >= 0 {
			def.Columns = sqlText[open+1 : open+close]
		}
	}

	return def
}
