// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import "strings"

// likeEscaper prefixes LIKE metacharacters with the default escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsClause is the predicate for a substring match of a bound fragment.
// The fragment must go through [EscapeLike] first.
const ContainsClause = `ILIKE '%%' || $%d || '%%' ESCAPE '\'`

// EscapeLike makes user input match literally inside a LIKE pattern.
func EscapeLike(fragment string) string {
	return likeEscaper.Replace(fragment)
}
