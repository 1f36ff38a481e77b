// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package searchterm turns raw search box input into a title filter.
//
// The term is matched as typed. Only surrounding whitespace is removed, so a
// title pasted from the list always finds itself; case folding is left to
// ILIKE on the backend.
package searchterm

import "strings"

// likeEscaper escapes the LIKE metacharacters so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Clean trims leading and trailing Unicode whitespace, including the
// ideographic space. The result is empty exactly when the input is blank.
func Clean(raw string) string {
	return strings.TrimSpace(raw)
}

// EscapeLike escapes '\', '%' and '_' for use inside a LIKE pattern.
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// Contains builds a substring pattern ('%term%') from a cleaned term.
func Contains(term string) string {
	return "%" + EscapeLike(term) + "%"
}
