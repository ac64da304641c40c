package rcs

import (
	"github.com/ianbruene/go-difflib/difflib"
)

// Diff computes an edit script that transforms from into to, in the form
// RCS stores deltas: deletions before additions at the same position, line
// numbers relative to from.
func Diff(from, to [][]byte) Script {
	a, b := toStrings(from), toStrings(to)
	matcher := difflib.NewMatcherWithJunk(a, b, false, nil)

	var script Script
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'd', 'r':
			script = append(script, Command{Op: OpDelete, Line: op.I1 + 1, Count: op.I2 - op.I1})
		}
		switch op.Tag {
		case 'i', 'r':
			script = append(script, Command{Op: OpAdd, Line: op.I2, Count: op.J2 - op.J1, Lines: to[op.J1:op.J2]})
		}
	}
	return script
}

func toStrings(lines [][]byte) []string {
	out := make([]string, len(lines))
	for idx, line := range lines {
		out[idx] = string(line)
	}
	return out
}
