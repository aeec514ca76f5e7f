// Package command implements the wire-level command grammar shared by the
// KV service and the learner: whitespace-delimited, at most three tokens,
// with the third token absorbing any remaining whitespace so multi-word
// values ("leg spin") survive tokenisation intact.
package command

import "strings"

// Tokenize splits a command string into at most three parts. The first two
// parts are single words; the third, if present, is every remaining word
// joined by single spaces (runs of whitespace collapse to one space).
func Tokenize(s string) []string {
	fields := strings.Fields(s)
	switch {
	case len(fields) == 0:
		return nil
	case len(fields) <= 3:
		return fields
	default:
		return []string{fields[0], fields[1], strings.Join(fields[2:], " ")}
	}
}
