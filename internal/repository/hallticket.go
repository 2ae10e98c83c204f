package repository

import (
	"strconv"
	"strings"
)

// nextHallTicket computes the next hall ticket for a prefix given every
// ticket already issued with that prefix. The numeric suffixes form one
// consecutive sequence: the next ticket is max(suffix)+1, or start when no
// parseable suffix exists. Malformed suffixes are ignored.
func nextHallTicket(prefix string, start int, existing []string) string {
	next := start
	for _, ticket := range existing {
		suffix, ok := strings.CutPrefix(ticket, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n+1 > next {
			next = n + 1
		}
	}
	return prefix + strconv.Itoa(next)
}
