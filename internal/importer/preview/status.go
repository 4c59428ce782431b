package preview

import (
	"fmt"
)

// Status is the derived state of a preview row.
type Status int

const (
	StatusValid Status = iota + 1
	StatusWarning
	StatusDuplicate
	StatusNeedsFx
	StatusInvalid
)

// Statuses lists every status from least to most severe.
var Statuses = []Status{StatusValid, StatusWarning, StatusDuplicate, StatusNeedsFx, StatusInvalid}

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusWarning:
		return "warning"
	case StatusDuplicate:
		return "duplicate"
	case StatusNeedsFx:
		return "needs-fx"
	case StatusInvalid:
		return "invalid"
	}

	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Counts tallies rows per status.
func Counts(rows []Row) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, r := range rows {
		counts[r.Status()]++
	}

	return counts
}

// Importable returns the rows a commit may persist: never invalid or
// needs-fx, and duplicates only when includeDuplicates is set.
func Importable(rows []Row, includeDuplicates bool) []Row {
	var out []Row

	for _, r := range rows {
		switch r.Status() {
		case StatusInvalid, StatusNeedsFx:
			continue
		case StatusDuplicate:
			if !includeDuplicates {
				continue
			}
		}

		out = append(out, r)
	}

	return out
}
