package activity

import (
	"strconv"
	"strings"
)

const (
	insertionWord = "insertion"
	deletionWord  = "deletion"
)

// ParseDiffStat extracts the insertion and deletion counts from a git
// --stat summary such as " 3 files changed, 10 insertions(+), 2 deletions(-)".
//
// Only the last non-empty line is read. It is split on commas and the
// leading integer of each part mentioning "insertion" or "deletion" is taken.
// A missing count is zero. Any malformed part yields (0, 0).
func ParseDiffStat(summary string) (insertions, deletions int) {
	line := lastLine(summary)
	if !strings.Contains(line, insertionWord) && !strings.Contains(line, deletionWord) {
		return 0, 0
	}

	for part := range strings.SplitSeq(line, ",") {
		var target *int

		switch {
		case strings.Contains(part, insertionWord):
			target = &insertions
		case strings.Contains(part, deletionWord):
			target = &deletions
		default:
			continue
		}

		n, ok := leadingInt(part)
		if !ok {
			return 0, 0
		}

		*target = n
	}

	return insertions, deletions
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	return strings.TrimSpace(lines[len(lines)-1])
}

func leadingInt(part string) (int, bool) {
	fields := strings.Fields(part)
	if len(fields) == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0, false
	}

	return n, true
}
