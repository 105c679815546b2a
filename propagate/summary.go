package propagate

import (
	"fmt"
	"strings"
)

// Record is one pull request created (or found) by a run.
type Record struct {
	Repo string
	// Ref is the pull request URL, or the raw creation output when no URL
	// could be parsed from it.
	Ref string
}

// SummaryComment builds the comment posted on the originating pull request.
func SummaryComment(apps []string, records []Record) string {
	lines := []string{
		fmt.Sprintf("Template values have been generated to deploy the following app(s): %s", strings.Join(apps, ", ")),
		"",
		"PRs created/updated by this automation:",
	}
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("- %s → %s", r.Repo, r.Ref))
	}
	return strings.Join(lines, "\n")
}
