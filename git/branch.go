package git

import "strings"

// DefaultBranchPrefix is the type prefix for new-application branches.
const DefaultBranchPrefix = "new_app"

// BranchNamer generates branch names for application propagation.
type BranchNamer struct {
	Prefix string // Branch type prefix (e.g., "new_app")
}

// DefaultBranchNamer returns a namer with the default prefix.
func DefaultBranchNamer() *BranchNamer {
	return &BranchNamer{Prefix: DefaultBranchPrefix}
}

// ForApp generates the branch for configuring an application.
// Example: "OPS-12", "billing-svc" -> "new_app/OPS-12/configure-billing-svc"
func (n *BranchNamer) ForApp(issueRef, app string) string {
	prefix := n.Prefix
	if prefix == "" {
		prefix = DefaultBranchPrefix
	}
	return prefix + "/" + issueRef + "/configure-" + app
}

// ParseAppBranch extracts the issue reference and application name from a
// branch produced by ForApp. ok is false for any other branch shape.
func ParseAppBranch(branch string) (issueRef, app string, ok bool) {
	branch = strings.TrimPrefix(branch, "refs/heads/")

	parts := strings.SplitN(branch, "/", 3)
	if len(parts) != 3 {
		return "", "", false
	}
	if !strings.HasPrefix(parts[2], "configure-") {
		return "", "", false
	}
	app = strings.TrimPrefix(parts[2], "configure-")
	if parts[1] == "" || app == "" {
		return "", "", false
	}
	return parts[1], app, true
}
