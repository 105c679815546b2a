package registry

import (
	"errors"
	"fmt"
	"os"
)

// DefaultPath is the registry location relative to the repository root.
const DefaultPath = "config/apps.yaml"

// NoIssueRef is used when an application declares no issue-tracker reference.
const NoIssueRef = "no-jira"

// ErrConfigMissing indicates the registry file does not exist.
var ErrConfigMissing = errors.New("registry file not found")

// Application is one normalized registry record.
type Application struct {
	Name     string
	IssueRef string   // Never empty after normalization; NoIssueRef if absent
	Envs     []string // Target environments, possibly empty

	// Extra holds fields this package does not interpret.
	Extra map[string]any
}

// Registry is an ordered set of applications keyed by name.
type Registry struct {
	apps  []Application
	index map[string]int
}

// New builds a registry from apps in order. A repeated name keeps the
// position of its first occurrence and the contents of its last.
func New(apps ...Application) *Registry {
	r := &Registry{index: make(map[string]int, len(apps))}
	for _, app := range apps {
		r.put(app)
	}
	return r
}

// Empty returns a registry with no applications.
func Empty() *Registry {
	return New()
}

func (r *Registry) put(app Application) {
	if i, ok := r.index[app.Name]; ok {
		r.apps[i] = app
		return
	}
	r.index[app.Name] = len(r.apps)
	r.apps = append(r.apps, app)
}

// Len returns the number of applications.
func (r *Registry) Len() int {
	return len(r.apps)
}

// Has reports whether an application named name is declared.
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Get returns the application named name.
func (r *Registry) Get(name string) (Application, bool) {
	i, ok := r.index[name]
	if !ok {
		return Application{}, false
	}
	return r.apps[i], true
}

// Names returns application names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.apps))
	for i, app := range r.apps {
		names[i] = app.Name
	}
	return names
}

// Applications returns a copy of the applications in registry order.
func (r *Registry) Applications() []Application {
	out := make([]Application, len(r.apps))
	copy(out, r.apps)
	return out
}

// NewApplications returns the applications in head that base does not
// declare, in head's order.
func NewApplications(base, head *Registry) []Application {
	var added []Application
	for _, app := range head.apps {
		if base != nil && base.Has(app.Name) {
			continue
		}
		added = append(added, app)
	}
	return added
}

// Load reads and parses the registry file at path.
// Returns ErrConfigMissing if the file does not exist.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigMissing, path)
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return reg, nil
}

// RevisionReader reads a file as of a git revision.
type RevisionReader interface {
	ReadFileAt(rev, path string) ([]byte, error)
}

// LoadRevision reads and parses the registry at path as of rev.
func LoadRevision(r RevisionReader, rev, path string) (*Registry, error) {
	data, err := r.ReadFileAt(rev, path)
	if err != nil {
		return nil, err
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s at %s: %w", path, rev, err)
	}
	return reg, nil
}
