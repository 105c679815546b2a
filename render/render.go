package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultTemplate is the application every new application is copied from.
	DefaultTemplate = "test-one"

	// DefaultEntryFile and DefaultBaseFile are always rendered.
	DefaultEntryFile = "main.py"
	DefaultBaseFile  = "values.yaml"

	// DefaultOverlayPattern names the per-environment overlay; %s is the env.
	DefaultOverlayPattern = "values-%s.yaml"
)

var (
	// ErrTemplateMissing indicates the template application directory does not exist.
	ErrTemplateMissing = errors.New("template application not found")

	// ErrInvalidName indicates an application or environment name that
	// cannot be used as a path element.
	ErrInvalidName = errors.New("invalid name")
)

// Renderer copies the template application into new application directories.
type Renderer struct {
	appsDir        string
	template       string
	entryFile      string
	baseFile       string
	overlayPattern string
	logger         *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTemplate sets the template application name.
func WithTemplate(name string) Option {
	return func(r *Renderer) {
		r.template = name
	}
}

// WithFiles overrides the entry file, base file and overlay pattern.
// Empty values keep the defaults.
func WithFiles(entry, base, overlayPattern string) Option {
	return func(r *Renderer) {
		if entry != "" {
			r.entryFile = entry
		}
		if base != "" {
			r.baseFile = base
		}
		if overlayPattern != "" {
			r.overlayPattern = overlayPattern
		}
	}
}

// WithLogger sets the logger used for progress and skip notices.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// New creates a Renderer rooted at appsDir, the directory holding the
// template and generated applications.
func New(appsDir string, opts ...Option) *Renderer {
	r := &Renderer{
		appsDir:        appsDir,
		template:       DefaultTemplate,
		entryFile:      DefaultEntryFile,
		baseFile:       DefaultBaseFile,
		overlayPattern: DefaultOverlayPattern,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TemplateDir returns the template application directory.
func (r *Renderer) TemplateDir() string {
	return filepath.Join(r.appsDir, r.template)
}

// Result describes one Render call.
type Result struct {
	Dir     string   // Generated application directory
	Files   []string // File names written, in write order
	Skipped []string // Requested environments with no template overlay
}

// Render writes app's directory from the template. The entry and base
// files are always written; an overlay is written for each env that has
// one in the template and skipped with a warning otherwise. Existing
// files are overwritten.
func (r *Renderer) Render(app string, envs []string) (*Result, error) {
	if err := validName(app); err != nil {
		return nil, fmt.Errorf("application %q: %w", app, err)
	}

	src := r.TemplateDir()
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrTemplateMissing, src)
	}

	dest := filepath.Join(r.appsDir, app)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dest, err)
	}

	result := &Result{Dir: dest}
	for _, name := range []string{r.entryFile, r.baseFile} {
		if err := r.copyFile(src, dest, name, app); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, name)
	}

	for _, env := range envs {
		if validName(env) != nil {
			r.logger.Warn("skipping environment with invalid name", zap.String("env", env))
			result.Skipped = append(result.Skipped, env)
			continue
		}

		name := fmt.Sprintf(r.overlayPattern, env)
		if _, err := os.Stat(filepath.Join(src, name)); err != nil {
			r.logger.Warn("skipping environment, overlay not found in template",
				zap.String("env", env),
				zap.String("file", name))
			result.Skipped = append(result.Skipped, env)
			continue
		}
		if err := r.copyFile(src, dest, name, app); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, name)
	}

	r.logger.Info("generated application",
		zap.String("app", app),
		zap.String("dir", dest),
		zap.Strings("files", result.Files))
	return result, nil
}

func (r *Renderer) copyFile(srcDir, destDir, name, app string) error {
	data, err := os.ReadFile(filepath.Join(srcDir, name))
	if err != nil {
		return fmt.Errorf("read template file: %w", err)
	}

	out := Rewrite(string(data), r.template, app)
	if err := os.WriteFile(filepath.Join(destDir, name), []byte(out), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}
