package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParse_MapShape(t *testing.T) {
	data := []byte(`
applications:
  billing-svc:
    jira: OPS-12
    envs: [dev, prod]
    owner: payments
  sample-app:
  checkout:
    jira_ticket: OPS-7
    envs: "dev staging"
`)

	reg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"billing-svc", "sample-app", "checkout"}, reg.Names())

	billing, ok := reg.Get("billing-svc")
	require.True(t, ok)
	assert.Equal(t, "OPS-12", billing.IssueRef)
	assert.Equal(t, []string{"dev", "prod"}, billing.Envs)
	assert.Equal(t, map[string]any{"owner": "payments"}, billing.Extra)

	sample, _ := reg.Get("sample-app")
	assert.Equal(t, NoIssueRef, sample.IssueRef)
	assert.Empty(t, sample.Envs)
	assert.Nil(t, sample.Extra)

	checkout, _ := reg.Get("checkout")
	assert.Equal(t, "OPS-7", checkout.IssueRef)
	assert.Equal(t, []string{"dev", "staging"}, checkout.Envs)
}

func TestParse_ListShape(t *testing.T) {
	data := []byte(`
applications:
  - app_name: alpha
    jira: OPS-1
    envs:
      - dev
  - name: beta
  - envs: [dev]
  - app_name: alpha
    jira: OPS-2
`)

	reg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, reg.Names(), "unnamed records dropped, duplicates keep first position")

	alpha, _ := reg.Get("alpha")
	assert.Equal(t, "OPS-2", alpha.IssueRef, "duplicates keep the last record")
	assert.Empty(t, alpha.Envs)

	beta, _ := reg.Get("beta")
	assert.Equal(t, NoIssueRef, beta.IssueRef)
}

func TestParse_JiraPrecedence(t *testing.T) {
	reg, err := Parse([]byte("applications:\n  a:\n    jira: OPS-1\n    jira_ticket: OPS-2\n  b:\n    jira: ''\n    jira_ticket: OPS-3\n"))
	require.NoError(t, err)

	a, _ := reg.Get("a")
	assert.Equal(t, "OPS-1", a.IssueRef)
	b, _ := reg.Get("b")
	assert.Equal(t, "OPS-3", b.IssueRef)
}

func TestParse_EmptyShapes(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty document", ""},
		{"no applications key", "other: 1\n"},
		{"null applications", "applications:\n"},
		{"empty map", "applications: {}\n"},
		{"scalar applications", "applications: nope\n"},
		{"scalar root", "just a string\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := Parse([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, 0, reg.Len())
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("applications: [unterminated\n"))
	assert.Error(t, err)
}

func TestNewApplications(t *testing.T) {
	base := New(Application{Name: "a"}, Application{Name: "b"})
	head := New(Application{Name: "c"}, Application{Name: "a"}, Application{Name: "d"}, Application{Name: "b"})

	added := NewApplications(base, head)
	names := make([]string, len(added))
	for i, app := range added {
		names[i] = app.Name
	}
	assert.Equal(t, []string{"c", "d"}, names)

	assert.Empty(t, NewApplications(head, head), "identical registries yield nothing")
	assert.Len(t, NewApplications(Empty(), head), 4, "empty base makes everything new")
	assert.Len(t, NewApplications(nil, head), 4)
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "config", "apps.yaml"))
		assert.True(t, errors.Is(err, ErrConfigMissing), "err = %v", err)
	})

	t.Run("present file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "apps.yaml")
		require.NoError(t, os.WriteFile(path, []byte("applications:\n  x: {}\n"), 0o644))

		reg, err := Load(path)
		require.NoError(t, err)
		assert.True(t, reg.Has("x"))
	})
}

type fakeRevisionReader struct {
	files map[string]string
	err   error
}

func (f fakeRevisionReader) ReadFileAt(rev, path string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.files[rev+":"+path]
	if !ok {
		return nil, errors.New("path does not exist")
	}
	return []byte(data), nil
}

func TestLoadRevision(t *testing.T) {
	reader := fakeRevisionReader{files: map[string]string{
		"origin/main:config/apps.yaml": "applications:\n  - app_name: base-app\n",
	}}

	reg, err := LoadRevision(reader, "origin/main", DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"base-app"}, reg.Names())

	_, err = LoadRevision(reader, "origin/other", DefaultPath)
	assert.Error(t, err)
}

func TestApplications_ReturnsCopy(t *testing.T) {
	reg := New(Application{Name: "a"})
	apps := reg.Applications()
	apps[0].Name = "mutated"

	assert.True(t, reg.Has("a"))
	assert.Equal(t, []string{"a"}, reg.Names())
}

func TestNewApplications_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`app-[a-z0-9]{1,4}`)
		baseNames := rapid.SliceOf(name).Draw(t, "base")
		headNames := rapid.SliceOf(name).Draw(t, "head")

		base := New(apps(baseNames)...)
		head := New(apps(headNames)...)

		var want []string
		for _, n := range head.Names() {
			if !base.Has(n) {
				want = append(want, n)
			}
		}

		var got []string
		for _, app := range NewApplications(base, head) {
			got = append(got, app.Name)
		}

		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Fatalf("NewApplications = %v, want %v", got, want)
		}
		if len(NewApplications(head, head)) != 0 {
			t.Fatalf("identical registries reported new applications")
		}
	})
}

func TestParse_ShapesAgree_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfN(rapid.StringMatching(`app-[a-z0-9]{1,6}`), 0, 10).Draw(t, "names")
		envs := rapid.SliceOfN(rapid.SampledFrom([]string{"dev", "staging", "prod"}), 0, 3).Draw(t, "envs")

		var list, mapping strings.Builder
		list.WriteString("applications:\n")
		mapping.WriteString("applications:\n")
		for _, n := range names {
			list.WriteString("  - app_name: " + n + "\n    envs: [" + strings.Join(envs, ", ") + "]\n")
			mapping.WriteString("  " + n + ":\n    envs: [" + strings.Join(envs, ", ") + "]\n")
		}
		if len(names) == 0 {
			list.Reset()
			list.WriteString("applications: []\n")
			mapping.Reset()
			mapping.WriteString("applications: {}\n")
		}

		fromList, err := Parse([]byte(list.String()))
		if err != nil {
			t.Fatalf("list shape: %v", err)
		}
		fromMap, err := Parse([]byte(mapping.String()))
		if err != nil {
			t.Fatalf("map shape: %v", err)
		}

		if strings.Join(fromList.Names(), ",") != strings.Join(fromMap.Names(), ",") {
			t.Fatalf("list names %v != map names %v", fromList.Names(), fromMap.Names())
		}
		for _, app := range fromList.Applications() {
			other, _ := fromMap.Get(app.Name)
			if strings.Join(app.Envs, " ") != strings.Join(other.Envs, " ") {
				t.Fatalf("envs differ for %s: %v vs %v", app.Name, app.Envs, other.Envs)
			}
		}
	})
}

func apps(names []string) []Application {
	out := make([]Application, len(names))
	for i, n := range names {
		out[i] = Application{Name: n, IssueRef: NoIssueRef}
	}
	return out
}
