package registry

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a registry document in either the list or map shape.
// An empty document, a missing "applications" key or an "applications"
// value of any other kind yields an empty registry.
func Parse(data []byte) (*Registry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Empty(), nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return Empty(), nil
	}

	apps := mappingValue(root, "applications")
	if apps == nil {
		return Empty(), nil
	}

	switch apps.Kind {
	case yaml.SequenceNode:
		return parseList(apps)
	case yaml.MappingNode:
		return parseMap(apps)
	default:
		return Empty(), nil
	}
}

// parseList handles the legacy shape. Records without a name are dropped.
func parseList(node *yaml.Node) (*Registry, error) {
	reg := Empty()
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			continue
		}
		fields, err := decodeFields(item)
		if err != nil {
			return nil, err
		}
		name := stringField(fields, "app_name")
		if name == "" {
			name = stringField(fields, "name")
		}
		if name == "" {
			continue
		}
		delete(fields, "app_name")
		delete(fields, "name")
		reg.put(normalize(name, fields))
	}
	return reg, nil
}

func parseMap(node *yaml.Node) (*Registry, error) {
	reg := Empty()
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if name == "" {
			continue
		}
		value := node.Content[i+1]

		fields := map[string]any{}
		if value.Kind == yaml.MappingNode {
			var err error
			if fields, err = decodeFields(value); err != nil {
				return nil, err
			}
		}
		reg.put(normalize(name, fields))
	}
	return reg, nil
}

func normalize(name string, fields map[string]any) Application {
	app := Application{
		Name:     name,
		IssueRef: stringField(fields, "jira"),
		Envs:     envList(fields["envs"]),
	}
	if app.IssueRef == "" {
		app.IssueRef = stringField(fields, "jira_ticket")
	}
	if app.IssueRef == "" {
		app.IssueRef = NoIssueRef
	}

	delete(fields, "jira")
	delete(fields, "jira_ticket")
	delete(fields, "envs")
	if len(fields) > 0 {
		app.Extra = fields
	}
	return app
}

func decodeFields(node *yaml.Node) (map[string]any, error) {
	fields := map[string]any{}
	if err := node.Decode(&fields); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return fields, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func stringField(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}

// envList accepts a sequence or a whitespace-separated string.
func envList(v any) []string {
	switch envs := v.(type) {
	case nil:
		return nil
	case string:
		return strings.Fields(envs)
	case []any:
		out := make([]string, 0, len(envs))
		for _, e := range envs {
			if e == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(e)); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return strings.Fields(fmt.Sprint(envs))
	}
}
