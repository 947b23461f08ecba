// Package prompts renders the generation prompt for each write strategy.
package prompts

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/specforge/internal/plan"
)

// Template names, one per write strategy.
const (
	Create   = "create"
	Predict  = "predict"
	Optimize = "optimize"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Data is the value passed to every template.
type Data struct {
	UserInput string
	Project   *plan.Project
}

// Set holds parsed prompt templates keyed by strategy name.
type Set struct {
	templates map[string]*template.Template
}

var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	},
}

// Default returns the built-in templates.
func Default() (*Set, error) {
	return parseSet(defaultTemplates, nil)
}

// Load returns the built-in templates overridden by the entries in the YAML
// file at path. An empty path returns the defaults.
func Load(path string) (*Set, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompts: read %s: %w", path, err)
	}
	base, err := Default()
	if err != nil {
		return nil, err
	}
	set, err := parseSet(data, base)
	if err != nil {
		return nil, fmt.Errorf("prompts: %s: %w", path, err)
	}
	return set, nil
}

// parseSet decodes a YAML mapping of name to template text. Names missing
// from data are taken from base.
func parseSet(data []byte, base *Set) (*Set, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}

	set := &Set{templates: map[string]*template.Template{}}
	if base != nil {
		for name, tmpl := range base.templates {
			set.templates[name] = tmpl
		}
	}

	for name, text := range raw {
		if !isKnown(name) {
			return nil, fmt.Errorf("unknown template %q; valid templates: %s", name, strings.Join(Names(), ", "))
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("template %q is empty", name)
		}
		tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse template %q: %w", name, err)
		}
		set.templates[name] = tmpl
	}

	for _, name := range Names() {
		if _, ok := set.templates[name]; !ok {
			return nil, fmt.Errorf("template %q is missing", name)
		}
	}
	return set, nil
}

// Render executes the named template.
func (s *Set) Render(name string, data Data) (string, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}
	return buf.String(), nil
}

// Names returns the template names in sorted order.
func Names() []string {
	names := []string{Create, Predict, Optimize}
	sort.Strings(names)
	return names
}

func isKnown(name string) bool {
	switch name {
	case Create, Predict, Optimize:
		return true
	}
	return false
}

// MustDefault is like Default but panics if the built-in templates are invalid.
func MustDefault() *Set {
	set, err := Default()
	if err != nil {
		panic(err)
	}
	return set
}
