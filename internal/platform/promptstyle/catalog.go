package promptstyle

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsFS embed.FS

const (
	GuideChat  = "guide_chat"
	Invitation = "invitation"
	Poster     = "poster"
)

type Prompt struct {
	Name   string
	System string
	User   *template.Template
}

// Render executes the user template. Missing keys render as empty strings.
func (p Prompt) Render(vars map[string]string) (string, error) {
	if p.User == nil {
		return "", fmt.Errorf("prompt %s has no user template", p.Name)
	}
	var buf bytes.Buffer
	if err := p.User.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", p.Name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

type Catalog struct {
	prompts map[string]Prompt
}

func (c *Catalog) Get(name string) (Prompt, error) {
	p, ok := c.prompts[name]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt %q", name)
	}
	return p, nil
}

type yamlCatalog struct {
	Version int                   `yaml:"version"`
	Prompts map[string]yamlPrompt `yaml:"prompts"`
}

type yamlPrompt struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

var (
	loadOnce sync.Once
	loaded   *Catalog
	loadErr  error
)

// Load parses the embedded prompts.yaml once.
func Load() (*Catalog, error) {
	loadOnce.Do(func() {
		raw, err := promptsFS.ReadFile("prompts.yaml")
		if err != nil {
			loadErr = err
			return
		}
		loaded, loadErr = Parse(raw)
	})
	return loaded, loadErr
}

func Parse(raw []byte) (*Catalog, error) {
	var spec yamlCatalog
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	if len(spec.Prompts) == 0 {
		return nil, fmt.Errorf("prompts: no prompts defined")
	}
	c := &Catalog{prompts: make(map[string]Prompt, len(spec.Prompts))}
	for name, p := range spec.Prompts {
		tmpl, err := template.New(name).Option("missingkey=zero").Parse(p.User)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", name, err)
		}
		c.prompts[name] = Prompt{Name: name, System: strings.TrimSpace(p.System), User: tmpl}
	}
	return c, nil
}
