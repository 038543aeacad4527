// Package snippet defines the on-disk snippet format and the local store.
//
// A snippet file is a yaml frontmatter block followed by the source body:
//
//	---
//	slug: upper
//	language: go
//	description: Uppercase a string
//	params:
//	  - name: str
//	    type: string
//	    required: true
//	---
//	strings.ToUpper(str)
package snippet

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"temper/internal/engine"
)

// Param is one declared parameter in a snippet's schema.
type Param struct {
	Name        string      `yaml:"name" json:"name"`
	Type        string      `yaml:"type" json:"type"`
	Required    bool        `yaml:"required,omitempty" json:"required,omitempty"`
	Default     interface{} `yaml:"default,omitempty" json:"default,omitempty"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
}

// Snippet is a stored snippet record: metadata plus source body.
type Snippet struct {
	Slug        string  `yaml:"slug" json:"slug"`
	Language    string  `yaml:"language" json:"language"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Params      []Param `yaml:"params,omitempty" json:"params,omitempty"`
	Source      string  `yaml:"-" json:"source"`
}

const delimiter = "---"

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	paramPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// Parse reads a frontmatter snippet file.
func Parse(data []byte) (*Snippet, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, delimiter+"\n") {
		return nil, errors.New("missing frontmatter header")
	}
	rest := text[len(delimiter)+1:]
	end := strings.Index(rest, "\n"+delimiter)
	if end < 0 {
		return nil, errors.New("unterminated frontmatter header")
	}
	header := rest[:end]
	body := rest[end+1+len(delimiter):]
	// Skip the remainder of the delimiter line.
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}

	var sn Snippet
	if err := yaml.Unmarshal([]byte(header), &sn); err != nil {
		return nil, fmt.Errorf("parsing frontmatter: %w", err)
	}
	sn.Source = strings.TrimSpace(body)
	if err := sn.Validate(); err != nil {
		return nil, err
	}
	return &sn, nil
}

// Marshal renders the snippet back to its file form.
func (s *Snippet) Marshal() ([]byte, error) {
	header, err := yaml.Marshal(s)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString(delimiter + "\n")
	b.Write(header)
	b.WriteString(delimiter + "\n\n")
	b.WriteString(s.Source)
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// Validate enforces the load-time schema rules: slug and language present,
// parameter names legal, unique and not reserved, types known, and defaults
// matching their declared type. Reserved-name schemas are rejected here
// instead of being silently masked at run time.
func (s *Snippet) Validate() error {
	if !slugPattern.MatchString(s.Slug) {
		return fmt.Errorf("invalid slug %q", s.Slug)
	}
	if s.Language == "" {
		return fmt.Errorf("snippet %q: missing language", s.Slug)
	}
	seen := make(map[string]bool, len(s.Params))
	for _, p := range s.Params {
		if !paramPattern.MatchString(p.Name) {
			return fmt.Errorf("snippet %q: invalid parameter name %q", s.Slug, p.Name)
		}
		if p.Name == engine.ReservedStdin || p.Name == engine.ReservedInput {
			return fmt.Errorf("snippet %q: parameter name %q is reserved", s.Slug, p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("snippet %q: duplicate parameter %q", s.Slug, p.Name)
		}
		seen[p.Name] = true
		if !engine.KnownType(engine.ParamType(p.Type)) {
			return fmt.Errorf("snippet %q: parameter %q has unknown type %q", s.Slug, p.Name, p.Type)
		}
		if p.Default != nil {
			v, ok := engine.ValueOf(p.Default)
			if !ok || !v.Matches(engine.ParamType(p.Type)) {
				return fmt.Errorf("snippet %q: default for %q does not match type %s", s.Slug, p.Name, p.Type)
			}
		}
	}
	return nil
}

// Executable reports whether the engine can dispatch this snippet.
func (s *Snippet) Executable() bool {
	return s.Language == engine.ExecutableLanguage
}

// Engine converts the record to the engine's read-only view.
func (s *Snippet) Engine() engine.Snippet {
	params := make([]engine.ParameterSpec, len(s.Params))
	for i, p := range s.Params {
		params[i] = engine.ParameterSpec{
			Name:        p.Name,
			Type:        engine.ParamType(p.Type),
			Required:    p.Required,
			Default:     p.Default,
			Description: p.Description,
		}
	}
	return engine.Snippet{
		Slug:     s.Slug,
		Language: s.Language,
		Source:   s.Source,
		Params:   params,
	}
}
