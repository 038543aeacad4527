package snippet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upperFile = `---
slug: upper
language: go
description: Uppercase a string
params:
  - name: str
    type: string
    required: true
---

strings.ToUpper(str)
`

func TestParseFrontmatterFile(t *testing.T) {
	sn, err := Parse([]byte(upperFile))
	require.NoError(t, err)

	assert.Equal(t, "upper", sn.Slug)
	assert.Equal(t, "go", sn.Language)
	assert.Equal(t, "Uppercase a string", sn.Description)
	require.Len(t, sn.Params, 1)
	assert.Equal(t, "str", sn.Params[0].Name)
	assert.True(t, sn.Params[0].Required)
	assert.Equal(t, "strings.ToUpper(str)", sn.Source)
}

func TestParseRejectsMalformedFiles(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no frontmatter", "strings.ToUpper(str)\n"},
		{"unterminated header", "---\nslug: upper\nlanguage: go\n"},
		{"bad yaml", "---\nslug: [\n---\nbody\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseWindowsLineEndings(t *testing.T) {
	sn, err := Parse([]byte(strings.ReplaceAll(upperFile, "\n", "\r\n")))
	require.NoError(t, err)
	assert.Equal(t, "upper", sn.Slug)
	assert.Equal(t, "strings.ToUpper(str)", sn.Source)
}

func TestMarshalRoundTrip(t *testing.T) {
	sn, err := Parse([]byte(upperFile))
	require.NoError(t, err)

	data, err := sn.Marshal()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, sn, again)
}

func TestValidateSchemaRules(t *testing.T) {
	base := func() *Snippet {
		return &Snippet{
			Slug:     "ok",
			Language: "go",
			Params:   []Param{{Name: "n", Type: "number"}},
			Source:   "n * 2",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Snippet)
		wantErr string
	}{
		{"valid", func(s *Snippet) {}, ""},
		{"bad slug", func(s *Snippet) { s.Slug = "Not Valid" }, "invalid slug"},
		{"missing language", func(s *Snippet) { s.Language = "" }, "missing language"},
		{"bad param name", func(s *Snippet) { s.Params[0].Name = "2fast" }, "invalid parameter name"},
		{"reserved stdin", func(s *Snippet) { s.Params[0].Name = "stdin" }, "reserved"},
		{"reserved input", func(s *Snippet) { s.Params[0].Name = "input" }, "reserved"},
		{"duplicate param", func(s *Snippet) { s.Params = append(s.Params, Param{Name: "n", Type: "string"}) }, "duplicate"},
		{"unknown type", func(s *Snippet) { s.Params[0].Type = "tuple" }, "unknown type"},
		{"default type mismatch", func(s *Snippet) { s.Params[0].Default = "ten" }, "does not match type"},
		{"default matches", func(s *Snippet) { s.Params[0].Default = 10 }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sn := base()
			tt.mutate(sn)
			err := sn.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestExecutable(t *testing.T) {
	assert.True(t, (&Snippet{Language: "go"}).Executable())
	assert.False(t, (&Snippet{Language: "python"}).Executable())
}

func TestEngineView(t *testing.T) {
	sn, err := Parse([]byte(upperFile))
	require.NoError(t, err)

	view := sn.Engine()
	assert.Equal(t, "upper", view.Slug)
	require.Len(t, view.Params, 1)
	assert.Equal(t, "str", view.Params[0].Name)
	assert.True(t, view.Params[0].Required)
}
