package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRunArgs(t *testing.T) {
	inv, err := parseRunArgs([]string{"upper", "--str=hello", "--json", "--timeout=250"})
	require.NoError(t, err)
	require.NotNil(t, inv)

	assert.Equal(t, "upper", inv.slug)
	assert.Equal(t, map[string]string{"str": "hello"}, inv.params)
	assert.True(t, inv.jsonOut)
	assert.Equal(t, 250, inv.timeoutMS)
}

func TestParseRunArgsSlugAfterFlags(t *testing.T) {
	inv, err := parseRunArgs([]string{"--str=hello", "upper"})
	require.NoError(t, err)
	assert.Equal(t, "upper", inv.slug)
}

func TestParseRunArgsValuesMayContainEquals(t *testing.T) {
	inv, err := parseRunArgs([]string{"render", "--tmpl=a=b"})
	require.NoError(t, err)
	assert.Equal(t, "a=b", inv.params["tmpl"])
}

func TestParseRunArgsHelpRequest(t *testing.T) {
	inv, err := parseRunArgs([]string{"upper", "--help"})
	require.NoError(t, err)
	assert.Nil(t, inv)
}

func TestParseRunArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no slug", []string{"--str=hello"}},
		{"two slugs", []string{"upper", "lower"}},
		{"bare flag", []string{"upper", "--str"}},
		{"bad timeout", []string{"upper", "--timeout=soon"}},
		{"zero timeout", []string{"upper", "--timeout=0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRunArgs(tt.args)
			assert.Error(t, err)
		})
	}
}
