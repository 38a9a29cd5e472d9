package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScanConfigValid(t *testing.T) {
	cfg, err := NewScanConfig([]string{"js", ".TS", " jsx "}, []string{"node_modules", "*.min.js"}, 10)
	require.NoError(t, err)

	assert.True(t, cfg.HasType("js"))
	assert.True(t, cfg.HasType("ts"))
	assert.True(t, cfg.HasType("JSX"))
	assert.False(t, cfg.HasType("py"))
	assert.Equal(t, []string{"node_modules", "*.min.js"}, cfg.ExcludePatterns())
	assert.Equal(t, 10, cfg.MaxWalkDepth())
}

func TestNewScanConfigDepthBounds(t *testing.T) {
	for _, depth := range []int{0, -1, 51, 1000} {
		_, err := NewScanConfig([]string{"js"}, nil, depth)
		require.Error(t, err, "depth %d", depth)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}

	for _, depth := range []int{1, 50} {
		_, err := NewScanConfig([]string{"js"}, nil, depth)
		assert.NoError(t, err, "depth %d", depth)
	}
}

func TestNewScanConfigRejectsBadTypes(t *testing.T) {
	cases := [][]string{
		nil,
		{""},
		{"js!"},
		{"a/b"},
		{strings.Repeat("x", 21)},
	}
	for _, types := range cases {
		_, err := NewScanConfig(types, nil, 5)
		require.Error(t, err, "types %v", types)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestNewScanConfigRejectsBadExcludes(t *testing.T) {
	_, err := NewScanConfig([]string{"js"}, []string{"../evil"}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewScanConfig([]string{"js"}, []string{strings.Repeat("x", 201)}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	many := make([]string, 101)
	for i := range many {
		many[i] = "p"
	}
	_, err = NewScanConfig([]string{"js"}, many, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewScanConfigDropsEmptyExcludes(t *testing.T) {
	cfg, err := NewScanConfig([]string{"js"}, []string{"", "  ", "dist"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"dist"}, cfg.ExcludePatterns())
}
