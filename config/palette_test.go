package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultPaletteCoversMarkdownDescriptors(t *testing.T) {
	p := DefaultPalette()
	assert.Greater(t, len(p), 1)

	header := p.StyleFor("header")
	assert.True(t, header.Bold)

	italic := p.StyleFor("italic")
	assert.True(t, italic.Italic)

	assert.Equal(t, StyleConfig{}, p.StyleFor("no-such-descriptor"))
}

func TestDefaultPaletteRoundTripsThroughYaml(t *testing.T) {
	data, err := yaml.Marshal(DefaultPalette())
	require.NoError(t, err)

	var p Palette
	require.NoError(t, yaml.Unmarshal(data, &p))
	assert.Equal(t, DefaultPalette(), p)
}
