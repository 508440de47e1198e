package setup

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skosovsky/toolbridge"
)

func testRegistry(t *testing.T) *toolbridge.Registry {
	t.Helper()
	render, err := toolbridge.RenderAltair(func(context.Context, json.RawMessage) error { return nil })
	require.NoError(t, err)
	check, err := toolbridge.CheckWork(func(context.Context, []toolbridge.ValidationResult) error { return nil })
	require.NoError(t, err)
	return toolbridge.MustRegistry(render, check)
}

func TestBuild(t *testing.T) {
	p := Build(Config{
		Model:              "models/gemini-2.0-flash-exp",
		ResponseModalities: []string{"audio"},
		Voice:              "Aoede",
		SystemInstruction:  toolbridge.Instructions,
		GoogleSearch:       true,
	}, testRegistry(t))

	assert.Equal(t, "models/gemini-2.0-flash-exp", p.Model)
	assert.Equal(t, []string{"audio"}, p.GenerationConfig.ResponseModalities)
	require.NotNil(t, p.GenerationConfig.SpeechConfig)
	assert.Equal(t, "Aoede", p.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
	require.NotNil(t, p.SystemInstruction)
	assert.Equal(t, toolbridge.Instructions, p.SystemInstruction.Parts[0].Text)

	require.Len(t, p.Tools, 2)
	assert.NotNil(t, p.Tools[0].GoogleSearch)
	require.Len(t, p.Tools[1].FunctionDeclarations, 2)
	assert.Equal(t, "render_altair", p.Tools[1].FunctionDeclarations[0].Name)
	assert.Equal(t, "check_work", p.Tools[1].FunctionDeclarations[1].Name)
}

func TestBuild_JSONShape(t *testing.T) {
	p := Build(Config{Model: "m", GoogleSearch: true}, testRegistry(t))
	data, err := json.Marshal(p)
	require.NoError(t, err)
	var v map[string]any
	require.NoError(t, json.Unmarshal(data, &v))
	assert.NotContains(t, v, "systemInstruction")
	tools := v["tools"].([]any)
	require.Len(t, tools, 2)
	assert.Equal(t, map[string]any{}, tools[0].(map[string]any)["googleSearch"])
	assert.Contains(t, tools[1], "functionDeclarations")
	gen := v["generationConfig"].(map[string]any)
	assert.NotContains(t, gen, "speechConfig")
}

func TestBuild_NoCapabilities(t *testing.T) {
	p := Build(Config{Model: "m"}, nil)
	assert.Empty(t, p.Tools)
	p = Build(Config{Model: "m"}, toolbridge.MustRegistry())
	assert.Empty(t, p.Tools)
}
