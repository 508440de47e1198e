package toolbridge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinDeclarations(t *testing.T) {
	var e effects
	decls := builtinRegistry(t, &e).Declarations()
	require.Len(t, decls, 2)

	tests := []struct {
		name  string
		field string
	}{
		{RenderAltairName, RenderAltairField},
		{CheckWorkName, CheckWorkField},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decls[i]
			assert.Equal(t, tt.name, d.Name)
			assert.NotEmpty(t, d.Description)
			assert.Equal(t, "object", d.Parameters["type"])
			assert.Equal(t, []any{tt.field}, d.Parameters["required"])
			props := d.Parameters["properties"].(map[string]any)
			field := props[tt.field].(map[string]any)
			assert.Equal(t, "string", field["type"])
			assert.NotEmpty(t, field["description"])
		})
	}
}

func TestBuiltinDeclarations_JSON(t *testing.T) {
	var e effects
	data, err := json.Marshal(builtinRegistry(t, &e).Declarations()[0])
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "render_altair", back["name"])
	assert.Contains(t, back, "parameters")
}

func TestRenderAltair_RejectsInvalidJSON(t *testing.T) {
	called := false
	c, err := RenderAltair(func(context.Context, json.RawMessage) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	err = c.Invoke(context.Background(), raw(`{"json_graph":"{\"mark\":"}`))
	require.ErrorIs(t, err, ErrMalformedArguments)
	assert.False(t, called)
}

func TestCheckWork_RejectsWrongShape(t *testing.T) {
	c, err := CheckWork(func(context.Context, []ValidationResult) error { return nil })
	require.NoError(t, err)
	tests := []string{
		`{"validation_results":"not-json"}`,
		`{"validation_results":"{\"x\":1}"}`,
		`{"validation_results":"[{\"correct\":\"yes\"}]"}`,
		`{"validation_results":[]}`,
	}
	for _, args := range tests {
		t.Run(args, func(t *testing.T) {
			require.ErrorIs(t, c.Invoke(context.Background(), raw(args)), ErrMalformedArguments)
		})
	}
}

func TestInstructions_MentionCapabilities(t *testing.T) {
	assert.Contains(t, Instructions, CheckWorkName)
	assert.Contains(t, Instructions, RenderAltairName)
}
