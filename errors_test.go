package toolbridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgumentError(t *testing.T) {
	inner := &json.SyntaxError{Offset: 1}
	err := &ArgumentError{Capability: "check_work", Field: "validation_results", Reason: "not json", Err: inner}
	assert.Equal(t, `check_work: malformed "validation_results" argument: not json`, err.Error())
	assert.ErrorIs(t, err, ErrMalformedArguments)
	var se *json.SyntaxError
	assert.ErrorAs(t, err, &se)
	assert.True(t, IsArgumentError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsEffectError(err))
}

func TestEffectError(t *testing.T) {
	inner := errors.New("render failed")
	err := &EffectError{Capability: "render_altair", Err: inner}
	assert.Equal(t, "render_altair: effect failed: render failed", err.Error())
	assert.Same(t, inner, err.Unwrap())
	assert.True(t, IsEffectError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, errors.Is(err, ErrMalformedArguments))
}

func TestPanicError(t *testing.T) {
	err := &EffectError{Capability: "c", Err: &panicError{p: "oops"}}
	require.Contains(t, err.Error(), "panic: oops")
}
