package toolbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
)

// Names and argument fields of the built-in capabilities.
const (
	RenderAltairName  = "render_altair"
	RenderAltairField = "json_graph"
	CheckWorkName     = "check_work"
	CheckWorkField    = "validation_results"
)

// ValidationResult marks one region of the student's work as correct or incorrect.
// Coordinates are in the coordinate space of the shared canvas.
type ValidationResult struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Correct bool    `json:"correct"`
}

var errInvalidJSON = errors.New("invalid JSON")

// RenderAltair declares render_altair. The effect receives the decoded json_graph document
// byte-for-byte as sent by the session, after a syntax check.
func RenderAltair(effect func(ctx context.Context, graph json.RawMessage) error) (*Capability, error) {
	return NewCapabilityFunc(
		RenderAltairName,
		"Displays an altair graph in json format.",
		RenderAltairField,
		parseRawJSON,
		effect,
		WithFieldDescription("JSON STRING representation of the graph to render. Must be a string, not a json object"),
	)
}

// CheckWork declares check_work. The effect receives the decoded validation results.
func CheckWork(effect func(ctx context.Context, results []ValidationResult) error) (*Capability, error) {
	return NewCapabilityFunc(
		CheckWorkName,
		"Marks regions of the student's work on the canvas as correct or incorrect.",
		CheckWorkField,
		parseValidationResults,
		effect,
		WithFieldDescription(`JSON STRING of an array of objects {"x":number,"y":number,"width":number,"height":number,"correct":boolean}. Must be a string, not a json array`),
	)
}

func parseRawJSON(data []byte) (json.RawMessage, error) {
	if !json.Valid(data) {
		return nil, errInvalidJSON
	}
	return json.RawMessage(bytes.Clone(data)), nil
}

func parseValidationResults(data []byte) ([]ValidationResult, error) {
	var results []ValidationResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Instructions is the system-instruction text that tells the session when to invoke the
// built-in capabilities.
const Instructions = `You are an educational AI tutor specializing in Math and Physics. You see the student's work on a shared canvas and give feedback on it plus hints to move ahead with the question.

When analyzing the student's work, check mathematical correctness, logical flow, units, formula application and conceptual clarity. When several mistakes exist, address only the FIRST one. Keep feedback concise and precise. If the final solution is correct, congratulate the student; otherwise give a hint that prompts them to think and try again. Keep a supportive, friendly tone.

After reviewing the work, call "check_work" with a JSON string in "validation_results": an array of regions {"x","y","width","height","correct"} marking each step you checked. When a chart helps the explanation, call "render_altair" with a JSON string in "json_graph" holding an Altair/Vega-Lite spec. Do not ask for more information; make your best judgment. Always pass these arguments as strings, never as objects.`
