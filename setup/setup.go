// Package setup assembles the session setup message that advertises toolbridge
// capabilities to a live session. The session transport sends it; this package only
// builds the payload.
package setup

import (
	"github.com/skosovsky/toolbridge"
)

// Config holds the session settings that accompany the capability declarations.
type Config struct {
	Model              string
	ResponseModalities []string
	Voice              string
	SystemInstruction  string
	// GoogleSearch adds the search grant next to the function declarations.
	GoogleSearch bool
}

// Payload is the setup message.
type Payload struct {
	Model             string           `json:"model"`
	GenerationConfig  GenerationConfig `json:"generationConfig"`
	SystemInstruction *Content         `json:"systemInstruction,omitempty"`
	Tools             []Tool           `json:"tools,omitempty"`
}

type GenerationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speechConfig,omitempty"`
}

type SpeechConfig struct {
	VoiceConfig VoiceConfig `json:"voiceConfig"`
}

type VoiceConfig struct {
	PrebuiltVoiceConfig PrebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type Content struct {
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

// Tool is one entry of the tools list: either a grant (GoogleSearch) or a set of declarations.
type Tool struct {
	GoogleSearch         *struct{}                `json:"googleSearch,omitempty"`
	FunctionDeclarations []toolbridge.Declaration `json:"functionDeclarations,omitempty"`
}

// Build returns the setup payload for cfg with the declarations of reg, in registry order.
// A nil or empty registry yields no function declarations entry.
func Build(cfg Config, reg *toolbridge.Registry) Payload {
	p := Payload{
		Model: cfg.Model,
		GenerationConfig: GenerationConfig{
			ResponseModalities: append([]string(nil), cfg.ResponseModalities...),
		},
	}
	if cfg.Voice != "" {
		p.GenerationConfig.SpeechConfig = &SpeechConfig{
			VoiceConfig: VoiceConfig{PrebuiltVoiceConfig: PrebuiltVoiceConfig{VoiceName: cfg.Voice}},
		}
	}
	if cfg.SystemInstruction != "" {
		p.SystemInstruction = &Content{Parts: []Part{{Text: cfg.SystemInstruction}}}
	}
	if cfg.GoogleSearch {
		p.Tools = append(p.Tools, Tool{GoogleSearch: &struct{}{}})
	}
	if reg != nil && reg.Len() > 0 {
		p.Tools = append(p.Tools, Tool{FunctionDeclarations: reg.Declarations()})
	}
	return p
}
