package config

import "github.com/iyulab/webflux/reconstruct"

// ReconstructOptions is the configuration-layer DTO for the Reconstruct
// stage (spec §6): a strategy name plus a free-form per-variant parameter
// map, the way the teacher's configDTO carries optional overrides.
type ReconstructOptions struct {
	Strategy  string // "Auto" or an explicit variant name
	UseLLM    bool
	MaxTokens int
	Params    map[string]string
}

// DefaultReconstructOptions leaves variant selection to the Factory's Auto
// heuristic.
func DefaultReconstructOptions() ReconstructOptions {
	return ReconstructOptions{Strategy: "Auto", UseLLM: true}
}

// ToStrategyOptions adapts the config DTO to reconstruct.Options.
func (r ReconstructOptions) ToStrategyOptions() reconstruct.Options {
	return reconstruct.Options{
		Variant:   r.Strategy,
		UseLLM:    r.UseLLM,
		MaxTokens: r.MaxTokens,
		Params:    r.Params,
	}
}
