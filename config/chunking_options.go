package config

import "github.com/iyulab/webflux/chunk"

// ChunkingOptions is the configuration-layer DTO for the Chunking stage
// (spec §6): max/min chunk size, overlap, and a strategy-specific options
// map, mirroring the teacher's configDTO pattern of named numeric knobs
// plus a free-form escape hatch.
type ChunkingOptions struct {
	MaxSize  int
	MinSize  int
	Overlap  int
	Strategy string            // explicit strategy name, or "" to defer to chunkselect
	Params   map[string]string // strategy-specific overrides (e.g. "threshold", "memoryThreshold")
}

// DefaultChunkingOptions mirrors chunk.DefaultOptions' numeric defaults.
func DefaultChunkingOptions() ChunkingOptions {
	d := chunk.DefaultOptions()
	return ChunkingOptions{MaxSize: d.MaxSize, MinSize: d.MinSize, Overlap: d.Overlap}
}

// ToStrategyOptions adapts the config DTO to chunk.Options, layering its
// fields over chunk.DefaultOptions so unset fields keep sane defaults.
func (c ChunkingOptions) ToStrategyOptions() chunk.Options {
	opts := chunk.DefaultOptions()
	if c.MaxSize > 0 {
		opts.MaxSize = c.MaxSize
	}
	if c.MinSize > 0 {
		opts.MinSize = c.MinSize
	}
	if c.Overlap > 0 {
		opts.Overlap = c.Overlap
	}
	if v, ok := c.Params["threshold"]; ok {
		if f, err := parseFloat(v); err == nil {
			opts.Threshold = f
		}
	}
	if v, ok := c.Params["memoryThreshold"]; ok {
		if n, err := parseInt(v); err == nil {
			opts.MemoryThreshold = n
		}
	}
	return opts
}
