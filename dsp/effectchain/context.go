package effectchain

import "github.com/cwbudde/algo-fx/dsp/core"

// Context provides environmental information that effect runtimes need.
//
// BlockSize bounds the scratch buffers used for partially blended nodes;
// zero selects core.DefaultBlockSize.
type Context struct {
	SampleRate float64
	BlockSize  int
}

// NewContext builds a Context from processor options. Invalid option values
// keep the defaults of core.DefaultProcessorConfig.
func NewContext(opts ...core.ProcessorOption) Context {
	cfg := core.ApplyProcessorOptions(opts...)
	return Context{
		SampleRate: cfg.SampleRate,
		BlockSize:  cfg.BlockSize,
	}
}

func (c Context) blockSize() int {
	if c.BlockSize > 0 {
		return c.BlockSize
	}
	return core.DefaultBlockSize
}
