package effectchain

import "github.com/cwbudde/algo-fx/dsp/effects"

// Runtime is the per-node processing and configuration contract. Configure
// is called after creation and on every reload of the node's parameters.
type Runtime interface {
	effects.Engine
	Configure(ctx Context, params Params) error
}

// Validator is implemented by runtimes whose Configure can reject params.
// Chain.Load validates reused runtimes before reconfiguring any of them.
type Validator interface {
	Validate(params Params) error
}
