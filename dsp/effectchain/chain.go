package effectchain

import (
	"errors"
	"fmt"

	"github.com/GeoffreyPlitt/debuggo"

	"github.com/cwbudde/algo-fx/dsp/core"
	"github.com/cwbudde/algo-fx/dsp/effects"
)

var chainDebug = debuggo.Debug("fx:chain")

// ErrUnknownEffect is returned when a node references an unregistered effect type.
var ErrUnknownEffect = errors.New("unknown effect type")

type nodeRuntime struct {
	params  Params
	runtime Runtime
	blend   float64
}

// Chain runs stereo effect nodes in series. Node runtimes are created from a
// Registry and reused across reloads while their id and type are unchanged,
// so reconfiguring a running chain keeps the engines' delay lines and
// filter histories.
//
// Chain is real-time safe after LoadJSON and not thread-safe.
type Chain struct {
	ctx      Context
	registry *Registry
	nodes    []*nodeRuntime

	wet [2][]float64
}

// New creates a Chain with the given context and registry.
func New(ctx Context, registry *Registry) *Chain {
	c := &Chain{
		ctx:      ctx,
		registry: registry,
	}
	n := ctx.blockSize()
	c.wet[0] = core.EnsureLen(c.wet[0], n)
	c.wet[1] = core.EnsureLen(c.wet[1], n)
	return c
}

// Context returns the current chain context.
func (c *Chain) Context() Context {
	return c.ctx
}

// Len returns the number of nodes, bypassed ones included.
func (c *Chain) Len() int { return len(c.nodes) }

// IDs returns the node ids in processing order.
func (c *Chain) IDs() []string {
	ids := make([]string, len(c.nodes))
	for i, n := range c.nodes {
		ids[i] = n.params.ID
	}
	return ids
}

// Node returns the Runtime for the given node ID, or nil.
func (c *Chain) Node(id string) Runtime {
	for _, n := range c.nodes {
		if n.params.ID == id {
			return n.runtime
		}
	}
	return nil
}

// LoadJSON parses a chain document (see ParseConfig) and synchronizes the
// node runtimes with it. On error the chain is left unchanged.
func (c *Chain) LoadJSON(data []byte) error {
	nodes, err := ParseConfig(data)
	if err != nil {
		return err
	}
	return c.Load(nodes)
}

// Load synchronizes the chain with nodes. Existing runtimes with the same id
// and type are reconfigured in place; others are created.
//
// Loading runs in two passes. The first creates new runtimes and validates
// params for reused ones without touching a live engine; any error there
// leaves the chain unchanged. The second reconfigures the reused runtimes
// and swaps the node list in. A reused runtime that rejects params without
// implementing Validator can still fail in the second pass, after earlier
// reused nodes took their new params.
func (c *Chain) Load(nodes []Params) error {
	existing := make(map[string]*nodeRuntime, len(c.nodes))
	for _, n := range c.nodes {
		existing[n.params.ID] = n
	}

	next := make([]*nodeRuntime, 0, len(nodes))
	reused := make([]bool, 0, len(nodes))
	for _, p := range nodes {
		rt, reuse, err := c.resolve(existing[p.ID], p)
		if err != nil {
			return err
		}

		next = append(next, &nodeRuntime{
			params:  p,
			runtime: rt,
			blend:   core.Clamp(p.GetNum(BlendParam, 1), 0, 1),
		})
		reused = append(reused, reuse)
	}

	for i, n := range next {
		if !reused[i] {
			continue
		}
		err := n.runtime.Configure(c.ctx, n.params)
		if err != nil {
			return fmt.Errorf("effectchain: configure node %q (%s): %w", n.params.ID, n.params.Type, err)
		}
	}

	c.nodes = next
	chainDebug("loaded %d nodes: %v", len(next), c.IDs())

	return nil
}

// resolve returns the runtime for p and whether it is a live runtime that
// still has to be reconfigured. New runtimes come back fully configured.
func (c *Chain) resolve(old *nodeRuntime, p Params) (Runtime, bool, error) {
	if old != nil && old.params.Type == p.Type {
		if v, ok := old.runtime.(Validator); ok {
			err := v.Validate(p)
			if err != nil {
				return nil, false, fmt.Errorf("effectchain: configure node %q (%s): %w", p.ID, p.Type, err)
			}
		}
		return old.runtime, true, nil
	}

	factory := c.registry.Lookup(p.Type)
	if factory == nil {
		return nil, false, fmt.Errorf("effectchain: node %q: %w: %s", p.ID, ErrUnknownEffect, p.Type)
	}

	rt, err := factory(c.ctx, p)
	if err != nil {
		return nil, false, fmt.Errorf("effectchain: create node %q (%s): %w", p.ID, p.Type, err)
	}

	err = rt.Configure(c.ctx, p)
	if err != nil {
		return nil, false, fmt.Errorf("effectchain: configure node %q (%s): %w", p.ID, p.Type, err)
	}
	chainDebug("created node %q (%s)", p.ID, p.Type)

	return rt, false, nil
}

// Initialize propagates a sample rate change to every node.
func (c *Chain) Initialize(sampleRate float64) error {
	err := core.ValidateSampleRate("effect chain", sampleRate)
	if err != nil {
		return err
	}

	c.ctx.SampleRate = sampleRate
	for _, n := range c.nodes {
		err := n.runtime.Initialize(sampleRate)
		if err != nil {
			return fmt.Errorf("effectchain: initialize node %q: %w", n.params.ID, err)
		}
	}
	chainDebug("initialized: sampleRate=%g", sampleRate)

	return nil
}

// Reset clears the signal state of every node.
func (c *Chain) Reset() {
	for _, n := range c.nodes {
		n.runtime.Reset()
	}
}

// Clear removes all nodes.
func (c *Chain) Clear() {
	c.nodes = nil
}

// ProcessFrame runs one stereo frame through every active node.
func (c *Chain) ProcessFrame(l, r float64) (float64, float64) {
	for _, n := range c.nodes {
		if n.params.Bypassed {
			continue
		}

		wl, wr := n.runtime.ProcessFrame(l, r)
		if n.blend >= 1 {
			l, r = wl, wr
			continue
		}

		dry := 1 - n.blend
		l = effects.Mix(l, wl, dry, n.blend)
		r = effects.Mix(r, wr, dry, n.blend)
	}

	return l, r
}

// ProcessStereoInPlace runs paired buffers through the chain node by node.
func (c *Chain) ProcessStereoInPlace(left, right []float64) error {
	if err := core.CheckStereo("effect chain", left, right); err != nil {
		return err
	}

	for _, n := range c.nodes {
		if n.params.Bypassed {
			continue
		}

		var err error
		if n.blend >= 1 {
			err = n.runtime.ProcessStereoInPlace(left, right)
		} else {
			err = c.processBlended(n, left, right)
		}
		if err != nil {
			return fmt.Errorf("effectchain: node %q: %w", n.params.ID, err)
		}
	}

	return nil
}

func (c *Chain) processBlended(n *nodeRuntime, left, right []float64) error {
	dry := 1 - n.blend

	block := len(c.wet[0])
	for start := 0; start < len(left); start += block {
		end := min(start+block, len(left))
		l, r := left[start:end], right[start:end]
		wl := c.wet[0][:len(l)]
		wr := c.wet[1][:len(r)]
		copy(wl, l)
		copy(wr, r)

		err := n.runtime.ProcessStereoInPlace(wl, wr)
		if err != nil {
			return err
		}

		effects.MixBlock(l, wl, dry, n.blend)
		effects.MixBlock(r, wr, dry, n.blend)
	}

	return nil
}
