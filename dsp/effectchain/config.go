package effectchain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// BlendParam is the node parameter handled by the chain itself: the share
// of the node's output mixed with its input, in [0, 1]. Default 1.
const BlendParam = "blend"

// nodeConfig is a JSON-serializable node of the chain.
type nodeConfig struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Bypassed bool           `json:"bypassed"`
	Params   map[string]any `json:"params"`
}

// chainConfig is the root JSON structure of a chain document.
type chainConfig struct {
	Nodes []nodeConfig `json:"nodes"`
}

var (
	errEmptyNodeID     = errors.New("empty node id")
	errDuplicateNodeID = errors.New("duplicate node id")
)

// ParseConfig parses a chain document of the form
//
//	{"nodes":[{"id":"f1","type":"filter","bypassed":false,"params":{"cutoff":800}}]}
//
// into per-node Params in chain order. Types are not resolved here.
func ParseConfig(data []byte) ([]Params, error) {
	var cfg chainConfig

	err := json.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid chain json: %w", err)
	}

	seen := make(map[string]struct{}, len(cfg.Nodes))
	nodes := make([]Params, 0, len(cfg.Nodes))

	for i, n := range cfg.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("effectchain: node %d: %w", i, errEmptyNodeID)
		}

		if _, dup := seen[n.ID]; dup {
			return nil, fmt.Errorf("effectchain: %w: %s", errDuplicateNodeID, n.ID)
		}
		seen[n.ID] = struct{}{}

		num, str := parseNodeParams(n.Params)
		nodes = append(nodes, Params{
			ID:       n.ID,
			Type:     n.Type,
			Bypassed: n.Bypassed,
			Num:      num,
			Str:      str,
		})
	}

	return nodes, nil
}

// parseNodeParams splits raw JSON params into numeric and string maps.
// Booleans become 1 or 0; other value kinds are ignored.
func parseNodeParams(params map[string]any) (map[string]float64, map[string]string) {
	num := map[string]float64{}
	str := map[string]string{}

	for k, v := range params {
		switch t := v.(type) {
		case float64:
			num[k] = t
		case string:
			str[k] = t
		case bool:
			if t {
				num[k] = 1
			} else {
				num[k] = 0
			}
		}
	}

	return num, str
}
