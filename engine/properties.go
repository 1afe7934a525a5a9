package engine

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Scramblecoin/cuckoo/params"
)

// Property name/description length caps and the registry size cap mirror
// the plugin properties ABI this engine stands in for: a small, bounded
// set of named tunables a caller can introspect and (within min/max) set.
const (
	MaxPropertyNameLen = 64
	MaxPropertyDescLen = 256
	MaxProperties      = 32
)

// Property is one named tunable: a current value bounded to [Min,Max],
// defaulting to Default, optionally scoped PerDevice rather than global.
type Property struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     uint32 `json:"default"`
	Min         uint32 `json:"min"`
	Max         uint32 `json:"max"`
	PerDevice   bool   `json:"per_device"`
	value       uint32
}

// Properties is the engine's registry of named tunables, serializable to
// a JSON array for a caller to list and adjust.
type Properties struct {
	mu    sync.RWMutex
	order []string
	defs  map[string]*Property
}

func newProperties(p *params.Params) *Properties {
	props := &Properties{defs: make(map[string]*Property, MaxProperties)}
	props.registerLocked(Property{Name: "edge_bits", Description: "log2 of the node count on each side of the graph", Default: p.EdgeBits, Min: p.EdgeBits, Max: p.EdgeBits})
	props.registerLocked(Property{Name: "proof_size", Description: "number of edges in a valid cycle", Default: params.ProofSize, Min: params.ProofSize, Max: params.ProofSize})
	props.registerLocked(Property{Name: "num_trims", Description: "number of leaf-pruning trim rounds run per solve", Default: uint32(p.NumTrims), Min: 0, Max: uint32(p.NumTrims) * 4})
	props.registerLocked(Property{Name: "num_threads", Description: "block-parallel worker count used by each trim round", Default: uint32(p.NumThreads), Min: 1, Max: uint32(p.NumThreads) * 16})
	return props
}

// Register adds a new property definition. It rejects names/descriptions
// over the ABI's length caps, duplicate names, and registration past
// MaxProperties.
func (props *Properties) Register(def Property) error {
	props.mu.Lock()
	defer props.mu.Unlock()
	return props.registerLocked(def)
}

func (props *Properties) registerLocked(def Property) error {
	if len(def.Name) > MaxPropertyNameLen {
		return fmt.Errorf("engine: property name %q exceeds %d bytes", def.Name, MaxPropertyNameLen)
	}
	if len(def.Description) > MaxPropertyDescLen {
		return fmt.Errorf("engine: property %q description exceeds %d bytes", def.Name, MaxPropertyDescLen)
	}
	if _, exists := props.defs[def.Name]; exists {
		return fmt.Errorf("engine: property %q already registered", def.Name)
	}
	if len(props.defs) >= MaxProperties {
		return fmt.Errorf("engine: properties registry full at %d entries", MaxProperties)
	}
	def.value = def.Default
	stored := def
	props.defs[def.Name] = &stored
	props.order = append(props.order, def.Name)
	return nil
}

// Set updates a registered property's current value, clamped-checked
// against its [Min,Max] range.
func (props *Properties) Set(name string, value uint32) error {
	props.mu.Lock()
	defer props.mu.Unlock()
	def, ok := props.defs[name]
	if !ok {
		return fmt.Errorf("engine: unknown property %q", name)
	}
	if value < def.Min || value > def.Max {
		return fmt.Errorf("engine: value %d for property %q out of range [%d,%d]", value, name, def.Min, def.Max)
	}
	def.value = value
	return nil
}

// Get returns the current value for a registered property.
func (props *Properties) Get(name string) (uint32, bool) {
	props.mu.RLock()
	defer props.mu.RUnlock()
	def, ok := props.defs[name]
	if !ok {
		return 0, false
	}
	return def.value, true
}

// List returns a snapshot of every registered property, in registration
// order.
func (props *Properties) List() []Property {
	props.mu.RLock()
	defer props.mu.RUnlock()
	out := make([]Property, 0, len(props.order))
	for _, name := range props.order {
		out = append(out, *props.defs[name])
	}
	return out
}

// MarshalJSON renders the registry as a JSON array of property
// definitions, in registration order.
func (props *Properties) MarshalJSON() ([]byte, error) {
	return json.Marshal(props.List())
}
