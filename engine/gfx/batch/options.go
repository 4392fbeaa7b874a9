package batch

import "fmt"

const (
	DefaultInitialCapacity = 8192
	DefaultGrowthStep      = 2048
)

// GrowthMode selects how capacity grows once the batch is full.
type GrowthMode string

const (
	// GrowAdditive adds GrowthStep quad slots per growth.
	GrowAdditive GrowthMode = "additive"
	// GrowGeometric doubles capacity, adding at least GrowthStep slots.
	GrowGeometric GrowthMode = "geometric"
)

// Options configures a Batch. Zero fields take the defaults.
type Options struct {
	InitialCapacity int        `yaml:"initial_capacity"`
	GrowthStep      int        `yaml:"growth_step"`
	Growth          GrowthMode `yaml:"growth"`
}

// DefaultOptions returns the stock batch sizing.
func DefaultOptions() Options {
	return Options{
		InitialCapacity: DefaultInitialCapacity,
		GrowthStep:      DefaultGrowthStep,
		Growth:          GrowAdditive,
	}
}

// Validate rejects negative sizes and unknown growth modes.
func (o Options) Validate() error {
	if o.InitialCapacity < 0 {
		return fmt.Errorf("batch: initial capacity %d is negative", o.InitialCapacity)
	}
	if o.GrowthStep < 0 {
		return fmt.Errorf("batch: growth step %d is negative", o.GrowthStep)
	}
	switch o.Growth {
	case "", GrowAdditive, GrowGeometric:
	default:
		return fmt.Errorf("batch: unknown growth mode %q", o.Growth)
	}
	return nil
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.InitialCapacity == 0 {
		o.InitialCapacity = d.InitialCapacity
	}
	if o.GrowthStep == 0 {
		o.GrowthStep = d.GrowthStep
	}
	if o.Growth == "" {
		o.Growth = d.Growth
	}
	return o
}

// nextCapacity is the slot count after one growth from cur.
func (o Options) nextCapacity(cur int) int {
	if o.Growth == GrowGeometric && cur*2 > cur+o.GrowthStep {
		return cur * 2
	}
	return cur + o.GrowthStep
}
