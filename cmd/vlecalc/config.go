package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vle"
)

// SweepSpec is the YAML description of a sweep: the mixture, the state
// points, and optional solver overrides.
type SweepSpec struct {
	Components []ComponentSpec `yaml:"components"`

	Temperatures []float64   `yaml:"temperatures"`
	Compositions [][]float64 `yaml:"compositions"`

	Options struct {
		PressureGuess    float64 `yaml:"pressure_guess"`
		OuterMethod      string  `yaml:"outer_method"`
		OuterTolerance   float64 `yaml:"outer_tolerance"`
		DensityIncrement float64 `yaml:"density_increment"`
		MaxPacking       float64 `yaml:"max_packing"`
	} `yaml:"options"`
}

// ComponentSpec holds one component's critical constants.
type ComponentSpec struct {
	Name string  `yaml:"name"`
	Tc   float64 `yaml:"tc"`
	Pc   float64 `yaml:"pc"`
}

// LoadSweepSpec reads and validates a sweep description.
func LoadSweepSpec(path string) (*SweepSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sweep spec: %w", err)
	}
	var spec SweepSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse sweep spec: %w", err)
	}
	if len(spec.Components) == 0 {
		return nil, fmt.Errorf("sweep spec %s: no components", path)
	}
	for i, c := range spec.Components {
		if c.Tc <= 0 || c.Pc <= 0 {
			return nil, fmt.Errorf("sweep spec %s: component %d (%s) needs positive tc and pc", path, i, c.Name)
		}
	}
	return &spec, nil
}

// Build constructs the EOS and solver configuration the spec describes.
func (s *SweepSpec) Build() (vle.EquationOfState, vle.EquilibriumConfig, error) {
	comps := make([]vle.Component, len(s.Components))
	for i, c := range s.Components {
		comps[i] = vle.Component{Name: c.Name, Tc: c.Tc, Pc: c.Pc}
	}
	eos := vle.NewVanDerWaals(comps...)

	cfg := vle.DefaultEquilibriumConfig()
	cfg.ComponentNames = s.componentNames()
	if s.Options.PressureGuess > 0 {
		cfg.PGuess = s.Options.PressureGuess
	}
	if s.Options.OuterMethod != "" {
		cfg.Outer.Method = vle.SolveMethod(s.Options.OuterMethod)
	}
	if s.Options.OuterTolerance > 0 {
		cfg.Outer.Tolerance = s.Options.OuterTolerance
	}
	if s.Options.DensityIncrement > 0 {
		cfg.Density.Increment = s.Options.DensityIncrement
	}
	if s.Options.MaxPacking > 0 {
		cfg.Density.MaxPacking = s.Options.MaxPacking
	}
	return eos, cfg, nil
}

func (s *SweepSpec) componentNames() []string {
	names := make([]string, len(s.Components))
	for i, c := range s.Components {
		names[i] = c.Name
	}
	return names
}
