// Package config loads table generation settings from HCL files. Settings
// missing from a file keep the defaults of the Toluene reference table.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/notargets/proptable/domain"
	"github.com/notargets/proptable/fluids"
	"github.com/notargets/proptable/table"
	"github.com/notargets/proptable/thermo"
)

// ErrInvalid is returned by Validate for unusable settings
var ErrInvalid = errors.New("invalid configuration")

// Config holds every setting of a table run
type Config struct {
	Fluid      string
	Properties []string
	Output     string
	Binary     bool
	Workers    int
	Strategy   string

	Structured Structured
	Graded     Graded
}

// Structured sets up a rectangular table in (log10 D, T)
type Structured struct {
	TMin, TMax float64
	DMin       float64
	ND, NT     int
}

// Graded sets up a table bounded by the saturated vapor curve
type Graded struct {
	TMin, TMax float64
	Samples    int
	Sizes      domain.Sizes
}

// Default returns the settings of the Toluene reference table
func Default() *Config {
	return &Config{
		Fluid:      "Toluene",
		Properties: append([]string(nil), thermo.Names...),
		Output:     "table.vtk",
		Workers:    1,
		Strategy:   table.BlockPartition.String(),
		Structured: Structured{TMin: 400, TMax: 650, DMin: 0.001, ND: 100, NT: 10},
		Graded:     Graded{TMin: 400, TMax: 650, Samples: domain.DefaultSamples, Sizes: domain.DefaultSizes},
	}
}

// file mirrors the HCL schema; nil fields keep their defaults
type file struct {
	Fluid      *string   `hcl:"fluid,optional"`
	Properties *[]string `hcl:"properties,optional"`
	Output     *string   `hcl:"output,optional"`
	Binary     *bool     `hcl:"binary,optional"`
	Workers    *int      `hcl:"workers,optional"`
	Strategy   *string   `hcl:"strategy,optional"`

	Structured *structuredBlock `hcl:"structured,block"`
	Graded     *gradedBlock     `hcl:"graded,block"`
}

type structuredBlock struct {
	TMin *float64 `hcl:"t_min,optional"`
	TMax *float64 `hcl:"t_max,optional"`
	DMin *float64 `hcl:"d_min,optional"`
	ND   *int     `hcl:"n_d,optional"`
	NT   *int     `hcl:"n_t,optional"`
}

type gradedBlock struct {
	TMin     *float64 `hcl:"t_min,optional"`
	TMax     *float64 `hcl:"t_max,optional"`
	Samples  *int     `hcl:"samples,optional"`
	Crit     *float64 `hcl:"size_crit,optional"`
	TminDmin *float64 `hcl:"size_tmin_dmin,optional"`
	TmaxDmax *float64 `hcl:"size_tmax_dmax,optional"`
	TmaxDmin *float64 `hcl:"size_tmax_dmin,optional"`
}

// Load reads and decodes the HCL file at path over the defaults
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(src, path)
}

// Parse decodes HCL source over the defaults. Expressions may call
// celsius(t) and refer to the list of known fluid names as fluids.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", filename, diags.Error())
	}
	var raw file
	if diags = gohcl.DecodeBody(f.Body, evalContext(), &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", filename, diags.Error())
	}

	c := Default()
	set(&c.Fluid, raw.Fluid)
	set(&c.Properties, raw.Properties)
	set(&c.Output, raw.Output)
	set(&c.Binary, raw.Binary)
	set(&c.Workers, raw.Workers)
	set(&c.Strategy, raw.Strategy)
	if s := raw.Structured; s != nil {
		set(&c.Structured.TMin, s.TMin)
		set(&c.Structured.TMax, s.TMax)
		set(&c.Structured.DMin, s.DMin)
		set(&c.Structured.ND, s.ND)
		set(&c.Structured.NT, s.NT)
	}
	if g := raw.Graded; g != nil {
		set(&c.Graded.TMin, g.TMin)
		set(&c.Graded.TMax, g.TMax)
		set(&c.Graded.Samples, g.Samples)
		set(&c.Graded.Sizes.Crit, g.Crit)
		set(&c.Graded.Sizes.TminDmin, g.TminDmin)
		set(&c.Graded.Sizes.TmaxDmax, g.TmaxDmax)
		set(&c.Graded.Sizes.TmaxDmin, g.TmaxDmin)
	}
	return c, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

var celsius = function.New(&function.Spec{
	Params: []function.Parameter{{Name: "t", Type: cty.Number}},
	Type:   function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return args[0].Add(cty.NumberFloatVal(273.15)), nil
	},
})

func evalContext() *hcl.EvalContext {
	names := fluids.Names()
	vals := make([]cty.Value, len(names))
	for i, n := range names {
		vals[i] = cty.StringVal(n)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"fluids": cty.ListVal(vals)},
		Functions: map[string]function.Function{"celsius": celsius},
	}
}

// Validate checks the shared settings
func (c *Config) Validate() error {
	if _, err := fluids.Lookup(c.Fluid); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(c.Properties) == 0 {
		return fmt.Errorf("%w: no properties requested", ErrInvalid)
	}
	for _, p := range c.Properties {
		if _, err := (thermo.Point{}).Get(p); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if c.Output == "" {
		return fmt.Errorf("%w: empty output path", ErrInvalid)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	}
	if _, err := table.ParseStrategy(c.Strategy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Validate checks the structured table bounds
func (s Structured) Validate() error {
	if !(s.TMin > 0 && s.TMax > s.TMin && s.DMin > 0) {
		return fmt.Errorf("%w: structured bounds T=[%g, %g] D_min=%g", ErrInvalid, s.TMin, s.TMax, s.DMin)
	}
	if s.ND < 2 || s.NT < 2 {
		return fmt.Errorf("%w: structured grid %dx%d needs at least 2x2 nodes", ErrInvalid, s.ND, s.NT)
	}
	return nil
}

// Validate checks the graded table bounds and sizes
func (g Graded) Validate() error {
	if !(g.TMin > 0 && g.TMax > g.TMin) {
		return fmt.Errorf("%w: graded bounds T=[%g, %g]", ErrInvalid, g.TMin, g.TMax)
	}
	if g.Samples < 2 {
		return fmt.Errorf("%w: graded curves need at least 2 samples, got %d", ErrInvalid, g.Samples)
	}
	if err := g.Sizes.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
