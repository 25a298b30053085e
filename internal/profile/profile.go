// Package profile defines the YAML grading profile that maps model classes
// to whole/broken buckets and controls annotation colors.
package profile

import (
	"fmt"
	"io"
	"os"

	"github.com/riceguard/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// Profile configures how raw model predictions are graded and drawn.
type Profile struct {
	WholeClass    string  `json:"wholeClass" yaml:"whole_class"`
	BrokenClass   string  `json:"brokenClass" yaml:"broken_class"`
	WholeColor    string  `json:"wholeColor" yaml:"whole_color"`   // hex, e.g. "#00ff00"
	BrokenColor   string  `json:"brokenColor" yaml:"broken_color"` // hex, e.g. "#ff0000"
	MinConfidence float64 `json:"minConfidence" yaml:"min_confidence"`
}

// Default returns the built-in profile matching the production workflow:
// whole grains green, broken grains red, no confidence floor.
func Default() *Profile {
	return &Profile{
		WholeClass:  string(models.ClassWholeGrain),
		BrokenClass: string(models.ClassBrokenGrain),
		WholeColor:  "#00ff00",
		BrokenColor: "#ff0000",
	}
}

// Parse loads a profile from a YAML file.
func Parse(filePath string) (*Profile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseFromReader(file)
}

// ParseFromReader parses a profile from an io.Reader. Fields left empty fall
// back to the built-in default so partial profiles stay valid.
func ParseFromReader(r io.Reader) (*Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, err
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Profile) validate() error {
	if p.WholeClass == "" || p.BrokenClass == "" {
		return fmt.Errorf("profile: whole_class and broken_class are required")
	}
	if p.WholeClass == p.BrokenClass {
		return fmt.Errorf("profile: whole_class and broken_class must differ")
	}
	if p.MinConfidence < 0 || p.MinConfidence > 1 {
		return fmt.Errorf("profile: min_confidence must be within [0, 1]")
	}
	return nil
}

// ClassOf buckets a raw model class name. The second return value is false
// for classes the profile does not grade.
func (p *Profile) ClassOf(raw string) (models.GrainClass, bool) {
	switch raw {
	case p.WholeClass:
		return models.ClassWholeGrain, true
	case p.BrokenClass:
		return models.ClassBrokenGrain, true
	default:
		return "", false
	}
}
