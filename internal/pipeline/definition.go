package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"basegraph.app/reviewdesk/common/llm"
)

// Definition is the file form of a pipeline:
//
//	name: review
//	inputs: [review]
//	stages:
//	  - name: analyze
//	    output_key: analysis
//	    template: |
//	      Analyze the following customer review ... {review}
type Definition struct {
	Name   string   `yaml:"name"`
	Inputs []string `yaml:"inputs"`
	Stages []Stage  `yaml:"stages"`
}

// ParseDefinitionYAML decodes a pipeline definition from YAML bytes.
func ParseDefinitionYAML(data []byte) (Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Definition{}, fmt.Errorf("pipeline: definition payload is empty")
	}
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("pipeline: decode definition: %w", err)
	}
	return def, nil
}

// LoadDefinitionReader reads definition data from an io.Reader.
func LoadDefinitionReader(r io.Reader) (Definition, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Definition{}, fmt.Errorf("pipeline: read definition: %w", err)
	}
	return ParseDefinitionYAML(content)
}

// LoadDefinitionFile loads a definition from a file path.
func LoadDefinitionFile(path string) (Definition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("pipeline: read %s: %w", path, err)
	}
	def, err := ParseDefinitionYAML(content)
	if err != nil {
		return Definition{}, fmt.Errorf("pipeline: %s: %w", path, err)
	}
	return def, nil
}

// Build validates the definition and binds it to an invoker.
func (d Definition) Build(invoker llm.Invoker) (*Pipeline, error) {
	p, err := New(invoker, d.Inputs, d.Stages...)
	if err != nil {
		if d.Name != "" {
			return nil, fmt.Errorf("pipeline %s: %w", d.Name, err)
		}
		return nil, err
	}
	return p, nil
}

// BuildReviewPipeline builds a replacement review pipeline from a definition.
// It must accept the review input and publish the analysis, language and
// response keys that review callers read back.
func (d Definition) BuildReviewPipeline(invoker llm.Invoker) (*Pipeline, error) {
	if !slices.Equal(d.Inputs, []string{KeyReview}) {
		return nil, fmt.Errorf("%w: review pipeline must take exactly the %q input", ErrInvalidPipeline, KeyReview)
	}
	for _, key := range []string{KeyAnalysis, KeyLanguage, KeyResponse} {
		if !slices.ContainsFunc(d.Stages, func(s Stage) bool { return s.OutputKey == key }) {
			return nil, fmt.Errorf("%w: review pipeline must produce %q", ErrInvalidPipeline, key)
		}
	}
	return d.Build(invoker)
}
