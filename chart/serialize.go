package chart

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vizsolve/vizsolve/dataset"
)

// SaveJSON serializes the chart specification, scales included, as
// indented JSON. The state tree is derived and never persisted.
func (m *Manager) SaveJSON() ([]byte, error) {
	return json.MarshalIndent(m.snapshot(), "", "  ")
}

// SaveYAML serializes the specification as YAML.
func (m *Manager) SaveYAML() ([]byte, error) {
	return yaml.Marshal(m.snapshot())
}

// snapshot copies the live scale registry into the specification record
// so one document round-trips the whole chart.
func (m *Manager) snapshot() *Specification {
	m.spec.Scales = m.scales.All()

	return m.spec
}

// LoadJSON rebuilds a Manager from a JSON document over a dataset: the
// specification is restored, scales re-registered, the state tree
// rebuilt from scratch, and one solve pass run. Loading a document and
// saving it again yields an equivalent document.
func LoadJSON(ds *dataset.Dataset, data []byte, opts ...Option) (*Manager, error) {
	var spec Specification
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("chart: decode json: %w", err)
	}

	return restore(ds, &spec, opts...)
}

// LoadYAML rebuilds a Manager from a YAML document over a dataset.
func LoadYAML(ds *dataset.Dataset, data []byte, opts ...Option) (*Manager, error) {
	var spec Specification
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("chart: decode yaml: %w", err)
	}

	return restore(ds, &spec, opts...)
}

// restore validates a decoded specification against the class registry
// and dataset, rebuilds the derived state tree, and solves once.
func restore(ds *dataset.Dataset, spec *Specification, opts ...Option) (*Manager, error) {
	m := NewManager(ds, opts...)
	m.spec = spec
	if m.spec.Mappings == nil {
		m.spec.Mappings = make(map[string]Mapping)
	}

	for _, sc := range spec.Scales {
		m.scales.Add(sc)
	}

	for _, el := range m.spec.Elements {
		cls, err := m.registry.lookup(el.ClassID)
		if err != nil {
			return nil, err
		}
		if el.Mappings == nil {
			el.Mappings = make(map[string]Mapping)
		}
		st := &ElementState{Attributes: defaultAttributes(cls)}
		m.state.Elements[el.ID] = st
		if IsPlotSegment(el.ClassID) {
			if _, err := ds.Table(el.Table); err != nil {
				return nil, err
			}
			if err := m.remapGlyphs(el, st); err != nil {
				return nil, err
			}
		}
	}
	for _, g := range m.spec.Glyphs {
		for _, mark := range g.Marks {
			if _, err := m.registry.lookup(mark.ClassID); err != nil {
				return nil, err
			}
		}
	}

	if err := m.resolve(); err != nil {
		return nil, err
	}

	return m, nil
}
