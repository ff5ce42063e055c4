package experiment

import (
	"encoding/json"
	"fmt"
)

// Metric spec types as they appear in the warehouse metric catalog.
const (
	SpecTypeSimple = "METRIC_TYPE_SIMPLE"
	SpecTypeRatio  = "METRIC_TYPE_RATIO"
	SpecTypeFunnel = "METRIC_TYPE_FUNNEL"
)

// Measure is one component of a metric specification, tagged with the
// role it plays in the computation.
type Measure struct {
	Role        string `json:"role"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	SourceID    string `json:"source_id"`
	Aggregation string `json:"aggregation,omitempty"`
}

// SpecBreakdown summarizes how a metric is computed: its type and the
// measures that feed it.
type SpecBreakdown struct {
	MetricType string    `json:"metric_type"`
	Measures   []Measure `json:"measures"`
}

type rawSpec struct {
	Type        string          `json:"type"`
	SimpleParam *rawSimpleParam `json:"simpleParam"`
	RatioParam  *rawRatioParam  `json:"ratioParam"`
	FunnelParam *rawFunnelParam `json:"funnelParam"`
}

type rawMeasure struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SourceID string `json:"sourceId"`
}

type rawSimpleParam struct {
	Measure     rawMeasure `json:"measure"`
	Aggregation string     `json:"aggregation"`
}

type rawRatioParam struct {
	NumeratorMeasure       *rawMeasure `json:"numeratorMeasure"`
	NumeratorAggregation   string      `json:"numeratorAggregation"`
	DenominatorMeasure     *rawMeasure `json:"denominatorMeasure"`
	DenominatorAggregation string      `json:"denominatorAggregation"`
}

type rawFunnelParam struct {
	Steps []rawFunnelStep `json:"steps"`
}

type rawFunnelStep struct {
	Measure rawMeasure `json:"measure"`
}

// ParseSpec decodes a raw metric spec document into its measure
// breakdown. Simple metrics yield one value measure, ratios a
// numerator and denominator, funnels one measure per ordered step.
// Unrecognized types decode to an empty measure list so the caller can
// still report the type it saw.
func ParseSpec(specJSON string) (*SpecBreakdown, error) {
	var spec rawSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, fmt.Errorf("decode metric spec: %w", err)
	}

	out := &SpecBreakdown{MetricType: spec.Type, Measures: []Measure{}}

	switch spec.Type {
	case SpecTypeSimple:
		if p := spec.SimpleParam; p != nil {
			out.Measures = append(out.Measures, Measure{
				Role:        "value",
				ID:          p.Measure.ID,
				Name:        p.Measure.Name,
				SourceID:    p.Measure.SourceID,
				Aggregation: p.Aggregation,
			})
		}
	case SpecTypeRatio:
		if p := spec.RatioParam; p != nil {
			if m := p.NumeratorMeasure; m != nil {
				out.Measures = append(out.Measures, Measure{
					Role:        "numerator",
					ID:          m.ID,
					Name:        m.Name,
					SourceID:    m.SourceID,
					Aggregation: p.NumeratorAggregation,
				})
			}
			if m := p.DenominatorMeasure; m != nil {
				out.Measures = append(out.Measures, Measure{
					Role:        "denominator",
					ID:          m.ID,
					Name:        m.Name,
					SourceID:    m.SourceID,
					Aggregation: p.DenominatorAggregation,
				})
			}
		}
	case SpecTypeFunnel:
		if p := spec.FunnelParam; p != nil {
			for i, step := range p.Steps {
				out.Measures = append(out.Measures, Measure{
					Role:     fmt.Sprintf("step_%d", i+1),
					ID:       step.Measure.ID,
					Name:     step.Measure.Name,
					SourceID: step.Measure.SourceID,
				})
			}
		}
	}

	return out, nil
}

// Render formats a breakdown as indented JSON for inclusion in an
// observation.
func (b *SpecBreakdown) Render() (string, error) {
	out, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render metric spec: %w", err)
	}
	return string(out), nil
}
