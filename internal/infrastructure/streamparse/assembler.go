package streamparse

import (
	"github.com/dealsense/sales-intel/internal/core/domain"
	"github.com/dealsense/sales-intel/internal/core/ports"
)

// Assembler implements ports.AnalysisAssembler over the aggregator and the
// recovery ladder.
type Assembler struct {
	fields []string
}

func NewAssembler(fields []string) *Assembler {
	return &Assembler{fields: fields}
}

func (a *Assembler) NewSession() ports.AnalysisSession {
	return &session{agg: NewAggregator(a.fields)}
}

type session struct {
	agg *Aggregator
}

func (s *session) Append(fragment string) map[string]string {
	return s.agg.Append(fragment)
}

func (s *session) Finalize() (*domain.Analysis, error) {
	raw, err := Recover(s.agg.Buffer())
	if err != nil {
		return nil, err
	}
	return DecodeAnalysis(raw)
}
