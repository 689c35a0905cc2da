package streamparse

import (
	"errors"
	"testing"

	"github.com/dealsense/sales-intel/internal/core/domain"
)

func TestSessionAppendAndFinalize(t *testing.T) {
	assembler := NewAssembler([]string{"summary", "pain_points"})
	sess := assembler.NewSession()

	snap := sess.Append(`{"summary": "Budget approval st`)
	if snap["summary"] != "Budget approval st" {
		t.Fatalf("summary = %q", snap["summary"])
	}

	snap = sess.Append(`alled", "pain_points": "legal review"}`)
	if snap["pain_points"] != "legal review" {
		t.Fatalf("pain_points = %q", snap["pain_points"])
	}

	analysis, err := sess.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if analysis.Summary != "Budget approval stalled" {
		t.Fatalf("summary = %q", analysis.Summary)
	}
	if analysis.PainPoints != "legal review" {
		t.Fatalf("pain_points = %q", analysis.PainPoints)
	}
}

func TestSessionFinalizeRecoversFencedOutput(t *testing.T) {
	sess := NewAssembler(domain.AnalysisFieldNames).NewSession()
	sess.Append("```json\n{\"summary\": \"ok\"}\n```")

	analysis, err := sess.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if analysis.Summary != "ok" {
		t.Fatalf("summary = %q", analysis.Summary)
	}
}

func TestSessionFinalizeUnrecoverableIsTyped(t *testing.T) {
	sess := NewAssembler(domain.AnalysisFieldNames).NewSession()
	sess.Append("no structure here at all")

	if _, err := sess.Finalize(); !errors.Is(err, domain.ErrParseFailure) {
		t.Fatalf("err = %v, want ErrParseFailure", err)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	assembler := NewAssembler([]string{"summary"})
	first := assembler.NewSession()
	second := assembler.NewSession()

	first.Append(`{"summary": "first stream`)
	snap := second.Append(`{"summary": "se`)

	if snap["summary"] != "se" {
		t.Fatalf("second session leaked state: %q", snap["summary"])
	}
}
