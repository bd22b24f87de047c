package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/yoockh/teachback/internal/models"
	"github.com/yoockh/teachback/internal/utils"
)

// stubChain replays canned completions. An answer of "" simulates a chain
// that exhausted every backend.
type stubChain struct {
	answers []string
	calls   int
}

func (s *stubChain) CompleteValidated(ctx context.Context, prompt string, accept func(string) error) (string, error) {
	if s.calls >= len(s.answers) {
		return "", utils.E(utils.CodeAllLLMsFailed, "stub", "all llm backends failed", nil)
	}
	answer := s.answers[s.calls]
	s.calls++
	if answer == "" {
		return "", utils.E(utils.CodeAllLLMsFailed, "stub", "all llm backends failed", nil)
	}
	if accept != nil {
		if err := accept(answer); err != nil {
			return "", utils.E(utils.CodeAllLLMsFailed, "stub", "malformed on every backend", err)
		}
	}
	return answer, nil
}

func TestEvaluate_ParsesFindings(t *testing.T) {
	chain := &stubChain{answers: []string{
		`Here you go:
[{"span": "mitochondria make proteins", "correction": "ribosomes make proteins", "severity": "critical"},
 {"span": "roughly 30 organelles", "correction": "counts vary widely", "severity": "MINOR"}]`,
	}}
	o := New(chain, nil)

	records, err := o.Evaluate(context.Background(), TurnContext{Topic: "cell biology", Input: "..."})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Severity != models.SeverityCritical {
		t.Errorf("severity = %q, want critical", records[0].Severity)
	}
	if records[1].Severity != models.SeverityMinor {
		t.Errorf("severity = %q, want minor (case-insensitive)", records[1].Severity)
	}
	if records[0].DetectedAt.IsZero() {
		t.Error("missing detection timestamp")
	}
}

func TestEvaluate_CleanExplanation(t *testing.T) {
	o := New(&stubChain{answers: []string{`[]`}}, nil)
	records, err := o.Evaluate(context.Background(), TurnContext{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestEvaluate_AllBackendsDown(t *testing.T) {
	o := New(&stubChain{}, nil)
	_, err := o.Evaluate(context.Background(), TurnContext{})
	if !utils.IsCode(err, utils.CodeAllLLMsFailed) {
		t.Fatalf("got %v, want ALL_LLMS_FAILED", err)
	}
}

func TestDecide(t *testing.T) {
	o := New(nil, nil)

	tests := []struct {
		name       string
		severities []models.Severity
		interrupt  bool
	}{
		{"no findings", nil, false},
		{"minor only", []models.Severity{models.SeverityMinor, models.SeverityMinor}, false},
		{"moderate interrupts", []models.Severity{models.SeverityMinor, models.SeverityModerate}, true},
		{"critical interrupts", []models.Severity{models.SeverityCritical}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var findings []models.ErrorRecord
			for _, s := range tt.severities {
				findings = append(findings, models.ErrorRecord{Span: "x", Severity: s})
			}
			d := o.Decide(findings)
			if d.Interrupt != tt.interrupt {
				t.Errorf("Interrupt = %v, want %v", d.Interrupt, tt.interrupt)
			}
			if tt.interrupt && d.Trigger == nil {
				t.Error("interrupting decision has no trigger")
			}
		})
	}
}

func TestStudentTurn_Sanitized(t *testing.T) {
	o := New(&stubChain{answers: []string{"Student: wait, I thought osmosis needs a membrane?"}}, nil)
	got, err := o.StudentTurn(context.Background(), TurnContext{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "wait, I thought osmosis needs a membrane?" {
		t.Errorf("role label leaked: %q", got)
	}
}

func TestEvaluateAnswer(t *testing.T) {
	o := New(&stubChain{answers: []string{`{"evaluation": "solid grasp of diffusion", "score": 8.5}`}}, nil)
	eval, score, err := o.EvaluateAnswer(context.Background(), TurnContext{Question: "q", Answer: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if eval != "solid grasp of diffusion" || score != 8.5 {
		t.Errorf("got (%q, %v)", eval, score)
	}
}

func TestEvaluateAnswer_ClampsScore(t *testing.T) {
	o := New(&stubChain{answers: []string{`{"evaluation": "perfect plus", "score": 14}`}}, nil)
	_, score, err := o.EvaluateAnswer(context.Background(), TurnContext{})
	if err != nil {
		t.Fatal(err)
	}
	if score != models.ExamScoreMax {
		t.Errorf("score = %v, want clamped to %d", score, models.ExamScoreMax)
	}
}

func answered(score float64) models.Examination {
	now := time.Now()
	return models.Examination{Score: score, AnsweredAt: &now}
}

func TestBuildSummary_Rubric(t *testing.T) {
	o := New(&stubChain{answers: []string{
		`{"missed_concepts": ["active transport"], "strong_areas": ["osmosis"], "recommendations": ["revisit ATP"]}`,
	}}, nil)

	errs := []models.ErrorRecord{
		{Span: "a", Severity: models.SeverityMinor},
		{Span: "b", Severity: models.SeverityCritical},
	}
	exams := []models.Examination{answered(8), answered(6)}

	s := o.BuildSummary(context.Background(), TurnContext{Topic: "transport"}, errs, exams)

	// minors count toward total_errors
	if s.TotalErrors != 2 {
		t.Errorf("TotalErrors = %d, want 2", s.TotalErrors)
	}
	// base 70 (avg 7/10), minus 2 minor and 10 critical
	if s.OverallScore != 58 {
		t.Errorf("OverallScore = %v, want 58", s.OverallScore)
	}
	if len(s.StrongAreas) != 1 || s.StrongAreas[0] != "osmosis" {
		t.Errorf("StrongAreas = %v", s.StrongAreas)
	}
}

func TestBuildSummary_DegradesWithoutBackend(t *testing.T) {
	o := New(&stubChain{}, nil)

	errs := []models.ErrorRecord{{Span: "confused DNA with RNA", Correction: "DNA stores, RNA carries", Severity: models.SeverityModerate}}
	s := o.BuildSummary(context.Background(), TurnContext{}, errs, nil)

	if s.TotalErrors != 1 {
		t.Errorf("TotalErrors = %d, want 1", s.TotalErrors)
	}
	// no exams: base 100 minus 5 moderate
	if s.OverallScore != 95 {
		t.Errorf("OverallScore = %v, want 95", s.OverallScore)
	}
	if len(s.MissedConcepts) != 1 {
		t.Errorf("derived MissedConcepts = %v", s.MissedConcepts)
	}
	if len(s.Recommendations) != 1 {
		t.Errorf("derived Recommendations = %v", s.Recommendations)
	}
}

func TestBuildSummary_ScoreNeverNegative(t *testing.T) {
	o := New(&stubChain{}, nil)
	var errs []models.ErrorRecord
	for i := 0; i < 20; i++ {
		errs = append(errs, models.ErrorRecord{Span: "x", Severity: models.SeverityCritical})
	}
	s := o.BuildSummary(context.Background(), TurnContext{}, errs, nil)
	if s.OverallScore != 0 {
		t.Errorf("OverallScore = %v, want floor 0", s.OverallScore)
	}
}

func TestEvaluate_MalformedOutputSurfacesFailure(t *testing.T) {
	o := New(&stubChain{answers: []string{"not json at all"}}, nil)
	_, err := o.Evaluate(context.Background(), TurnContext{})
	if !utils.IsCode(err, utils.CodeAllLLMsFailed) {
		t.Fatalf("got %v, want ALL_LLMS_FAILED after malformed output everywhere", err)
	}
}
