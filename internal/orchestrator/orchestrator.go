// Package orchestrator coordinates the cooperating AI roles of a teach-back
// session. Roles are a tagged variant, not separate objects: which role runs
// is a pure function of the session state, and every role call goes through
// the same failover chain.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/teachback/internal/models"
	"github.com/yoockh/teachback/internal/utils"
)

type Role string

const (
	RoleEvaluator  Role = "evaluator"
	RoleController Role = "controller"
	RoleStudent    Role = "student"
	RoleExaminer   Role = "examiner"
)

// completer is the failover chain surface the orchestrator needs.
// llm.Chain satisfies it.
type completer interface {
	CompleteValidated(ctx context.Context, prompt string, accept func(string) error) (string, error)
}

// TurnContext carries everything a role needs for one invocation. The
// orchestrator itself holds no per-session state.
type TurnContext struct {
	Topic      string
	State      models.SessionState
	Transcript []models.TranscriptEntry
	Input      string

	// Findings is the evaluator's output, consumed by later roles in the
	// same turn.
	Findings []models.ErrorRecord

	// Examiner answer evaluation.
	Question string
	Answer   string
}

type Orchestrator struct {
	chain completer
	log   *logrus.Logger
	now   func() time.Time
}

func New(chain completer, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{chain: chain, log: log, now: time.Now}
}

// finding is the evaluator's wire shape.
type finding struct {
	Span       string `json:"span"`
	Correction string `json:"correction"`
	Context    string `json:"context,omitempty"`
	Severity   string `json:"severity"`
}

// Evaluate scans the latest user turn for conceptual mistakes. Runs first
// on every teaching-state turn; later roles consume its findings.
func (o *Orchestrator) Evaluate(ctx context.Context, tc TurnContext) ([]models.ErrorRecord, error) {
	const op = "Orchestrator.Evaluate"

	var parsed []finding
	_, err := o.chain.CompleteValidated(ctx, evaluatorPrompt(tc), func(answer string) error {
		f, perr := parseFindings(answer)
		if perr != nil {
			return perr
		}
		parsed = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := make([]models.ErrorRecord, 0, len(parsed))
	for _, f := range parsed {
		if f.Span == "" {
			continue
		}
		records = append(records, models.ErrorRecord{
			Span:       f.Span,
			Correction: f.Correction,
			Context:    f.Context,
			Severity:   normalizeSeverity(f.Severity),
			DetectedAt: o.now().UTC(),
		})
	}
	return records, nil
}

// Decision is the controller's verdict over the evaluator's findings.
type Decision struct {
	Interrupt bool
	// Trigger is the finding that caused the interruption, nil otherwise.
	Trigger *models.ErrorRecord
}

// Decide applies the interruption policy: any moderate or critical finding
// pauses teaching, minor findings are recorded but let the user continue.
// The policy is fixed product behavior, so no backend call is involved.
func (o *Orchestrator) Decide(findings []models.ErrorRecord) Decision {
	for i := range findings {
		if findings[i].Severity.Interrupts() {
			return Decision{Interrupt: true, Trigger: &findings[i]}
		}
	}
	return Decision{}
}

// StudentTurn produces the curious-learner reply for teaching and
// interrupted states. Role names never reach the returned text.
func (o *Orchestrator) StudentTurn(ctx context.Context, tc TurnContext) (string, error) {
	answer, err := o.chain.CompleteValidated(ctx, studentPrompt(tc), nil)
	if err != nil {
		return "", err
	}
	return SanitizeRoleNames(answer), nil
}

// NextQuestion asks the examiner for one question over the taught material.
func (o *Orchestrator) NextQuestion(ctx context.Context, tc TurnContext) (string, error) {
	answer, err := o.chain.CompleteValidated(ctx, examinerQuestionPrompt(tc), nil)
	if err != nil {
		return "", err
	}
	return SanitizeRoleNames(answer), nil
}

// answerVerdict is the examiner's wire shape for answer evaluation.
type answerVerdict struct {
	Evaluation string  `json:"evaluation"`
	Score      float64 `json:"score"`
}

// EvaluateAnswer grades one submitted answer on the 0..10 scale.
func (o *Orchestrator) EvaluateAnswer(ctx context.Context, tc TurnContext) (string, float64, error) {
	var verdict answerVerdict
	_, err := o.chain.CompleteValidated(ctx, examinerGradePrompt(tc), func(answer string) error {
		v, perr := parseVerdict(answer)
		if perr != nil {
			return perr
		}
		verdict = v
		return nil
	})
	if err != nil {
		return "", 0, err
	}

	score := verdict.Score
	if score < 0 {
		score = 0
	}
	if score > models.ExamScoreMax {
		score = models.ExamScoreMax
	}
	return SanitizeRoleNames(verdict.Evaluation), score, nil
}

// summaryNarrative is the examiner's wire shape for the final report.
type summaryNarrative struct {
	MissedConcepts  []string `json:"missed_concepts"`
	StrongAreas     []string `json:"strong_areas"`
	Recommendations []string `json:"recommendations"`
}

// BuildSummary aggregates the session into its final report. The numeric
// rubric is computed locally; the narrative lists come from the examiner
// when a backend is up, and degrade to transcript-derived lists when not,
// because ending a session must always produce a summary.
func (o *Orchestrator) BuildSummary(ctx context.Context, tc TurnContext, errs []models.ErrorRecord, exams []models.Examination) *models.Summary {
	score, rubric := scoreSession(errs, exams)

	s := &models.Summary{
		TotalErrors:  len(errs),
		OverallScore: score,
		CreatedAt:    o.now().UTC(),
	}
	if b, err := json.Marshal(rubric); err == nil {
		s.Rubric = b
	}

	var narrative summaryNarrative
	_, err := o.chain.CompleteValidated(ctx, summaryPrompt(tc, errs, exams), func(answer string) error {
		n, perr := parseNarrative(answer)
		if perr != nil {
			return perr
		}
		narrative = n
		return nil
	})
	if err != nil {
		if o.log != nil {
			o.log.WithError(err).Warn("summary narrative degraded to local derivation")
		}
		narrative = deriveNarrative(errs)
	}

	s.MissedConcepts = narrative.MissedConcepts
	s.StrongAreas = narrative.StrongAreas
	s.Recommendations = narrative.Recommendations
	return s
}

// scoreSession computes the bounded overall score. Exams set the baseline;
// a session ended before examining starts from full marks. Every detected
// error deducts by severity, minors included.
func scoreSession(errs []models.ErrorRecord, exams []models.Examination) (float64, map[string]any) {
	base := float64(models.SummaryScoreMax)
	graded := 0
	var examTotal float64
	for _, e := range exams {
		if e.AnsweredAt != nil {
			examTotal += e.Score
			graded++
		}
	}
	if graded > 0 {
		base = examTotal / float64(graded) / models.ExamScoreMax * models.SummaryScoreMax
	}

	var deduction float64
	for _, e := range errs {
		switch e.Severity {
		case models.SeverityCritical:
			deduction += 10
		case models.SeverityModerate:
			deduction += 5
		default:
			deduction += 2
		}
	}

	score := base - deduction
	if score < 0 {
		score = 0
	}
	if score > models.SummaryScoreMax {
		score = models.SummaryScoreMax
	}

	return score, map[string]any{
		"exam_base":       base,
		"graded_answers":  graded,
		"error_deduction": deduction,
	}
}

// deriveNarrative builds the report lists from the error records alone.
func deriveNarrative(errs []models.ErrorRecord) summaryNarrative {
	n := summaryNarrative{
		MissedConcepts:  []string{},
		StrongAreas:     []string{},
		Recommendations: []string{},
	}
	for _, e := range errs {
		n.MissedConcepts = append(n.MissedConcepts, e.Span)
		if e.Correction != "" {
			n.Recommendations = append(n.Recommendations, "Review: "+e.Correction)
		}
	}
	return n
}

func normalizeSeverity(s string) models.Severity {
	switch models.Severity(strings.ToLower(strings.TrimSpace(s))) {
	case models.SeverityMinor:
		return models.SeverityMinor
	case models.SeverityCritical:
		return models.SeverityCritical
	default:
		return models.SeverityModerate
	}
}

func parseFindings(answer string) ([]finding, error) {
	raw, err := extractJSON(answer, '[', ']')
	if err != nil {
		return nil, err
	}
	var out []finding
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func parseVerdict(answer string) (answerVerdict, error) {
	var v answerVerdict
	raw, err := extractJSON(answer, '{', '}')
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, err
	}
	if v.Evaluation == "" {
		return v, errors.New("verdict missing evaluation")
	}
	return v, nil
}

func parseNarrative(answer string) (summaryNarrative, error) {
	var n summaryNarrative
	raw, err := extractJSON(answer, '{', '}')
	if err != nil {
		return n, err
	}
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return n, err
	}
	return n, nil
}

// extractJSON pulls the outermost JSON value out of a completion that may
// wrap it in prose or code fences.
func extractJSON(answer string, open, close byte) (string, error) {
	start := strings.IndexByte(answer, open)
	end := strings.LastIndexByte(answer, close)
	if start < 0 || end <= start {
		return "", utils.E(utils.CodeInvalidArgument, "orchestrator.extractJSON",
			"no JSON value in completion", nil)
	}
	return answer[start : end+1], nil
}
