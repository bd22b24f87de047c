package orchestrator

import (
	"fmt"
	"strings"

	"github.com/yoockh/teachback/internal/models"
)

const transcriptWindow = 12

func renderTranscript(entries []models.TranscriptEntry) string {
	if len(entries) > transcriptWindow {
		entries = entries[len(entries)-transcriptWindow:]
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(string(e.Speaker))
		b.WriteString(": ")
		b.WriteString(e.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func evaluatorPrompt(tc TurnContext) string {
	return fmt.Sprintf(`You are checking a learner's explanation of %q for factual and conceptual mistakes.

Latest explanation:
%s

Reply with ONLY a JSON array. Each element: {"span": "<offending text>", "correction": "<what is actually true>", "context": "<optional surrounding text>", "severity": "minor|moderate|critical"}.
Reply [] if the explanation is sound.`, tc.Topic, tc.Input)
}

func studentPrompt(tc TurnContext) string {
	persona := `You are a curious student being taught by the user. Stay in character: ask short clarifying questions, show genuine interest, never lecture. Never mention how this conversation is produced.`

	if tc.State == models.StateInterrupted || len(tc.Findings) > 0 {
		var issues strings.Builder
		for _, f := range tc.Findings {
			fmt.Fprintf(&issues, "- they said %q but actually: %s\n", f.Span, f.Correction)
		}
		return fmt.Sprintf(`%s

The user just made mistakes while explaining %q:
%s
Gently point out the confusion as a student would ("wait, I thought...") and ask them to clarify.

Conversation so far:
%s`, persona, tc.Topic, issues.String(), renderTranscript(tc.Transcript))
	}

	return fmt.Sprintf(`%s

Topic being taught: %q

Conversation so far:
%suser: %s

Respond as the student.`, persona, tc.Topic, renderTranscript(tc.Transcript), tc.Input)
}

func examinerQuestionPrompt(tc TurnContext) string {
	return fmt.Sprintf(`The user has been teaching %q. Based on the conversation below, ask ONE oral-exam question that tests whether they truly understand the material they covered. Ask only the question, nothing else.

Conversation:
%s`, tc.Topic, renderTranscript(tc.Transcript))
}

func examinerGradePrompt(tc TurnContext) string {
	return fmt.Sprintf(`Grade this oral-exam answer about %q.

Question: %s
Answer: %s

Reply with ONLY a JSON object: {"evaluation": "<one paragraph of feedback>", "score": <0-10>}.`, tc.Topic, tc.Question, tc.Answer)
}

func summaryPrompt(tc TurnContext, errs []models.ErrorRecord, exams []models.Examination) string {
	var mistakes strings.Builder
	for _, e := range errs {
		fmt.Fprintf(&mistakes, "- [%s] %q -> %s\n", e.Severity, e.Span, e.Correction)
	}
	var grades strings.Builder
	for _, e := range exams {
		if e.AnsweredAt != nil {
			fmt.Fprintf(&grades, "- Q: %s (score %.0f/10)\n", e.Question, e.Score)
		}
	}

	return fmt.Sprintf(`A teach-back session about %q just ended.

Mistakes detected:
%s
Exam results:
%s
Conversation:
%s

Reply with ONLY a JSON object: {"missed_concepts": [...], "strong_areas": [...], "recommendations": [...]}. Keep each list short and concrete.`,
		tc.Topic, mistakes.String(), grades.String(), renderTranscript(tc.Transcript))
}
