package services

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/teachback/internal/cache"
	"github.com/yoockh/teachback/internal/models"
	"github.com/yoockh/teachback/internal/orchestrator"
	"github.com/yoockh/teachback/internal/ratelimit"
	mongorepo "github.com/yoockh/teachback/internal/repositories/mongo"
	pgrepo "github.com/yoockh/teachback/internal/repositories/postgres"
	"github.com/yoockh/teachback/internal/statemachine"
	"github.com/yoockh/teachback/internal/storage"
	"github.com/yoockh/teachback/internal/utils"
)

const sessionCacheTTL = 10 * time.Minute

// RateLimiter is the quota surface the manager needs. *ratelimit.Limiter
// satisfies it.
type RateLimiter interface {
	CheckAndReserve(ctx context.Context, userID string, plan models.Plan, isVoice bool) (*ratelimit.Reservation, error)
	GetQuota(ctx context.Context, userID string, plan models.Plan) (*models.Quota, error)
}

// VoiceProcessor is the speech surface the manager needs. *voice.Processor
// satisfies it.
type VoiceProcessor interface {
	STTAvailable() bool
	TTSAvailable() bool
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// Embedder produces the transcript embedding vectors. *llm.VertexEmbedder
// satisfies it; nil leaves the embedding column NULL.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Roles is the orchestrator surface the manager needs.
type Roles interface {
	Evaluate(ctx context.Context, tc orchestrator.TurnContext) ([]models.ErrorRecord, error)
	Decide(findings []models.ErrorRecord) orchestrator.Decision
	StudentTurn(ctx context.Context, tc orchestrator.TurnContext) (string, error)
	NextQuestion(ctx context.Context, tc orchestrator.TurnContext) (string, error)
	EvaluateAnswer(ctx context.Context, tc orchestrator.TurnContext) (string, float64, error)
	BuildSummary(ctx context.Context, tc orchestrator.TurnContext, errs []models.ErrorRecord, exams []models.Examination) *models.Summary
}

// Notice is a non-fatal, user-visible degradation message attached to a
// turn (speech down, backend on fallback, and so on).
type Notice struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

// TurnResult is what one processed input returns to the caller.
type TurnResult struct {
	State        models.SessionState `json:"state"`
	Reply        string              `json:"reply,omitempty"`
	Interrupted  bool                `json:"interrupted"`
	Interruption *models.ErrorRecord `json:"interruption,omitempty"`
	Audio        []byte              `json:"audio,omitempty"`
	Notices      []Notice            `json:"notices,omitempty"`
}

// AnswerResult is a graded exam answer plus the examiner's next question
// when one could be generated.
type AnswerResult struct {
	Examination  models.Examination `json:"examination"`
	NextQuestion string             `json:"next_question,omitempty"`
	Notices      []Notice           `json:"notices,omitempty"`
}

type SessionManager struct {
	limiter  RateLimiter
	voice    VoiceProcessor
	roles    Roles
	sessions mongorepo.SessionRepository
	exams    mongorepo.ExamRepository
	errs     mongorepo.ErrorRepository
	turns    pgrepo.TranscriptRepo
	reports  pgrepo.SummaryRepo

	cache    cache.Cache      // optional
	uploader storage.Uploader // optional
	events   EventPublisher   // optional
	embed    Embedder         // optional
	log      *logrus.Logger

	Language string

	// one mutex per live session enforces the single-writer-per-session
	// discipline inside this process
	locks sync.Map
	now   func() time.Time
}

type Deps struct {
	Limiter  RateLimiter
	Voice    VoiceProcessor
	Roles    Roles
	Sessions mongorepo.SessionRepository
	Exams    mongorepo.ExamRepository
	Errors   mongorepo.ErrorRepository
	Turns    pgrepo.TranscriptRepo
	Reports  pgrepo.SummaryRepo
	Cache    cache.Cache
	Uploader storage.Uploader
	Events   EventPublisher
	Embed    Embedder
	Logger   *logrus.Logger
}

func NewSessionManager(d Deps) *SessionManager {
	return &SessionManager{
		limiter:  d.Limiter,
		voice:    d.Voice,
		roles:    d.Roles,
		sessions: d.Sessions,
		exams:    d.Exams,
		errs:     d.Errors,
		turns:    d.Turns,
		reports:  d.Reports,
		cache:    d.Cache,
		uploader: d.Uploader,
		events:   d.Events,
		embed:    d.Embed,
		log:      d.Logger,
		Language: "en-US",
		now:      time.Now,
	}
}

func (m *SessionManager) lock(sessionID string) func() {
	v, _ := m.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func validModes(in models.InputMode, out models.OutputMode) bool {
	switch in {
	case models.InputText, models.InputVoice, models.InputMixed:
	default:
		return false
	}
	switch out {
	case models.OutputText, models.OutputVoiceText:
	default:
		return false
	}
	return true
}

// CreateSession reserves quota, initializes the state machine, and persists
// the session. Nothing is consumed when the quota rejects.
func (m *SessionManager) CreateSession(ctx context.Context, userID string, plan models.Plan, in models.InputMode, out models.OutputMode, topic string) (*models.Session, error) {
	const op = "SessionManager.CreateSession"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if !validModes(in, out) {
		return nil, utils.E(utils.CodeInvalidModeCombination, op,
			"unsupported input/output mode combination", nil)
	}

	s := &models.Session{
		SessionID:  uuid.NewString(),
		UserID:     userID,
		Topic:      topic,
		InputMode:  in,
		OutputMode: out,
		State:      statemachine.New().State(),
		CreatedAt:  m.now().UTC(),
	}

	if _, err := m.limiter.CheckAndReserve(ctx, userID, plan, s.IsVoiceBilled()); err != nil {
		return nil, err
	}

	if err := m.sessions.Create(ctx, s); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	m.cacheSession(ctx, s)

	if m.log != nil {
		m.log.WithFields(logrus.Fields{
			"session_id": s.SessionID,
			"user_id":    userID,
			"voice":      s.IsVoiceBilled(),
		}).Info("session created")
	}
	return s, nil
}

// GetSession returns the session after an ownership check.
func (m *SessionManager) GetSession(ctx context.Context, sessionID, userID string) (*models.Session, error) {
	return m.loadOwned(ctx, "SessionManager.GetSession", sessionID, userID)
}

// ProcessInput runs one teaching turn: transcription (for audio), error
// evaluation, interruption decision, the student's reply, optional speech
// synthesis, and transcript persistence. Degradations turn into notices,
// never into a dropped session.
func (m *SessionManager) ProcessInput(ctx context.Context, sessionID, userID, text string, audio []byte) (*TurnResult, error) {
	const op = "SessionManager.ProcessInput"

	unlock := m.lock(sessionID)
	defer unlock()

	s, err := m.loadOwned(ctx, op, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if s.State == models.StateCompleted {
		return nil, utils.E(utils.CodeSessionCompleted, op, "session already completed", nil)
	}
	if _, err := m.transition(ctx, s, statemachine.EventSubmitInput); err != nil {
		return nil, err
	}

	result := &TurnResult{State: s.State}

	content := text
	wasVoice := false
	audioURL := ""
	if len(audio) > 0 {
		if s.InputMode == models.InputText {
			return nil, utils.E(utils.CodeInvalidModeCombination, op,
				"audio input on a text-only session", nil)
		}
		audioURL = m.archiveAudio(ctx, sessionID, audio)

		transcribed, terr := m.voice.Transcribe(ctx, audio, m.Language)
		if terr != nil {
			// degrade this turn to text input; the session's configured
			// input mode is untouched
			result.Notices = append(result.Notices, Notice{
				Code:    utils.CodeOf(terr),
				Message: "voice input unavailable for this turn, continuing in text",
			})
		} else {
			content = transcribed
			wasVoice = true
		}
	}

	if content == "" {
		// nothing usable arrived this turn (failed transcription with no
		// typed fallback); report the degradation without advancing
		return result, nil
	}

	tcBase := orchestrator.TurnContext{
		Topic: s.Topic,
		State: s.State,
		Input: content,
	}
	if transcript, lerr := m.turns.ListBySession(ctx, userID, sessionID, 0); lerr == nil {
		tcBase.Transcript = transcript
	}

	findings, err := m.roles.Evaluate(ctx, tcBase)
	if err != nil {
		return nil, m.markDegraded(ctx, op, s, err)
	}

	if len(findings) > 0 {
		for i := range findings {
			findings[i].SessionID = sessionID
		}
		if ierr := m.errs.InsertMany(ctx, findings); ierr != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to persist error records", ierr)
		}
	}

	decision := m.roles.Decide(findings)
	nextState := s.State
	if decision.Interrupt {
		nextState, err = m.transition(ctx, s, statemachine.EventInterrupt)
		if err != nil {
			return nil, err
		}
	}

	tcReply := tcBase
	tcReply.State = nextState
	tcReply.Findings = findings
	reply, err := m.roles.StudentTurn(ctx, tcReply)
	if err != nil {
		return nil, m.markDegraded(ctx, op, s, err)
	}

	// a completion racing endSession is discarded, not applied
	if ok, cerr := m.stillOpen(ctx, sessionID); cerr != nil || !ok {
		return nil, utils.E(utils.CodeSessionCompleted, op, "session completed during turn", cerr)
	}

	if nextState != s.State {
		if serr := m.sessions.SetState(ctx, sessionID, nextState); serr != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to persist state", serr)
		}
	}
	if s.Degraded {
		_ = m.sessions.SetDegraded(ctx, sessionID, false)
	}
	s.State = nextState
	m.invalidateSession(ctx, sessionID)

	uerr := m.appendTurn(ctx, s, models.SpeakerUser, content, wasVoice, audioURL)
	serr := m.appendTurn(ctx, s, models.SpeakerSystem, reply, false, "")
	if uerr != nil || serr != nil {
		result.Notices = append(result.Notices, Notice{
			Code:    utils.CodeInternal,
			Message: "transcript persistence failed for this turn",
		})
	}

	result.State = nextState
	result.Reply = reply
	result.Interrupted = decision.Interrupt
	result.Interruption = decision.Trigger

	if s.OutputMode == models.OutputVoiceText {
		if audioOut, serr := m.voice.Synthesize(ctx, reply, m.Language); serr != nil {
			result.Notices = append(result.Notices, Notice{
				Code:    utils.CodeOf(serr),
				Message: "spoken output unavailable for this turn, text only",
			})
		} else {
			result.Audio = audioOut
		}
	}

	m.publish(ctx, SessionEvent{
		Type:      eventType(decision.Interrupt),
		SessionID: sessionID,
		State:     string(nextState),
		Payload:   result,
	})
	return result, nil
}

func eventType(interrupted bool) string {
	if interrupted {
		return "interruption"
	}
	return "turn"
}

// AcknowledgeInterruption resumes teaching after the user has seen the
// correction.
func (m *SessionManager) AcknowledgeInterruption(ctx context.Context, sessionID, userID string) (models.SessionState, error) {
	const op = "SessionManager.AcknowledgeInterruption"

	unlock := m.lock(sessionID)
	defer unlock()

	s, err := m.loadOwned(ctx, op, sessionID, userID)
	if err != nil {
		return "", err
	}

	next, err := m.transition(ctx, s, statemachine.EventAcknowledge)
	if err != nil {
		return s.State, err
	}
	if err := m.sessions.SetState(ctx, sessionID, next); err != nil {
		return s.State, utils.E(utils.CodeInternal, op, "failed to persist state", err)
	}
	m.invalidateSession(ctx, sessionID)
	return next, nil
}

// StartExamination moves the session into its oral-exam phase and returns
// the first question. The state is only persisted once a question exists,
// so a total backend failure leaves the session in teaching.
func (m *SessionManager) StartExamination(ctx context.Context, sessionID, userID string) (string, error) {
	const op = "SessionManager.StartExamination"

	unlock := m.lock(sessionID)
	defer unlock()

	s, err := m.loadOwned(ctx, op, sessionID, userID)
	if err != nil {
		return "", err
	}

	next, err := m.transition(ctx, s, statemachine.EventStartExam)
	if err != nil {
		return "", err
	}

	tc := orchestrator.TurnContext{Topic: s.Topic, State: next}
	if transcript, lerr := m.turns.ListBySession(ctx, userID, sessionID, 0); lerr == nil {
		tc.Transcript = transcript
	}

	question, err := m.roles.NextQuestion(ctx, tc)
	if err != nil {
		return "", m.markDegraded(ctx, op, s, err)
	}

	if err := m.exams.InsertQuestion(ctx, &models.Examination{
		SessionID: sessionID,
		Question:  question,
		AskedAt:   m.now().UTC(),
	}); err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to persist examination", err)
	}
	if err := m.sessions.SetState(ctx, sessionID, next); err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to persist state", err)
	}
	m.invalidateSession(ctx, sessionID)
	// the question itself lives in the examinations collection; the
	// transcript row is a convenience copy and its failure is logged inside
	_ = m.appendTurn(ctx, s, models.SpeakerSystem, question, false, "")

	m.publish(ctx, SessionEvent{
		Type: "examination", SessionID: sessionID, State: string(next),
		Payload: map[string]string{"question": question},
	})
	return question, nil
}

// SubmitAnswer grades one exam answer and, when a backend is up, hands back
// the next question.
func (m *SessionManager) SubmitAnswer(ctx context.Context, sessionID, userID, question, answer string) (*AnswerResult, error) {
	const op = "SessionManager.SubmitAnswer"

	unlock := m.lock(sessionID)
	defer unlock()

	s, err := m.loadOwned(ctx, op, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if s.State != models.StateExamining {
		return nil, utils.E(utils.CodeInvalidStateTransition, op,
			"answers are only accepted while examining", nil)
	}
	if question == "" || answer == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "question and answer are required", nil)
	}

	tc := orchestrator.TurnContext{Topic: s.Topic, State: s.State, Question: question, Answer: answer}
	evaluation, score, err := m.roles.EvaluateAnswer(ctx, tc)
	if err != nil {
		return nil, m.markDegraded(ctx, op, s, err)
	}

	answeredAt := m.now().UTC()
	if err := m.exams.Grade(ctx, sessionID, question, answer, evaluation, score, answeredAt); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to grade examination", err)
	}

	result := &AnswerResult{Examination: models.Examination{
		SessionID:  sessionID,
		Question:   question,
		Answer:     answer,
		Evaluation: evaluation,
		Score:      score,
		AnsweredAt: &answeredAt,
	}}

	uerr := m.appendTurn(ctx, s, models.SpeakerUser, answer, false, "")
	serr := m.appendTurn(ctx, s, models.SpeakerSystem, evaluation, false, "")
	if uerr != nil || serr != nil {
		result.Notices = append(result.Notices, Notice{
			Code:    utils.CodeInternal,
			Message: "transcript persistence failed for this answer",
		})
	}

	// next question is best effort; its absence just means the caller asks
	// to end or retries later
	if transcript, lerr := m.turns.ListBySession(ctx, userID, sessionID, 0); lerr == nil {
		tc.Transcript = transcript
	}
	if next, qerr := m.roles.NextQuestion(ctx, tc); qerr == nil {
		if ierr := m.exams.InsertQuestion(ctx, &models.Examination{
			SessionID: sessionID,
			Question:  next,
			AskedAt:   m.now().UTC(),
		}); ierr == nil {
			result.NextQuestion = next
		}
	}

	m.publish(ctx, SessionEvent{
		Type: "examination", SessionID: sessionID, State: string(s.State), Payload: result,
	})
	return result, nil
}

// EndSession finalizes the session from any non-completed state and writes
// the summary exactly once. Calling it again returns the stored summary
// unchanged.
func (m *SessionManager) EndSession(ctx context.Context, sessionID, userID string) (*models.Summary, error) {
	const op = "SessionManager.EndSession"

	unlock := m.lock(sessionID)
	defer unlock()

	s, err := m.loadOwned(ctx, op, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if s.State == models.StateCompleted {
		summary, gerr := m.reports.GetBySession(ctx, sessionID)
		if gerr != nil {
			return nil, utils.E(utils.CodeInternal, op, "completed session has no summary", gerr)
		}
		m.locks.Delete(sessionID)
		return summary, nil
	}

	if _, err := m.transition(ctx, s, statemachine.EventEndSession); err != nil {
		return nil, err
	}

	errRecords, err := m.errs.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load error records", err)
	}
	exams, err := m.exams.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load examinations", err)
	}

	tc := orchestrator.TurnContext{Topic: s.Topic, State: s.State}
	if transcript, lerr := m.turns.ListBySession(ctx, userID, sessionID, 0); lerr == nil {
		tc.Transcript = transcript
	}

	summary := m.roles.BuildSummary(ctx, tc, errRecords, exams)
	summary.SessionID = sessionID
	summary.UserID = userID

	if err := m.reports.Create(ctx, summary); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist summary", err)
	}
	if err := m.sessions.End(ctx, sessionID, m.now().UTC()); err != nil && err != utils.ErrNotFound {
		return nil, utils.E(utils.CodeInternal, op, "failed to complete session", err)
	}
	m.invalidateSession(ctx, sessionID)
	// the session takes no further writes; its mutex can go
	m.locks.Delete(sessionID)

	m.publish(ctx, SessionEvent{
		Type: "completed", SessionID: sessionID,
		State: string(models.StateCompleted), Payload: summary,
	})
	return summary, nil
}

// GetTranscript is a read-only view; it never contends with turn
// processing.
func (m *SessionManager) GetTranscript(ctx context.Context, sessionID, userID string, limit int) ([]models.TranscriptEntry, error) {
	const op = "SessionManager.GetTranscript"

	if _, err := m.loadOwned(ctx, op, sessionID, userID); err != nil {
		return nil, err
	}
	rows, err := m.turns.ListBySession(ctx, userID, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list transcript", err)
	}
	return rows, nil
}

// GetTransitions returns the session's state-machine audit trail, rejected
// attempts included.
func (m *SessionManager) GetTransitions(ctx context.Context, sessionID, userID string) ([]statemachine.Attempt, error) {
	const op = "SessionManager.GetTransitions"

	if _, err := m.loadOwned(ctx, op, sessionID, userID); err != nil {
		return nil, err
	}
	atts, err := m.sessions.ListTransitions(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list transitions", err)
	}
	return atts, nil
}

func (m *SessionManager) GetQuota(ctx context.Context, userID string, plan models.Plan) (*models.Quota, error) {
	return m.limiter.GetQuota(ctx, userID, plan)
}

// --- internals ---

func (m *SessionManager) loadOwned(ctx context.Context, op, sessionID, userID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	if m.cache != nil {
		var cached models.Session
		if hit, _ := m.cache.GetJSON(ctx, cache.SessionKey(sessionID), &cached); hit {
			if cached.UserID != userID {
				return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
			}
			return &cached, nil
		}
	}

	s, err := m.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if err == utils.ErrNotFound {
			return nil, utils.E(utils.CodeSessionNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}
	if s.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	m.cacheSession(ctx, s)
	return s, nil
}

// transition runs one lifecycle event through the session's machine and
// records the attempt, accepted or rejected, in the transition audit log.
// An audit write failure never blocks the operation itself.
func (m *SessionManager) transition(ctx context.Context, s *models.Session, event statemachine.Event) (models.SessionState, error) {
	mach := statemachine.NewAt(s.State)
	next, err := mach.Apply(event)
	for _, att := range mach.History() {
		if lerr := m.sessions.LogTransition(ctx, s.SessionID, att); lerr != nil && m.log != nil {
			m.log.WithError(lerr).WithFields(logrus.Fields{
				"session_id": s.SessionID,
				"event":      att.Event,
			}).Error("transition audit write failed")
		}
	}
	return next, err
}

func (m *SessionManager) stillOpen(ctx context.Context, sessionID string) (bool, error) {
	s, err := m.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return s.State != models.StateCompleted, nil
}

// markDegraded handles a total backend failure: the session keeps its
// state and data, gains the degraded flag, and the typed error propagates.
func (m *SessionManager) markDegraded(ctx context.Context, op string, s *models.Session, err error) error {
	if !utils.IsCode(err, utils.CodeAllLLMsFailed) {
		return err
	}
	_ = m.sessions.SetDegraded(ctx, s.SessionID, true)
	m.invalidateSession(ctx, s.SessionID)
	m.publish(ctx, SessionEvent{
		Type: "degraded", SessionID: s.SessionID, State: string(s.State),
	})
	if m.log != nil {
		m.log.WithError(err).WithField("session_id", s.SessionID).Error("all llm backends failed, session degraded")
	}
	return err
}

func (m *SessionManager) archiveAudio(ctx context.Context, sessionID string, audio []byte) string {
	if m.uploader == nil {
		return ""
	}
	url, err := m.uploader.Upload(ctx,
		storage.AudioObjectName(sessionID, uuid.NewString()),
		"application/octet-stream", bytes.NewReader(audio))
	if err != nil {
		if m.log != nil {
			m.log.WithError(err).Warn("audio archive upload failed")
		}
		return ""
	}
	return url
}

// appendTurn persists one transcript row. Losing a row breaks the audit
// trail behind error detection and scoring, so the failure is returned for
// the caller to surface. The embedding is best effort; a missing or failed
// embedder leaves the column NULL.
func (m *SessionManager) appendTurn(ctx context.Context, s *models.Session, speaker models.Speaker, content string, wasVoice bool, audioURL string) error {
	entry := &models.TranscriptEntry{
		ID:        uuid.NewString(),
		UserID:    s.UserID,
		SessionID: s.SessionID,
		Speaker:   speaker,
		Content:   content,
		WasVoice:  wasVoice,
		AudioURL:  audioURL,
		Timestamp: m.now().UTC(),
	}
	if m.embed != nil {
		if vals, err := m.embed.EmbedText(ctx, content); err == nil && len(vals) > 0 {
			vec := pgvector.NewVector(vals)
			entry.Embedding = &vec
		} else if err != nil && m.log != nil {
			m.log.WithError(err).WithField("session_id", s.SessionID).Warn("transcript embedding failed")
		}
	}
	if err := m.turns.Append(ctx, entry); err != nil {
		if m.log != nil {
			m.log.WithError(err).WithField("session_id", s.SessionID).Error("transcript append failed")
		}
		return err
	}
	return nil
}

func (m *SessionManager) cacheSession(ctx context.Context, s *models.Session) {
	if m.cache != nil {
		_ = m.cache.SetJSON(ctx, cache.SessionKey(s.SessionID), s, sessionCacheTTL)
	}
}

func (m *SessionManager) invalidateSession(ctx context.Context, sessionID string) {
	if m.cache != nil {
		_ = m.cache.Del(ctx, cache.SessionKey(sessionID))
	}
}

func (m *SessionManager) publish(ctx context.Context, ev SessionEvent) {
	if m.events == nil {
		return
	}
	if err := m.events.PublishSessionEvent(ctx, ev); err != nil && m.log != nil {
		m.log.WithError(err).Warn("session event publish failed")
	}
}
