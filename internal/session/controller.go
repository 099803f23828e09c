package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"docqa/internal/extract"
	"docqa/internal/llm"
	"docqa/internal/tasks"
)

// Controller reacts to user events on a session, one event at a time, and
// blocks on the completion call each event needs.
type Controller struct {
	newClient llm.Factory
	envKey    Credential
	log       *slog.Logger
	now       func() time.Time
}

// NewController builds a controller. A non-empty envKey is applied to every
// new session so users are not prompted for one.
func NewController(factory llm.Factory, envKey string, log *slog.Logger) *Controller {
	return &Controller{
		newClient: factory,
		envKey:    Credential(envKey),
		log:       log,
		now:       time.Now,
	}
}

// NewSession creates a session, pre-authenticated when the environment
// supplied a key.
func (c *Controller) NewSession(ctx context.Context) (*Session, error) {
	s := New(uuid.NewString())
	if c.envKey == "" {
		return s, nil
	}
	if err := c.SetCredential(ctx, s, string(c.envKey)); err != nil {
		return nil, err
	}
	return s, nil
}

// SetCredential stores key on the session, moving it out of NoCredential.
func (c *Controller) SetCredential(_ context.Context, s *Session, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrCredentialMissing
	}
	client, err := c.newClient(key)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = Credential(key)
	s.client = client
	c.log.Info("credential accepted", "session_id", s.ID, "credential", s.credential)
	return nil
}

// Upload extracts the file and makes it the active document, then
// summarizes it. Extraction failures leave the previous document in place.
// A summary failure does not undo the upload; it is recorded on the session
// and can be retried with RetrySummary.
func (c *Controller) Upload(ctx context.Context, s *Session, filename, contentType string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return ErrCredentialMissing
	}
	kind, err := extract.DetectKind(filename, contentType)
	if err != nil {
		return err
	}
	text, err := extract.Extract(content, kind)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", filename, err)
	}

	s.document = &Document{
		Filename:   filename,
		Kind:       kind,
		Text:       text,
		UploadedAt: c.now(),
	}
	s.mode = ModeAskAnything
	s.questions = nil
	s.questionsErr = nil
	s.resetInteractions()
	c.log.Info("document loaded", "session_id", s.ID, "filename", filename, "kind", kind, "bytes", len(content))

	c.summarize(ctx, s)
	return nil
}

// RetrySummary summarizes the active document again.
func (c *Controller) RetrySummary(ctx context.Context, s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}
	return c.summarize(ctx, s)
}

func (c *Controller) summarize(ctx context.Context, s *Session) error {
	start := time.Now()
	summary, err := tasks.SummarizeText(ctx, s.client, s.document.Text)
	c.logTask(s, "summarize", start, err)
	s.summary, s.summaryErr = summary, err
	return err
}

// SelectMode switches the interaction mode. Entering Challenge Me generates
// a fresh set of questions every time; the document and summary are kept.
func (c *Controller) SelectMode(ctx context.Context, s *Session, mode Mode) error {
	if !mode.valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}
	s.mode = mode
	s.questions = nil
	s.questionsErr = nil
	s.resetInteractions()
	if mode != ModeChallengeMe {
		return nil
	}

	start := time.Now()
	questions, err := tasks.GenerateLogicQuestions(ctx, s.client, s.document.Text)
	c.logTask(s, "generate_questions", start, err)
	s.questions, s.questionsErr = questions, err
	return err
}

// Ask answers a free-form question from the document.
func (c *Controller) Ask(ctx context.Context, s *Session, question string) (Interaction, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Interaction{}, ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return Interaction{}, err
	}
	if s.mode != ModeAskAnything {
		return Interaction{}, ErrModeMismatch
	}

	start := time.Now()
	answer, err := tasks.AnswerQuestion(ctx, s.client, s.document.Text, question)
	c.logTask(s, "answer", start, err)
	in := Interaction{Question: question, Feedback: answer, Err: err}
	s.asked = append(s.asked, in)
	return in, err
}

// SubmitAnswer evaluates the user's answer to the generated question at
// index. Each submission is independent of the others.
func (c *Controller) SubmitAnswer(ctx context.Context, s *Session, index int, answer string) (Interaction, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return Interaction{}, ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return Interaction{}, err
	}
	if s.mode != ModeChallengeMe {
		return Interaction{}, ErrModeMismatch
	}
	if index < 0 || index >= len(s.questions) {
		return Interaction{}, fmt.Errorf("%w: index %d", ErrQuestionNotFound, index)
	}

	question := s.questions[index]
	start := time.Now()
	feedback, err := tasks.EvaluateAnswer(ctx, s.client, s.document.Text, question, answer)
	c.logTask(s, "evaluate", start, err)
	in := Interaction{Question: question, Answer: answer, Feedback: feedback, Err: err}
	s.answers[index] = in
	return in, err
}

// ready reports why task functions cannot run yet. Callers hold s.mu.
func (s *Session) ready() error {
	if s.client == nil {
		return ErrCredentialMissing
	}
	if s.document == nil {
		return ErrNoDocument
	}
	return nil
}

func (c *Controller) logTask(s *Session, task string, start time.Time, err error) {
	attrs := []any{"session_id", s.ID, "task", task, "duration_ms", time.Since(start).Milliseconds()}
	if err != nil {
		c.log.Warn("task failed", append(attrs, "err", err)...)
		return
	}
	c.log.Debug("task completed", attrs...)
}
