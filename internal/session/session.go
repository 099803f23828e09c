// Package session holds the per-user state of one interactive session and
// the controller that drives task functions in response to user events.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"docqa/internal/extract"
	"docqa/internal/llm"
)

var (
	ErrCredentialMissing = errors.New("OpenAI API key required")
	ErrNoDocument        = errors.New("no document loaded")
	ErrInvalidMode       = errors.New("invalid interaction mode")
	ErrModeMismatch      = errors.New("action not available in current mode")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrEmptyInput        = errors.New("input must not be empty")
)

// State is the controller state of a session.
type State string

const (
	StateNoCredential   State = "no_credential"
	StateAwaitingUpload State = "awaiting_upload"
	StateDocumentLoaded State = "document_loaded"
)

// Mode is the interaction mode selected once a document is loaded.
type Mode string

const (
	ModeAskAnything Mode = "ask_anything"
	ModeChallengeMe Mode = "challenge_me"
)

func (m Mode) valid() bool {
	return m == ModeAskAnything || m == ModeChallengeMe
}

// Credential is an API secret. It never renders its value in logs or output.
type Credential string

func (Credential) String() string { return "[redacted]" }

func (Credential) LogValue() slog.Value { return slog.StringValue("[redacted]") }

// Document is the text extracted from the single active upload.
type Document struct {
	Filename   string
	Kind       extract.Kind
	Text       string
	UploadedAt time.Time
}

// Interaction pairs a question with the user's answer and the model output.
// For Ask Anything the model output is the answer; for Challenge Me it is
// feedback on the user's answer.
type Interaction struct {
	Question string
	Answer   string
	Feedback string
	Err      error
}

// Session is the explicit context every controller operation runs against.
// Operations on one session are serialized.
type Session struct {
	ID string

	mu         sync.Mutex
	credential Credential
	client     llm.Client

	document     *Document
	mode         Mode
	summary      string
	summaryErr   error
	questions    []string
	questionsErr error
	asked        []Interaction
	answers      map[int]Interaction
}

// New returns an empty session without a credential.
func New(id string) *Session {
	return &Session{ID: id, answers: map[int]Interaction{}}
}

// State reports where the session is in its lifecycle.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Session) state() State {
	switch {
	case s.client == nil:
		return StateNoCredential
	case s.document == nil:
		return StateAwaitingUpload
	default:
		return StateDocumentLoaded
	}
}

// resetInteractions drops every interaction record of the current view.
func (s *Session) resetInteractions() {
	s.asked = nil
	s.answers = map[int]Interaction{}
}
