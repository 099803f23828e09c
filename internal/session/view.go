package session

import (
	"sort"
	"time"

	"docqa/internal/extract"
)

// View is a JSON-ready snapshot of a session for rendering.
type View struct {
	SessionID      string          `json:"session_id"`
	State          State           `json:"state"`
	Mode           Mode            `json:"mode,omitempty"`
	Document       *DocumentView   `json:"document,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	SummaryError   string          `json:"summary_error,omitempty"`
	Questions      []string        `json:"questions,omitempty"`
	QuestionsError string          `json:"questions_error,omitempty"`
	Asked          []ExchangeView  `json:"asked,omitempty"`
	Answers        []ChallengeView `json:"answers,omitempty"`
}

type DocumentView struct {
	Filename   string       `json:"filename"`
	Kind       extract.Kind `json:"kind"`
	Characters int          `json:"characters"`
	UploadedAt time.Time    `json:"uploaded_at"`
}

// ExchangeView is one Ask Anything question and its answer.
type ExchangeView struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ChallengeView is the user's answer to a generated question and its feedback.
type ChallengeView struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Feedback string `json:"feedback,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Snapshot captures the session for rendering.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		SessionID:      s.ID,
		State:          s.state(),
		Summary:        s.summary,
		SummaryError:   errString(s.summaryErr),
		QuestionsError: errString(s.questionsErr),
	}
	if s.document == nil {
		return v
	}

	v.Mode = s.mode
	v.Document = &DocumentView{
		Filename:   s.document.Filename,
		Kind:       s.document.Kind,
		Characters: len([]rune(s.document.Text)),
		UploadedAt: s.document.UploadedAt,
	}
	if s.mode == ModeChallengeMe {
		v.Questions = append([]string(nil), s.questions...)
	}
	for _, in := range s.asked {
		v.Asked = append(v.Asked, ExchangeView{
			Question: in.Question,
			Answer:   in.Feedback,
			Error:    errString(in.Err),
		})
	}
	indexes := make([]int, 0, len(s.answers))
	for i := range s.answers {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for _, i := range indexes {
		in := s.answers[i]
		v.Answers = append(v.Answers, ChallengeView{
			Index:    i,
			Question: in.Question,
			Answer:   in.Answer,
			Feedback: in.Feedback,
			Error:    errString(in.Err),
		})
	}
	return v
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
