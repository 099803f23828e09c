package llm

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/prompt"
)

// StubClient answers deterministically without network access.
// It is selected with LLM_PROVIDER=stub.
type StubClient struct{}

// NewStubFactory returns a Factory that ignores the credential.
func NewStubFactory() Factory {
	return func(string) (Client, error) {
		return StubClient{}, nil
	}
}

func (StubClient) Complete(_ context.Context, req prompt.Request) (string, error) {
	switch req.Task {
	case prompt.TaskSummarize:
		return "Stub summary: " + firstWords(afterLast(req.Instruction, "\n\n"), 20), nil
	case prompt.TaskAnswer:
		return "Stub answer, see paragraph 1.", nil
	case prompt.TaskQuestions:
		return "- What is the main topic of the document?\n- Which claim does the author support most strongly?\n- What conclusion follows from the first section?", nil
	case prompt.TaskEvaluate:
		return "Stub feedback: compare your answer with paragraph 1.", nil
	default:
		return "", fmt.Errorf("%w: stub: unknown task %q", ErrTransport, req.Task)
	}
}

func afterLast(s, sep string) string {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[i+len(sep):]
	}
	return s
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
