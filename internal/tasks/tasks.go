// Package tasks composes prompt building, one completion call, and light
// post-processing for each assistant operation.
package tasks

import (
	"context"
	"strings"

	"docqa/internal/llm"
	"docqa/internal/prompt"
)

// SummarizeText returns a short summary of the document.
func SummarizeText(ctx context.Context, c llm.Client, text string) (string, error) {
	return complete(ctx, c, prompt.Summarize(text))
}

// AnswerQuestion answers question from the document text. The model is asked
// to cite a paragraph or section; that is not checked here.
func AnswerQuestion(ctx context.Context, c llm.Client, text, question string) (string, error) {
	return complete(ctx, c, prompt.Answer(text, question))
}

// GenerateLogicQuestions returns the comprehension questions produced by the
// model. The prompt asks for three but any count, including zero, is returned
// as is.
func GenerateLogicQuestions(ctx context.Context, c llm.Client, text string) ([]string, error) {
	raw, err := complete(ctx, c, prompt.GenerateQuestions(text))
	if err != nil {
		return nil, err
	}
	return SplitQuestions(raw), nil
}

// EvaluateAnswer returns feedback on answer to question.
func EvaluateAnswer(ctx context.Context, c llm.Client, text, question, answer string) (string, error) {
	return complete(ctx, c, prompt.Evaluate(text, question, answer))
}

// SplitQuestions splits raw model output into one question per non-empty
// line, stripping list-marker dashes and surrounding spaces.
func SplitQuestions(raw string) []string {
	questions := []string{}
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		q := strings.Trim(strings.TrimSpace(line), "- ")
		if q == "" {
			continue
		}
		questions = append(questions, q)
	}
	return questions
}

func complete(ctx context.Context, c llm.Client, req prompt.Request) (string, error) {
	out, err := c.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
