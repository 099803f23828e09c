// Package prompt builds the completion requests for each assistant task.
//
// Document text is cut to a fixed per-task character budget rather than a
// token count. Text beyond the budget is never sent to the model.
package prompt

import (
	"fmt"
	"unicode/utf8"
)

// Per-task character caps applied to document text.
const (
	SummaryCap   = 3000
	AnswerCap    = 6000
	QuestionsCap = 3000
	EvaluateCap  = 3000
)

// Sampling temperatures per task.
const (
	SummaryTemperature   = 0.5
	AnswerTemperature    = 0.4
	QuestionsTemperature = 0.6
	EvaluateTemperature  = 0.5
)

// Task names the assistant operation a request was built for.
type Task string

const (
	TaskSummarize Task = "summarize"
	TaskAnswer    Task = "answer"
	TaskQuestions Task = "generate_questions"
	TaskEvaluate  Task = "evaluate"
)

// Request is a single completion request: the full instruction sent as one
// user message and the sampling temperature.
type Request struct {
	Task        Task
	Instruction string
	Temperature float64
}

// Summarize asks for a short summary of the document.
func Summarize(text string) Request {
	return Request{
		Task:        TaskSummarize,
		Instruction: "Summarize the following text in under 150 words:\n\n" + Head(text, SummaryCap),
		Temperature: SummaryTemperature,
	}
}

// Answer asks for an answer grounded only in the document, with a reference
// to the paragraph or section that justifies it.
func Answer(text, question string) Request {
	instruction := fmt.Sprintf(`
You are a helpful assistant. Use the document content below to answer the user's question.
Only answer using the document. Justify with paragraph or section reference.

Document:
%s

Question:
%s
`, Head(text, AnswerCap), question)
	return Request{Task: TaskAnswer, Instruction: instruction, Temperature: AnswerTemperature}
}

// GenerateQuestions asks for three comprehension questions about the document.
func GenerateQuestions(text string) Request {
	return Request{
		Task:        TaskQuestions,
		Instruction: "Generate 3 logic-based or comprehension questions based on this document:\n\n" + Head(text, QuestionsCap),
		Temperature: QuestionsTemperature,
	}
}

// Evaluate asks for feedback on a user's answer, citing the document.
func Evaluate(text, question, answer string) Request {
	instruction := fmt.Sprintf(`
Evaluate the following user answer based on the document.
Provide clear feedback and reference supporting parts from the document.

Document:
%s

Question: %s
User Answer: %s
`, Head(text, EvaluateCap), question, answer)
	return Request{Task: TaskEvaluate, Instruction: instruction, Temperature: EvaluateTemperature}
}

// Head returns the first n characters (runes) of s.
func Head(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
