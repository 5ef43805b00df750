package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/docquiz/internal/llm"
)

// template holds everything that differs between question types.
type template struct {
	persona   string
	task      string   // follows "generate N"
	fields    []string // field descriptions listed in the prompt
	closing   string   // optional guidance after the field list
	example   string   // literal JSON example of the expected shape
	maxTokens int
	schema    *llm.Schema
}

var templates = map[QuestionType]template{
	TypeShort: {
		persona: "You are an expert educator who creates clear, relevant questions from text content.",
		task:    "short answer questions that test comprehension and recall of key facts.",
		fields: []string{
			"question: the question text",
			"answer: a concise answer (1-3 sentences)",
			`type: "Short Answer"`,
		},
		example:   `{"questions": [{"question": "...", "answer": "...", "type": "Short Answer"}]}`,
		maxTokens: 4096,
		schema:    questionSetSchema(TypeShort),
	},
	TypeLong: {
		persona: "You are an expert educator who creates thought-provoking analytical questions from text content.",
		task:    "long answer questions that require analysis, synthesis, and detailed explanation.",
		fields: []string{
			"question: the question text",
			"answer: a detailed answer (paragraph form)",
			`type: "Long Answer"`,
		},
		example:   `{"questions": [{"question": "...", "answer": "...", "type": "Long Answer"}]}`,
		maxTokens: 8192,
		schema:    questionSetSchema(TypeLong),
	},
	TypeMCQ: {
		persona: "You are an expert educator who creates clear multiple choice questions with one correct answer and plausible distractors.",
		task:    "multiple choice questions with 4 options each.",
		fields: []string{
			"question: the question text",
			"options: array of 4 answer choices",
			"answer: the correct answer (should match one of the options exactly)",
			`type: "Multiple Choice"`,
		},
		closing:   "Make sure the correct answer is clearly identifiable and the distractors are plausible but incorrect.",
		example:   `{"questions": [{"question": "...", "options": ["A", "B", "C", "D"], "answer": "A", "type": "Multiple Choice"}]}`,
		maxTokens: 8192,
		schema:    questionSetSchema(TypeMCQ),
	},
}

// buildPrompt renders the user message for one generation call. text must
// already be truncated.
func buildPrompt(tpl template, text string, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Based on the following text, generate %d %s\n\n", count, tpl.task)
	fmt.Fprintf(&b, "Text: %s\n\n", text)
	b.WriteString("Please respond with a JSON object containing an array of questions. Each question should have:\n")
	for _, f := range tpl.fields {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	if tpl.closing != "" {
		fmt.Fprintf(&b, "\n%s\n", tpl.closing)
	}
	fmt.Fprintf(&b, "\nFormat: %s", tpl.example)

	return b.String()
}

// Truncate returns the first limit characters of text followed by "..."
// when text is longer than limit.
func Truncate(text string, limit int) string {
	r := []rune(text)
	if limit <= 0 || len(r) <= limit {
		return text
	}
	return string(r[:limit]) + "..."
}
