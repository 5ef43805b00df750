package questiongen

import (
	"strings"

	"go.uber.org/zap"
)

// mcqOptionCount is the number of choices every multiple choice question has.
const mcqOptionCount = 4

// sanitize applies the local checks to decoded entries. Entries that cannot
// be repaired are dropped and logged.
func (g *Generator) sanitize(qt QuestionType, raw []questionOutput) []Question {
	out := make([]Question, 0, len(raw))

	for i, r := range raw {
		q := Question{
			Question: strings.TrimSpace(r.Question),
			Answer:   strings.TrimSpace(r.Answer),
			Type:     qt.Label(),
		}
		if q.Question == "" || q.Answer == "" {
			g.drop(qt, i, "empty question or answer")
			continue
		}

		if qt == TypeMCQ {
			if len(r.Options) != mcqOptionCount {
				g.drop(qt, i, "multiple choice question does not have 4 options")
				continue
			}
			answer, ok := matchOption(q.Answer, r.Options)
			if !ok {
				g.drop(qt, i, "answer does not match any option")
				continue
			}
			q.Answer = answer
			q.Options = append([]string(nil), r.Options...)
		}

		out = append(out, q)
	}
	return out
}

// matchOption returns the option equal to answer, comparing trimmed text
// case-insensitively. The option is returned verbatim.
func matchOption(answer string, options []string) (string, bool) {
	for _, opt := range options {
		if opt == answer {
			return opt, true
		}
	}
	want := strings.TrimSpace(answer)
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), want) {
			return opt, true
		}
	}
	return "", false
}

func (g *Generator) drop(qt QuestionType, index int, reason string) {
	g.logger.Warn("dropping generated question",
		zap.String("type", string(qt)),
		zap.Int("index", index),
		zap.String("reason", reason))
}
