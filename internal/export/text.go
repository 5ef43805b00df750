package export

import (
	"fmt"
	"strings"

	"github.com/abhisek/docquiz/internal/questiongen"
)

const (
	headerPrefix   = "Questions Generated from: "
	groupSuffix    = " Questions"
	questionPrefix = "Question "
	answerPrefix   = "Answer: "
	optionIndent   = "   "
	mcqLabel       = "Multiple Choice"
)

// FormatText renders the plain-text export: a header naming sourceName,
// then one section per type label with numbered questions.
func FormatText(questions []questiongen.Question, sourceName string) string {
	lines := []string{
		headerPrefix + sourceName,
		strings.Repeat("=", 50),
		"",
	}

	for _, g := range GroupByType(questions) {
		lines = append(lines, g.Type+groupSuffix, strings.Repeat("-", 30), "")

		for i, q := range g.Questions {
			lines = append(lines, fmt.Sprintf("%s%d: %s", questionPrefix, i+1, q.Question))
			if q.Type == mcqLabel && len(q.Options) > 0 {
				for j, opt := range q.Options {
					lines = append(lines, fmt.Sprintf("%s%c. %s", optionIndent, 'A'+j, opt))
				}
			}
			lines = append(lines, answerPrefix+q.Answer, "")
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// ParseText reads a plain-text export back into its groups. Question, option
// and answer text may span several lines: a line that does not start a new
// question, option, answer or group continues the text before it. Blank lines
// inside an answer are kept unless the next non-blank line starts a new
// question or group.
func ParseText(s string) ([]Group, error) {
	lines := strings.Split(s, "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[0], headerPrefix) || lines[1] != strings.Repeat("=", 50) {
		return nil, fmt.Errorf("not a question export: missing header")
	}

	p := textParser{lines: lines}
	for p.i = 2; p.i < len(lines); p.i++ {
		if err := p.line(lines[p.i]); err != nil {
			return nil, err
		}
	}
	if p.state != inAnswer && p.current != nil {
		return nil, fmt.Errorf("question %q has no answer", p.current.Question)
	}
	p.finish()
	return p.groups, nil
}

type parseState int

const (
	idle parseState = iota
	inQuestion
	inOption
	inAnswer
)

type textParser struct {
	lines   []string
	i       int
	groups  []Group
	current *questiongen.Question
	state   parseState
	blanks  int
}

func (p *textParser) line(line string) error {
	switch {
	case line == "":
		if p.current != nil {
			p.blanks++
		}
		return nil

	case p.isGroupHeader(line):
		if p.current != nil && p.state != inAnswer {
			return fmt.Errorf("question %q has no answer", p.current.Question)
		}
		p.finish()
		p.groups = append(p.groups, Group{Type: strings.TrimSuffix(line, groupSuffix)})
		p.i++ // rule
		return nil

	case strings.HasPrefix(line, questionPrefix) && (p.current == nil || p.state == inAnswer):
		if len(p.groups) == 0 {
			return fmt.Errorf("line %d: question outside a group", p.i+1)
		}
		text, ok := questionText(line)
		if !ok {
			if p.current != nil {
				break
			}
			return fmt.Errorf("line %d: malformed question line %q", p.i+1, line)
		}
		p.finish()
		p.current = &questiongen.Question{Question: text, Type: p.group().Type}
		p.state = inQuestion
		return nil

	case p.state == inQuestion || p.state == inOption:
		if p.group().Type == mcqLabel && strings.HasPrefix(line, optionIndent) && isOptionLine(line) {
			p.flushBlanks()
			p.current.Options = append(p.current.Options, line[len(optionIndent)+3:])
			p.state = inOption
			return nil
		}
		if strings.HasPrefix(line, answerPrefix) {
			p.flushBlanks()
			p.current.Answer = strings.TrimPrefix(line, answerPrefix)
			p.state = inAnswer
			return nil
		}
	}

	if p.current == nil {
		return fmt.Errorf("line %d: unexpected content %q", p.i+1, line)
	}
	p.flushBlanks()
	t := p.target()
	*t += "\n" + line
	return nil
}

// isGroupHeader matches "<Type> Questions" followed by the dashed rule.
func (p *textParser) isGroupHeader(line string) bool {
	return strings.HasSuffix(line, groupSuffix) &&
		p.i+1 < len(p.lines) && p.lines[p.i+1] == strings.Repeat("-", 30)
}

func (p *textParser) group() *Group {
	return &p.groups[len(p.groups)-1]
}

// target is the text that continuation lines extend.
func (p *textParser) target() *string {
	switch p.state {
	case inOption:
		return &p.current.Options[len(p.current.Options)-1]
	case inAnswer:
		return &p.current.Answer
	default:
		return &p.current.Question
	}
}

func (p *textParser) flushBlanks() {
	if p.blanks == 0 {
		return
	}
	t := p.target()
	*t += strings.Repeat("\n", p.blanks)
	p.blanks = 0
}

// finish closes an answered question. Blank lines after its answer are
// separators, not content.
func (p *textParser) finish() {
	if p.current != nil && p.state == inAnswer {
		g := p.group()
		g.Questions = append(g.Questions, *p.current)
	}
	p.current = nil
	p.state = idle
	p.blanks = 0
}

// questionText strips the "Question N: " prefix.
func questionText(line string) (string, bool) {
	rest := strings.TrimPrefix(line, questionPrefix)
	n, text, ok := strings.Cut(rest, ": ")
	if !ok || n == "" {
		return "", false
	}
	for _, r := range n {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return text, true
}

// isOptionLine matches "   A. text".
func isOptionLine(line string) bool {
	rest := line[len(optionIndent):]
	return len(rest) >= 3 && rest[0] >= 'A' && rest[0] <= 'Z' && rest[1] == '.' && rest[2] == ' '
}

// Flatten returns the questions of groups in order.
func Flatten(groups []Group) []questiongen.Question {
	var out []questiongen.Question
	for _, g := range groups {
		out = append(out, g.Questions...)
	}
	return out
}
