package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/docquiz/internal/llm"
	"github.com/abhisek/docquiz/internal/store"
	"github.com/abhisek/docquiz/internal/ui/theme"
)

const timeLayout = "2006-01-02 15:04:05"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(theme.TableBorder).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.TableHeader
			}
			return theme.TableCell
		}).
		Headers(headers...)
}

// EventTable renders request log entries, newest first.
func EventTable(w io.Writer, events []store.LLMEvent) error {
	t := newTable("ID", "Timestamp", "Run", "Purpose", "Model", "In", "Out", "Ms", "OK")
	for _, e := range events {
		ok := "✓"
		if !e.Success {
			ok = "✗"
		}
		t.Row(
			strconv.Itoa(e.ID),
			e.Timestamp.Local().Format(timeLayout),
			shortID(e.RunID),
			e.Purpose,
			Truncate(e.Model, 28),
			strconv.Itoa(e.InputTokens),
			strconv.Itoa(e.OutputTokens),
			strconv.FormatInt(e.LatencyMs, 10),
			ok,
		)
	}
	_, err := lipgloss.Fprintln(w, t.Render())
	return err
}

// EventDetail renders one request log entry with its captured bodies.
func EventDetail(w io.Writer, e *store.LLMEvent) error {
	var b strings.Builder
	field := func(name, value string) {
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%-10s", name+":")) + " " + value + "\n")
	}

	field("ID", strconv.Itoa(e.ID))
	field("Time", e.Timestamp.Local().Format(timeLayout))
	field("Run", e.RunID)
	field("Provider", e.Provider)
	field("Model", e.Model)
	field("Purpose", e.Purpose)
	field("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens))
	field("Latency", fmt.Sprintf("%dms", e.LatencyMs))
	field("Success", strconv.FormatBool(e.Success))
	if e.ErrorMessage != "" {
		field("Error", theme.Fail.Render(e.ErrorMessage))
	}

	sep := theme.Subtitle.Render(strings.Repeat("─", 60))
	body := func(title, content string) {
		b.WriteString("\n" + sep + "\n" + theme.Section.Render(title) + "\n" + sep + "\n")
		if content == "" {
			content = theme.Hint.Render("(not captured)")
		}
		b.WriteString(content + "\n")
	}
	body("REQUEST", e.RequestBody)
	body("RESPONSE", e.ResponseBody)

	_, err := lipgloss.Fprint(w, b.String())
	return err
}

// UsageTables renders token usage per purpose and estimated cost per model.
func UsageTables(w io.Writer, byPurpose []store.PurposeUsage, byModel []store.ModelUsage) error {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Usage by Purpose") + "\n")
	pt := newTable("Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
	var calls, in, out int
	for _, u := range byPurpose {
		pt.Row(u.Purpose, strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens), strconv.Itoa(u.InputTokens+u.OutputTokens),
			strconv.Itoa(u.AvgLatencyMs))
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	pt.Row("TOTAL", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(out), strconv.Itoa(in+out), "")
	b.WriteString(pt.Render() + "\n")

	if len(byModel) > 0 {
		b.WriteString("\n" + theme.Title.Render("Estimated Cost (USD)") + "\n")
		mt := newTable("Model", "Calls", "Input", "Output", "Cost")

		var total float64
		var unknown []string
		for _, mu := range byModel {
			cost := "?"
			if mc := llm.LookupCost(mu.Model); mc != nil {
				c := mc.Cost(mu.InputTokens, mu.OutputTokens)
				total += c
				cost = FormatCost(c)
			} else {
				unknown = append(unknown, mu.Model)
			}
			mt.Row(Truncate(mu.Model, 32), strconv.Itoa(mu.Calls), strconv.Itoa(mu.InputTokens),
				strconv.Itoa(mu.OutputTokens), cost)
		}

		label := "TOTAL"
		if len(unknown) > 0 {
			label = "TOTAL (partial)"
		}
		mt.Row(label, "", "", "", FormatCost(total))
		b.WriteString(mt.Render() + "\n")

		if len(unknown) > 0 {
			b.WriteString(theme.Hint.Render("Pricing unavailable for: "+strings.Join(unknown, ", ")) + "\n")
		}
	}

	_, err := lipgloss.Fprint(w, b.String())
	return err
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// FormatCost formats a USD amount, keeping four decimals for sub-cent costs.
func FormatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
