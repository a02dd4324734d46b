package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/Garik-/prettymidi/pkg/prettymidi"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	headerStyle = lipgloss.NewStyle().Bold(true).Width(10).Align(lipgloss.Left)
	cellStyle   = lipgloss.NewStyle().Width(10).Align(lipgloss.Left)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

type fileOutput struct {
	File   string             `json:"file"`
	Error  string             `json:"error,omitempty"`
	Result *prettymidi.Result `json:"result,omitempty"`
}

func writeJSON(w io.Writer, results []*result) error {
	out := make([]fileOutput, 0, len(results))
	for _, r := range results {
		o := fileOutput{File: r.name, Result: r.result}
		if r.err != nil {
			o.Error = r.err.Error()
		}
		out = append(out, o)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if len(out) == 1 {
		return enc.Encode(out[0])
	}
	return enc.Encode(out)
}

func row(style lipgloss.Style, cells ...string) string {
	s := ""
	for _, c := range cells {
		s += style.Render(c)
	}
	return s
}

// textWriter keeps the first write error and skips every write after it.
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) println(s string) {
	if t.err == nil {
		_, t.err = fmt.Fprintln(t.w, s)
	}
}

func writeText(w io.Writer, results []*result) error {
	out := &textWriter{w: w}

	for _, r := range results {
		out.println(titleStyle.Render(r.name))

		if r.err != nil {
			out.println(errorStyle.Render(r.err.Error()))
			continue
		}

		res := r.result
		out.println(fmt.Sprintf("resolution %d, %d tempo breakpoints, %d events, end %.3fs",
			res.Resolution, len(res.TickScales), res.Stats.Events, float64(res.EndTime())))

		out.println(row(headerStyle, "#", "program", "drum", "notes", "bends", "controls", "end"))
		for i, inst := range res.Instruments {
			out.println(row(cellStyle,
				strconv.Itoa(i),
				strconv.Itoa(int(inst.Program)),
				strconv.FormatBool(inst.IsDrum),
				strconv.Itoa(len(inst.Notes)),
				strconv.Itoa(len(inst.PitchBends)),
				strconv.Itoa(len(inst.ControlChanges)),
				strconv.FormatFloat(float64(inst.EndTime()), 'f', 3, 64)))
		}

		if res.Stats.UnmatchedNoteOns > 0 {
			out.println(warnStyle.Render(fmt.Sprintf("%d note-ons never released", res.Stats.UnmatchedNoteOns)))
		}
		if res.Stats.Orphans > 0 {
			out.println(warnStyle.Render(fmt.Sprintf("%d channels had events before any program", res.Stats.Orphans)))
		}

		if out.err != nil {
			return out.err
		}
	}

	return out.err
}
