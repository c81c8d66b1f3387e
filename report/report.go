// Package report renders a batch of dead-code results two ways: a
// human-readable annotated source listing, and a structured JSON record per
// file. Both consume an already-sorted []deadnix.Result and never touch the
// filesystem themselves.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/nix-community/deadnix-go"
	"github.com/nix-community/deadnix-go/syntax"
)

// Record is one diagnostic, computed from the binding name's byte range
// over UTF-8 decoded character offsets.
type Record struct {
	Message   string `json:"message"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndColumn int    `json:"endColumn"`
}

// FileReport is the top-level JSON shape PrintJSON emits.
type FileReport struct {
	File    string   `json:"file"`
	Results []Record `json:"results"`
}

// Records converts results into the {message, line, column, endColumn}
// shape that PrintJSON emits.
func Records(content []byte, results []deadnix.Result) []Record {
	out := make([]Record, 0, len(results))
	for _, r := range results {
		start, end := r.Binding.Name.TextRange()
		line, col := syntax.Position(content, start)
		_, endCol := syntax.Position(content, end)
		out = append(out, Record{
			Message:   message(content, r),
			Line:      line,
			Column:    col,
			EndColumn: endCol,
		})
	}
	return out
}

func message(content []byte, r deadnix.Result) string {
	verb := "Unused"
	if !r.Unused {
		verb = "Used"
	}
	return fmt.Sprintf("%s %s %s", verb, r.Scope.Kind.Category(), r.Binding.NameText(content))
}

var categoryColors = map[string]color.Attribute{
	"cyan":    color.FgCyan,
	"magenta": color.FgMagenta,
	"yellow":  color.FgYellow,
	"red":     color.FgRed,
	"white":   color.FgWhite,
}

func colorize(name, s string, noColor bool) string {
	attr, ok := categoryColors[name]
	if noColor || !ok {
		return s
	}
	return color.New(attr).Sprint(s)
}

// PrintJSON writes one FileReport as a single JSON line.
func PrintJSON(w io.Writer, file string, content []byte, results []deadnix.Result) error {
	return json.NewEncoder(w).Encode(FileReport{File: file, Results: Records(content, results)})
}

// PrintHuman renders an annotated source listing: one block per source
// line carrying results, with a caret band under the offending
// identifiers, a "|" leader per result, and the messages listed
// bottom-up — the same shape as the original tool's hand-built renderer,
// colorized per Scope.Category()/Scope.Color() unless NO_COLOR is set.
func PrintHuman(w io.Writer, file string, content []byte, results []deadnix.Result) error {
	if len(results) == 0 {
		return nil
	}
	noColor := os.Getenv("NO_COLOR") != ""

	lineStarts := []int{0}
	for i, b := range content {
		if b == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	lineOf := func(pos int) int {
		return sort.Search(len(lineStarts), func(i int) bool { return lineStarts[i] > pos })
	}
	lineText := func(n int) string {
		start := lineStarts[n-1]
		end := len(content)
		if n < len(lineStarts) {
			end = lineStarts[n] - 1
		}
		return string(content[start:end])
	}

	type group struct {
		line    int
		results []deadnix.Result
	}
	var groups []group
	for _, r := range results {
		start, _ := r.Binding.Name.TextRange()
		ln := lineOf(start)
		if len(groups) == 0 || groups[len(groups)-1].line != ln {
			groups = append(groups, group{line: ln})
		}
		groups[len(groups)-1].results = append(groups[len(groups)-1].results, r)
	}

	bw := bufio.NewWriter(w)
	for _, g := range groups {
		fmt.Fprintf(bw, "%s:%d:\n", file, g.line)
		fmt.Fprintf(bw, "> %s\n", lineText(g.line))

		lineStart := lineStarts[g.line-1]
		sort.Slice(g.results, func(i, j int) bool {
			si, _ := g.results[i].Binding.Name.TextRange()
			sj, _ := g.results[j].Binding.Name.TextRange()
			return si < sj
		})

		var underline strings.Builder
		underline.WriteString("> ")
		pos := lineStart
		for _, r := range g.results {
			start, end := r.Binding.Name.TextRange()
			underline.WriteString(strings.Repeat(" ", start-pos))
			underline.WriteString(strings.Repeat("^", end-start))
			pos = end
		}
		fmt.Fprintln(bw, underline.String())

		var bars strings.Builder
		pos = lineStart
		for _, r := range g.results {
			start, _ := r.Binding.Name.TextRange()
			bars.WriteString(strings.Repeat(" ", start-pos))
			bars.WriteByte('|')
			pos = start + 1
		}
		barsStr := bars.String()
		fmt.Fprintf(bw, "> %s\n", barsStr)

		for i := len(g.results) - 1; i >= 0; i-- {
			r := g.results[i]
			start, _ := r.Binding.Name.TextRange()
			prefix := barsStr
			if n := start - lineStart; n < len(barsStr) {
				prefix = barsStr[:n]
			}
			msg := colorize(r.Scope.Kind.Color(), message(content, r), noColor)
			fmt.Fprintf(bw, "> %s%s\n", prefix, msg)
		}
	}
	return bw.Flush()
}
