package diag

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/muesli/termenv"
)

// Kind classifies a fatal failure by the stage that produced it.
type Kind int

const (
	KindLoad Kind = iota
	KindCompile
	KindBind
	KindRuntime
	KindHost
)

func (k Kind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindCompile:
		return "compile"
	case KindBind:
		return "bind"
	case KindRuntime:
		return "runtime"
	default:
		return "host"
	}
}

// Mark is one frame of a captured call trace.
type Mark struct {
	Function string
	File     string
	Line     int // 1-based, 0 if unknown
	Col      int
	Snippet  string // the source line, if known
}

// String renders the location as "file:line:col in fn"; the function is
// left out when unknown.
func (m Mark) String() string {
	loc := fmt.Sprintf("%s:%d:%d", orUnknown(m.File), m.Line, m.Col)
	if m.Function == "" {
		return loc
	}
	return loc + " in " + m.Function
}

// Error is the diagnostic record for a fatal failure: the trace innermost
// frame first, the message and an optional help line. It is built once and
// never mutated.
type Error struct {
	Kind    Kind
	Marks   []Mark
	Message string
	Help    string
}

func (e *Error) Error() string { return e.Format(termenv.Ascii) }

// Format renders the report. Styling follows profile; termenv.Ascii yields
// plain text.
func (e *Error) Format(profile termenv.Profile) string {
	red := profile.Color("1")
	blue := profile.Color("4")
	cyan := profile.Color("6")

	var b strings.Builder
	head := profile.String("error[" + e.Kind.String() + "]").Foreground(red).Bold()
	b.WriteString(head.String())
	b.WriteString(": ")
	b.WriteString(profile.String(e.Message).Bold().String())
	b.WriteString("\n")

	for _, m := range e.Marks {
		b.WriteString(profile.String("  --> ").Foreground(blue).String())
		b.WriteString(m.String() + "\n")
		if m.Snippet == "" {
			continue
		}
		num := strconv.Itoa(m.Line)
		gutter := strings.Repeat(" ", len(num))
		b.WriteString(profile.String(gutter+" |").Foreground(blue).String() + "\n")
		b.WriteString(profile.String(num + " |").Foreground(blue).String())
		b.WriteString(" " + expandTabs(m.Snippet) + "\n")
		if m.Col > 0 {
			caret := strings.Repeat(" ", caretOffset(m.Snippet, m.Col)) + "^"
			b.WriteString(profile.String(gutter + " |").Foreground(blue).String())
			b.WriteString(" " + profile.String(caret).Foreground(red).String() + "\n")
		}
	}

	if e.Help != "" {
		b.WriteString(profile.String("help").Foreground(cyan).Bold().String())
		b.WriteString(": " + e.Help + "\n")
	}
	return b.String()
}

// tabWidth is the width a tab is printed with in snippets.
const tabWidth = 4

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// caretOffset is the printed width of line before byte column col, with
// tabs expanded like the snippet. Columns past the end extend with spaces.
func caretOffset(line string, col int) int {
	if col-1 > len(line) {
		return utf8.RuneCountInString(expandTabs(line)) + col - 1 - len(line)
	}
	return utf8.RuneCountInString(expandTabs(line[:col-1]))
}

func orUnknown(s string) string {
	if s == "" {
		return "<unknown>"
	}
	return s
}
