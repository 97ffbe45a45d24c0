package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/gnolang/pegmacro/peg"
	"github.com/gnolang/pegmacro/source"
)

const tabWidth = 8

// diagnostic kinds
const (
	ParseFailure = "parse-error"
	Failure      = "error"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	noteStyle    = color.New(color.FgGreen, color.Bold)
)

// Diagnostic is a located problem in a source text.
type Diagnostic struct {
	Kind     string
	Filename string
	Start    source.Position
	End      source.Position
	Message  string
	Notes    []string
}

// FromParseError builds a diagnostic pointing at the farthest failure of a
// parse.
func FromParseError(perr *peg.ParseError) Diagnostic {
	pos := perr.Errors.Position()
	if pos < 0 {
		pos = 0
	}
	text := perr.Source.Text()

	msg := "unexpected end of input"
	if pos < len(text) {
		r, _ := utf8.DecodeRuneInString(text[pos:])
		msg = fmt.Sprintf("unexpected %q", string(r))
	}

	trace := perr.Errors.Trace()
	if i := strings.IndexByte(trace, '\n'); i >= 0 {
		trace = trace[:i]
	}

	start := perr.Position()
	return Diagnostic{
		Kind:     ParseFailure,
		Filename: displayName(perr.Source),
		Start:    start,
		End:      start,
		Message:  msg,
		Notes:    []string{"in " + strings.TrimSpace(trace)},
	}
}

// FormatError renders err for a terminal. Parse failures anywhere in the
// chain are shown with a snippet of the text that failed; the rest of the
// chain becomes a note.
func FormatError(err error) string {
	var perr *peg.ParseError
	if !errors.As(err, &perr) {
		return errorStyle.Sprint("error: ") + messageStyle.Sprintf("%s\n", err.Error())
	}

	d := FromParseError(perr)
	if context := strings.TrimSuffix(err.Error(), perr.Error()); context != err.Error() {
		if context = strings.TrimSuffix(context, ": "); context != "" {
			d.Notes = append([]string{context}, d.Notes...)
		}
	}
	return Format([]Diagnostic{d}, perr.Source)
}

// Format renders diagnostics against the source they point into.
func Format(diags []Diagnostic, src source.Source) string {
	lines := strings.Split(src.Text(), "\n")
	var builder strings.Builder
	for _, d := range diags {
		builder.WriteString(buildDiagnostic(d, lines))
	}
	return builder.String()
}

func displayName(src source.Source) string {
	if name := src.Name(); name != "" {
		return name
	}
	if c, ok := src.(interface{ IsComposed() bool }); ok && c.IsComposed() {
		return "<generated>"
	}
	return "<input>"
}

/***** Diagnostic Builder *****/

type diagnosticData struct {
	Kind            string
	Filename        string
	Padding         string
	StartLine       int
	StartColumn     int
	EndLine         int
	EndColumn       int
	MaxLineNumWidth int
	Message         string
	Notes           []string
	SnippetLines    []string
	CommonIndent    string
}

const diagnosticTemplate = `{{header .Kind .MaxLineNumWidth .Filename .StartLine .StartColumn}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding -}}
{{underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines .CommonIndent -}}
{{range .Notes}}{{note .}}{{end}}
`

var diagnosticTmpl = template.Must(template.New("diagnostic").Funcs(template.FuncMap{
	"header":              header,
	"snippet":             codeSnippet,
	"underlineAndMessage": underlineAndMessage,
	"note":                note,
}).Parse(diagnosticTemplate))

func buildDiagnostic(d Diagnostic, lines []string) string {
	startLine := d.Start.Line
	endLine := d.End.Line
	maxLineNumWidth := calculateMaxLineNumWidth(endLine)
	padding := strings.Repeat(" ", maxLineNumWidth+1)

	var commonIndent string
	if isValidLineRange(startLine, endLine, lines) {
		commonIndent = findCommonIndent(lines[startLine-1 : endLine])
	}

	data := diagnosticData{
		Kind:            d.Kind,
		Filename:        d.Filename,
		StartLine:       startLine,
		StartColumn:     d.Start.Column,
		EndLine:         endLine,
		EndColumn:       d.End.Column,
		Message:         d.Message,
		Notes:           d.Notes,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         padding,
		CommonIndent:    commonIndent,
		SnippetLines:    lines,
	}

	var buf bytes.Buffer
	if err := diagnosticTmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting diagnostic: %v", err)
	}
	return buf.String()
}

// utils functions used in the text template

func header(kind string, maxLineNumWidth int, filename string, startLine int, startColumn int) string {
	endString := errorStyle.Sprint("error: ")
	endString += ruleStyle.Sprintf("%s\n", kind)

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprintf("%s:%d:%d", filename, startLine, startColumn)
	return endString
}

func codeSnippet(snippetLines []string, startLine int, endLine int, maxLineNumWidth int, commonIndent string, padding string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)

	for i := startLine; i <= endLine; i++ {
		if i-1 < 0 || i-1 >= len(snippetLines) {
			continue
		}

		line := strings.TrimPrefix(snippetLines[i-1], commonIndent)
		lineNum := fmt.Sprintf("%*d", maxLineNumWidth, i)
		endString += lineStyle.Sprintf("%s | ", lineNum) + line + "\n"
	}
	return endString
}

func underlineAndMessage(message string, padding string, startLine int, endLine int, startColumn int, endColumn int, snippetLines []string, commonIndent string) string {
	endString := lineStyle.Sprintf("%s| ", padding)

	if !isValidLineRange(startLine, endLine, snippetLines) {
		endString += messageStyle.Sprintf("%s\n", message)
		return endString
	}

	commonIndentWidth := calculateVisualColumn(commonIndent, utf8.RuneCountInString(commonIndent)+1)

	underlineStart := calculateVisualColumn(snippetLines[startLine-1], startColumn) - commonIndentWidth
	if underlineStart < 0 {
		underlineStart = 0
	}

	// end columns are exclusive; a point still gets one mark
	underlineEnd := calculateVisualColumn(snippetLines[endLine-1], endColumn) - commonIndentWidth
	underlineLength := underlineEnd - underlineStart
	if underlineLength < 1 {
		underlineLength = 1
	}

	endString += strings.Repeat(" ", underlineStart)
	endString += messageStyle.Sprintf("%s\n", strings.Repeat("^", underlineLength))

	endString += lineStyle.Sprintf("%s= ", padding)
	endString += messageStyle.Sprintf("%s\n", message)
	return endString
}

func note(note string) string {
	if note == "" {
		return ""
	}
	return noteStyle.Sprint("note: ") + note + "\n"
}

func isValidLineRange(startLine int, endLine int, snippetLines []string) bool {
	return startLine > 0 &&
		endLine > 0 &&
		startLine <= endLine &&
		startLine <= len(snippetLines) &&
		endLine <= len(snippetLines)
}

func calculateMaxLineNumWidth(endLine int) int {
	return len(fmt.Sprintf("%d", endLine))
}

// calculateVisualColumn calculates the visual column position of a 1-based
// rune column, taking into account tab characters.
func calculateVisualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visualColumn := 0
	col := 1
	for _, ch := range line {
		if col == column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
		col++
	}
	return visualColumn
}

// findCommonIndent finds the common indent in the code snippet.
func findCommonIndent(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	// find first non-empty line's indent
	var firstIndent []rune
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed != "" {
			firstIndent = []rune(line[:len(line)-len(trimmed)])
			break
		}
	}

	if len(firstIndent) == 0 {
		return ""
	}

	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}

		currentIndent := []rune(line[:len(line)-len(trimmed)])
		firstIndent = commonPrefix(firstIndent, currentIndent)

		if len(firstIndent) == 0 {
			break
		}
	}

	return string(firstIndent)
}

// commonPrefix finds the common prefix of two strings.
func commonPrefix(a, b []rune) []rune {
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:minLen]
}
