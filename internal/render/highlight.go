package render

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlight pretty-prints a raw JSON body with ANSI colours. background, when
// set, replaces every token background so the block matches the pane.
func Highlight(raw []byte, background string) string {
	source := Indent(raw)

	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Get("terminal256")
	}
	if formatter == nil {
		return source
	}

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	if background != "" {
		bg := chroma.MustParseColour(background)
		if s, err := style.Builder().Transform(func(entry chroma.StyleEntry) chroma.StyleEntry {
			entry.Background = bg
			return entry
		}).Build(); err == nil {
			style = s
		}
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return strings.TrimRight(buf.String(), "\n")
}
