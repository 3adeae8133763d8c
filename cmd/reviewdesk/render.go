package main

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

type renderFunc func(markdown string) string

func plain(markdown string) string {
	return markdown
}

// newRenderer renders markdown with glamour when w is a terminal and
// passes text through otherwise, so piped output stays greppable.
func newRenderer(w io.Writer, raw bool) renderFunc {
	f, ok := w.(*os.File)
	if raw || !ok || !term.IsTerminal(int(f.Fd())) {
		return plain
	}

	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return plain
	}

	return func(markdown string) string {
		out, err := r.Render(markdown)
		if err != nil {
			return markdown
		}
		return out
	}
}
