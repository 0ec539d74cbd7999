package tui

import (
	"mime"
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// A width of 0 keeps glamour's default wrapping.
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// IsMarkdown reports whether contentType names a markdown body.
func IsMarkdown(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/markdown" || mediaType == "text/x-markdown"
}

// RenderBody renders markdown bodies with render and returns every other body as is.
// A failed render falls back to the raw body.
func RenderBody(contentType, body string, render func(string) (string, error)) string {
	if render == nil || !IsMarkdown(contentType) {
		return body
	}
	out, err := render(body)
	if err != nil {
		return body
	}
	return strings.TrimRight(out, "\n") + "\n"
}
