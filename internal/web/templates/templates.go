// Package templates holds the HTML components served by the web package.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// page wraps body in the shared document shell.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		pw := &writer{w: w}
		pw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		pw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		pw.raw(`<title>`)
		pw.text(title)
		pw.raw(`</title></head><body class="bg-gray-50 text-gray-900">`)
		if pw.err != nil {
			return pw.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		pw.raw(`</body></html>`)
		return pw.err
	})
}

// writer keeps the first write error so components can write unconditionally.
type writer struct {
	w   io.Writer
	err error
}

func (p *writer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *writer) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *writer) textf(format string, args ...any) {
	p.text(fmt.Sprintf(format, args...))
}

// ErrorAlert renders an error fragment with the support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		pw := &writer{w: w}
		pw.raw(`<div class="error-alert" role="alert"><p class="font-semibold">`)
		pw.text(message)
		pw.raw(`</p>`)
		if action != "" {
			pw.raw(`<p>`)
			pw.text(action)
			pw.raw(`</p>`)
		}
		pw.raw(`<p class="text-xs">Code: `)
		pw.text(code)
		pw.raw(`</p></div>`)
		return pw.err
	})
}
