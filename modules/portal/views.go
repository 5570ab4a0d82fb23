package portal

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/biportal/svc/access"
)

// page wraps body in the minimal portal document.
func page(lang, title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html><html lang="`+templ.EscapeString(lang)+`"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(title)+`</title></head><body>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// postButton renders a navigation as a form so it never runs on prefetch.
func postButton(a access.Action) string {
	return `<form method="post" action="` + templ.EscapeString(string(templ.URL(a.URL))) + `"><button type="submit">` +
		templ.EscapeString(a.Label) + `</button></form>`
}

// BlockedPage renders the blocked screen. An action without a URL retries
// the status fetch.
func BlockedPage(lang string, s access.BlockedScreen) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		html := `<main class="blocked" data-reason="` + templ.EscapeString(string(s.Reason)) + `">` +
			`<h1>` + templ.EscapeString(s.Title) + `</h1>` +
			`<p>` + templ.EscapeString(s.Message) + `</p>`

		switch {
		case s.Action != nil && s.Action.URL == "":
			html += postButton(access.Action{Label: s.Action.Label, URL: RefreshPath})
		case s.Action != nil:
			html += `<a class="action" href="` + templ.EscapeString(string(templ.URL(s.Action.URL))) + `">` +
				templ.EscapeString(s.Action.Label) + `</a>`
		}
		if s.ContactAdmin != "" {
			html += `<p class="contact-admin">` + templ.EscapeString(s.ContactAdmin) + `</p>`
		}
		html += postButton(s.SignOut) + `</main>`

		_, err := io.WriteString(w, html)
		return err
	})
	return page(lang, s.Title, body)
}
