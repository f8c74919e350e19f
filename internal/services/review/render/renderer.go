// Package render produces localized applicant email content.
package render

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/ftcplatform/platform/internal/platform/i18n/catalog"
	"github.com/ftcplatform/platform/internal/services/review/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	defaultApplicantName = "applicant"
	defaultEventName     = "our event"
	defaultTeamName      = "organizing"
)

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// PrinterFactory returns the Localizer for one locale.
type PrinterFactory func(locale string) Localizer

// Renderer renders missing-information emails from catalog copy.
type Renderer struct {
	printer PrinterFactory
}

// New returns a Renderer backed by the embedded message catalog.
func New() *Renderer {
	bundle := catalog.Default()
	tags := make([]language.Tag, 0, len(bundle.Locales()))
	for _, locale := range bundle.Locales() {
		tags = append(tags, language.MustParse(locale))
	}
	matcher := language.NewMatcher(tags)
	return &Renderer{printer: func(locale string) Localizer {
		return message.NewPrinter(matchTag(matcher, tags, locale))
	}}
}

// NewWithPrinter returns a Renderer using the supplied localizer factory.
func NewWithPrinter(printer PrinterFactory) *Renderer {
	return &Renderer{printer: printer}
}

func matchTag(matcher language.Matcher, tags []language.Tag, locale string) language.Tag {
	requested, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		requested = language.MustParse(catalog.BaseLocale)
	}
	_, index, _ := matcher.Match(requested)
	if index < 0 || index >= len(tags) {
		return language.MustParse(catalog.BaseLocale)
	}
	return tags[index]
}

type missingInfoView struct {
	Greeting  string
	Intro     string
	Fields    []domain.MissingField
	CTA       string
	Closing   string
	Signature string
}

var missingInfoHTML = htmltemplate.Must(htmltemplate.New("missing_info.html").Parse(`<!DOCTYPE html>
<html>
<body>
<p>{{.Greeting}}</p>
<p>{{.Intro}}</p>
<ul>
{{- range .Fields}}
<li>{{.Prompt}}</li>
{{- end}}
</ul>
<p>{{.CTA}}</p>
<p>{{.Closing}}<br>{{.Signature}}</p>
</body>
</html>
`))

var missingInfoText = texttemplate.Must(texttemplate.New("missing_info.txt").Parse(`{{.Greeting}}

{{.Intro}}
{{range .Fields}}
- {{.Prompt}}
{{- end}}

{{.CTA}}

{{.Closing}}
{{.Signature}}
`))

// RenderMissingInfo renders the subject plus HTML and text bodies listing the
// missing questions.
func (r *Renderer) RenderMissingInfo(content domain.MissingInfoContent) (domain.RenderedEmail, error) {
	var loc Localizer
	if r != nil && r.printer != nil {
		loc = r.printer(content.Locale)
	}

	applicant := strings.TrimSpace(content.ApplicantName)
	if applicant == "" {
		applicant = localizeWithFallback(loc, "core.applicant.fallback_name", defaultApplicantName)
	}
	event := strings.TrimSpace(content.EventName)
	if event == "" {
		event = localizeWithFallback(loc, "core.event.fallback_name", defaultEventName)
	}
	team := strings.TrimSpace(content.EventName)
	if team == "" {
		team = localizeWithFallback(loc, "core.team.fallback_name", defaultTeamName)
	}

	fields := make([]domain.MissingField, 0, len(content.MissingFields))
	for _, field := range content.MissingFields {
		if strings.TrimSpace(field.Prompt) == "" {
			field.Prompt = field.Key
		}
		fields = append(fields, field)
	}

	view := missingInfoView{
		Greeting:  localize(loc, "email.missing_info.greeting", applicant),
		Intro:     localize(loc, "email.missing_info.intro", event),
		Fields:    fields,
		CTA:       localize(loc, "email.missing_info.cta"),
		Closing:   localize(loc, "email.missing_info.closing"),
		Signature: localize(loc, "email.missing_info.signature", team),
	}

	var html bytes.Buffer
	if err := missingInfoHTML.Execute(&html, view); err != nil {
		return domain.RenderedEmail{}, fmt.Errorf("render html: %w", err)
	}
	var text bytes.Buffer
	if err := missingInfoText.Execute(&text, view); err != nil {
		return domain.RenderedEmail{}, fmt.Errorf("render text: %w", err)
	}
	return domain.RenderedEmail{
		Subject: localize(loc, "email.missing_info.subject", event),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}

func localizeWithFallback(loc Localizer, key string, fallback string) string {
	value := strings.TrimSpace(localize(loc, key))
	if value == "" || value == key {
		return fallback
	}
	return value
}

var _ domain.EmailRenderer = (*Renderer)(nil)
