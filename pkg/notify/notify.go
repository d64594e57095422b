// Package notify delivers transactional email to principals.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"
)

// ErrNotConfigured is returned by the no-op notifier.
var ErrNotConfigured = errors.New("notify: email delivery is not configured")

// Template names a message layout.
type Template string

const (
	TemplateCompanyOTP     Template = "company_otp"
	TemplateCompanyCreated Template = "company_created"
)

// Notifier sends one templated message.
type Notifier interface {
	Send(ctx context.Context, address string, tpl Template, data map[string]string) error
}

type layout struct {
	subject *template.Template
	body    *template.Template
}

var layouts = map[Template]layout{
	TemplateCompanyOTP: mustLayout(
		"Votre code de première connexion",
		`Bonjour {{.company_name}},

Votre code de vérification est : {{.otp}}
Mot de passe temporaire : {{.temp_password}}

Ce code expire dans {{.ttl_minutes}} minutes.
`),
	TemplateCompanyCreated: mustLayout(
		"Bienvenue sur le portail ASSA",
		`Bonjour {{.representative_name}},

Le compte de {{.company_name}} est prêt. Demandez votre code de première connexion depuis la page de connexion.
`),
}

func mustLayout(subject, body string) layout {
	return layout{
		subject: template.Must(template.New("subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New("body").Option("missingkey=zero").Parse(body)),
	}
}

// Render produces the subject and body for tpl.
func Render(tpl Template, data map[string]string) (string, string, error) {
	l, ok := layouts[tpl]
	if !ok {
		return "", "", fmt.Errorf("notify: unknown template %q", tpl)
	}
	var subject, body bytes.Buffer
	if err := l.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	if err := l.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return subject.String(), body.String(), nil
}

// NoopNotifier reports every send as undeliverable.
type NoopNotifier struct{}

// Send always returns ErrNotConfigured.
func (NoopNotifier) Send(context.Context, string, Template, map[string]string) error {
	return ErrNotConfigured
}
