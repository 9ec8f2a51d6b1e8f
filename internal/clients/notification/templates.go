package notification

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

type TemplateKind string

const (
	TemplateTaskUnlocked      TemplateKind = "task_unlocked"
	TemplateTaskDelayed       TemplateKind = "task_delayed"
	TemplateOverdueReminder   TemplateKind = "task_overdue_reminder"
	TemplateExtensionApproved TemplateKind = "extension_approved"
	TemplateExtensionRejected TemplateKind = "extension_rejected"
)

// TemplateData is the union of fields referenced by the email templates.
type TemplateData struct {
	StudentName       string
	TaskTitle         string
	WeekNo            int
	Deadline          string
	Days              int
	ReminderEveryDays int
}

//go:embed templates.yaml
var templatesYAML []byte

type rawTemplate struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

type compiled struct {
	subject *template.Template
	body    *template.Template
}

// Templates renders the engine's notification emails.
type Templates struct {
	byKind map[TemplateKind]compiled
}

func LoadTemplates() (*Templates, error) {
	return parseTemplates(templatesYAML)
}

func parseTemplates(raw []byte) (*Templates, error) {
	var doc map[string]rawTemplate
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	t := &Templates{byKind: make(map[TemplateKind]compiled, len(doc))}
	for name, rt := range doc {
		subj, err := template.New(name + ".subject").Option("missingkey=error").Parse(rt.Subject)
		if err != nil {
			return nil, fmt.Errorf("template %s subject: %w", name, err)
		}
		body, err := template.New(name + ".body").Option("missingkey=error").Parse(rt.Body)
		if err != nil {
			return nil, fmt.Errorf("template %s body: %w", name, err)
		}
		t.byKind[TemplateKind(name)] = compiled{subject: subj, body: body}
	}
	return t, nil
}

func (t *Templates) Render(kind TemplateKind, data TemplateData) (subject, body string, err error) {
	c, ok := t.byKind[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", kind)
	}
	if strings.TrimSpace(data.StudentName) == "" {
		data.StudentName = "Student"
	}
	var sb, bb bytes.Buffer
	if err := c.subject.Execute(&sb, data); err != nil {
		return "", "", err
	}
	if err := c.body.Execute(&bb, data); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(sb.String()), strings.TrimSpace(bb.String()), nil
}
