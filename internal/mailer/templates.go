package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"
)

const layout = `<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; background-color: #f6f6f6; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 40px auto; background: #ffffff; border-radius: 8px;">
    <div style="padding: 30px 30px 0;"><h2 style="margin: 0;">{{template "title" .}}</h2></div>
    <div style="padding: 20px 30px 40px; line-height: 1.6;">{{template "body" .}}</div>
  </div>
</body>
</html>`

type mailTemplate struct {
	subject string
	body    string
}

var mailTemplates = map[Kind]mailTemplate{
	KindTicketAssigned: {
		subject: "New ticket assigned: {{.ticket_id}}",
		body: `{{define "title"}}New ticket assigned{{end}}{{define "body"}}
<p>Hello {{.name}},</p>
<p>Ticket <strong>{{.ticket_id}}</strong> ({{.priority}} priority) has been assigned to you.</p>
<p>{{.issue}}</p>
<p><a href="{{.base_url}}/tickets/{{.ticket_id}}">Open the ticket</a></p>{{end}}`,
	},
	KindLeaveRequested: {
		subject: "Your leave request was submitted",
		body: `{{define "title"}}Leave request submitted{{end}}{{define "body"}}
<p>Hello {{.name}},</p>
<p>Your request for {{.days}} day(s) of paid leave is waiting for {{.supervisor}} to review it.</p>{{end}}`,
	},
	KindLeaveApprovalNeeded: {
		subject: "Leave request from {{.requester}}",
		body: `{{define "title"}}Leave request awaiting approval{{end}}{{define "body"}}
<p>Hello {{.name}},</p>
<p>{{.requester}} asked for {{.days}} day(s) of paid leave.</p>
<p><a href="{{.base_url}}/requests/{{.request_id}}">Review the request</a></p>{{end}}`,
	},
	KindStatsUpdateRequested: {
		subject: "Your profile update request was submitted",
		body: `{{define "title"}}Profile update submitted{{end}}{{define "body"}}
<p>Hello {{.name}},</p>
<p>Your profile update is waiting for {{.supervisor}} to review it.</p>{{end}}`,
	},
	KindStatsApprovalNeeded: {
		subject: "Profile update request from {{.requester}}",
		body: `{{define "title"}}Profile update awaiting approval{{end}}{{define "body"}}
<p>Hello {{.name}},</p>
<p>{{.requester}} asked to update their profile.</p>
<p><a href="{{.base_url}}/requests/{{.request_id}}">Review the request</a></p>{{end}}`,
	},
	KindRequestResolved: {
		subject: "Your request was {{.status}}",
		body: `{{define "title"}}Request {{.status}}{{end}}{{define "body"}}
<p>Hello {{.name}},</p>
<p>Your {{.request_type}} request was {{.status}} by {{.resolver}}.</p>{{end}}`,
	},
}

// Renderer turns a Message into a subject line and an HTML body.
type Renderer struct {
	baseURL string
	bodies  map[Kind]*template.Template
	titles  map[Kind]*texttemplate.Template
}

// NewRenderer parses every template once.
func NewRenderer(baseURL string) (*Renderer, error) {
	r := &Renderer{
		baseURL: baseURL,
		bodies:  make(map[Kind]*template.Template, len(mailTemplates)),
		titles:  make(map[Kind]*texttemplate.Template, len(mailTemplates)),
	}
	for kind, tmpl := range mailTemplates {
		body, err := template.New(string(kind)).Option("missingkey=zero").Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("parse layout for %s: %w", kind, err)
		}
		if body, err = body.Parse(tmpl.body); err != nil {
			return nil, fmt.Errorf("parse body for %s: %w", kind, err)
		}
		subject, err := texttemplate.New(string(kind) + "_subject").Option("missingkey=zero").Parse(tmpl.subject)
		if err != nil {
			return nil, fmt.Errorf("parse subject for %s: %w", kind, err)
		}
		r.bodies[kind] = body
		r.titles[kind] = subject
	}
	return r, nil
}

// Render returns the subject and HTML body for msg.
func (r *Renderer) Render(msg Message) (string, string, error) {
	body, ok := r.bodies[msg.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown mail kind %q", msg.Kind)
	}
	data := make(map[string]string, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	data["base_url"] = r.baseURL

	var subject bytes.Buffer
	if err := r.titles[msg.Kind].Execute(&subject, data); err != nil {
		return "", "", err
	}
	var html bytes.Buffer
	if err := body.Execute(&html, data); err != nil {
		return "", "", err
	}
	return subject.String(), html.String(), nil
}
