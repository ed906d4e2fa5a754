// Package notification delivers agent actions over push, SMS and email with
// template rendering, an in-memory delivery history, retry and Echo handlers.
// Provider integrations sit behind the sender interfaces.
package notification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vijay-veer/swasthya-sarthi/internal/platform/metrics"
)

// ---------------------------------------------------------------------------
// Notification Types
// ---------------------------------------------------------------------------

// Channel is the medium used to deliver a notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// Delivery statuses.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

var (
	ErrNotFound     = errors.New("notification not found")
	ErrNotRetryable = errors.New("notification is not in failed status")
)

// Notification is a single outbound message on one channel.
type Notification struct {
	ID           string            `json:"id"`
	Channel      Channel           `json:"channel"`
	Recipient    string            `json:"recipient"`
	Subject      string            `json:"subject,omitempty"`
	Body         string            `json:"body"`
	TemplateID   string            `json:"template_id,omitempty"`
	TemplateData map[string]string `json:"template_data,omitempty"`
	Priority     string            `json:"priority"`
	Status       string            `json:"status"`
	Attempts     int               `json:"attempts"`
	CreatedAt    time.Time         `json:"created_at"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	Error        string            `json:"error,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// ---------------------------------------------------------------------------
// Sender Interfaces
// ---------------------------------------------------------------------------

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// PushSender delivers in-app notifications. to is the user ID.
type PushSender interface {
	SendPush(ctx context.Context, to, title, body string) error
}

// ---------------------------------------------------------------------------
// Template Engine
// ---------------------------------------------------------------------------

// Template IDs used by the Dispatcher.
const (
	TemplateNudge            = "crrs-nudge"
	TemplateLifestyle        = "crrs-lifestyle"
	TemplateAdherence        = "crrs-adherence"
	TemplateAlert            = "crrs-alert"
	TemplateCriticalAlert    = "crrs-critical-alert"
	TemplateEmergencyContact = "crrs-emergency-contact"
)

// Template defines a reusable notification template.
type Template struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Subject string  `json:"subject"`
	Body    string  `json:"body"`
	Channel Channel `json:"channel"`
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      TemplateNudge,
			Name:    "Daily Nudge",
			Subject: "Your health tip for {{date}}",
			Body:    "Hi {{patient_name}}, {{message}}",
			Channel: ChannelPush,
		},
		{
			ID:      TemplateLifestyle,
			Name:    "Lifestyle Check-in",
			Subject: "A quick lifestyle check-in",
			Body:    "Hi {{patient_name}}, {{message}}",
			Channel: ChannelPush,
		},
		{
			ID:      TemplateAdherence,
			Name:    "Medication Reminder",
			Subject: "Medication reminder",
			Body:    "Hi {{patient_name}}, {{message}}",
			Channel: ChannelPush,
		},
		{
			ID:      TemplateAlert,
			Name:    "Health Alert",
			Subject: "Health alert for {{date}}",
			Body:    "{{patient_name}}, {{message}} Please recheck and log your reading.",
			Channel: ChannelSMS,
		},
		{
			ID:      TemplateCriticalAlert,
			Name:    "Critical Health Alert",
			Subject: "URGENT: critical health alert for {{patient_name}}",
			Body:    "URGENT {{patient_name}}: {{message}} Seek medical attention now.",
			Channel: ChannelSMS,
		},
		{
			ID:      TemplateEmergencyContact,
			Name:    "Emergency Contact Alert",
			Subject: "URGENT: {{patient_name}} needs attention",
			Body:    "Hi {{contact_name}}, {{patient_name}} ({{patient_phone}}) has a critical health alert: {{message}}",
			Channel: ChannelSMS,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Lookup returns a copy of the template registered under id.
func (e *TemplateEngine) Lookup(id string) (Template, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.templates[id]
	if !ok {
		return Template{}, false
	}
	return *t, true
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are left
// as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	t, ok := e.Lookup(templateID)
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// ---------------------------------------------------------------------------
// Notification Manager
// ---------------------------------------------------------------------------

// Manager sends notifications and keeps their delivery history.
type Manager struct {
	email         EmailSender
	sms           SMSSender
	push          PushSender
	templates     *TemplateEngine
	mu            sync.RWMutex
	notifications map[string]*Notification
	now           func() time.Time
}

func NewManager(email EmailSender, sms SMSSender, push PushSender, tpl *TemplateEngine) *Manager {
	return &Manager{
		email:         email,
		sms:           sms,
		push:          push,
		templates:     tpl,
		notifications: make(map[string]*Notification),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Send dispatches n on its channel, assigns an ID and timestamps, and stores
// the result whether or not delivery succeeded.
func (m *Manager) Send(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = m.now()
	n.Status = StatusPending

	err := m.deliver(ctx, n)

	m.mu.Lock()
	m.notifications[n.ID] = n
	m.mu.Unlock()
	return err
}

func (m *Manager) deliver(ctx context.Context, n *Notification) error {
	var err error
	switch n.Channel {
	case ChannelEmail:
		err = m.email.SendEmail(ctx, n.Recipient, n.Subject, n.Body)
	case ChannelSMS:
		err = m.sms.SendSMS(ctx, n.Recipient, n.Body)
	case ChannelPush:
		err = m.push.SendPush(ctx, n.Recipient, n.Subject, n.Body)
	default:
		err = fmt.Errorf("unsupported notification channel: %s", n.Channel)
	}

	m.mu.Lock()
	n.Attempts++
	if err != nil {
		n.Status = StatusFailed
		n.Error = err.Error()
	} else {
		n.Status = StatusSent
		sentAt := m.now()
		n.SentAt = &sentAt
		n.Error = ""
	}
	m.mu.Unlock()

	metrics.NotificationsSent.WithLabelValues(string(n.Channel), n.Status).Inc()
	if err != nil {
		return fmt.Errorf("%s to %s: %w", n.Channel, n.Recipient, err)
	}
	return nil
}

// SendFromTemplate renders a template and sends it on the template's channel.
// The returned notification is stored even when delivery fails.
func (m *Manager) SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient, priority string) (*Notification, error) {
	tpl, ok := m.templates.Lookup(templateID)
	if !ok {
		return nil, fmt.Errorf("render template: template %q not found", templateID)
	}
	return m.SendFromTemplateOn(ctx, tpl.Channel, templateID, data, recipient, priority)
}

// SendFromTemplateOn is SendFromTemplate with an explicit channel.
func (m *Manager) SendFromTemplateOn(ctx context.Context, ch Channel, templateID string, data map[string]string, recipient, priority string) (*Notification, error) {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	n := &Notification{
		Channel:      ch,
		Recipient:    recipient,
		Subject:      subject,
		Body:         body,
		TemplateID:   templateID,
		TemplateData: data,
		Priority:     priority,
	}
	return n, m.Send(ctx, n)
}

func (m *Manager) Get(_ context.Context, id string) (*Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	cp := *n
	return &cp, nil
}

// ListByRecipient returns up to limit notifications for recipient, newest first.
func (m *Manager) ListByRecipient(_ context.Context, recipient string, limit int) []*Notification {
	m.mu.RLock()
	var result []*Notification
	for _, n := range m.notifications {
		if n.Recipient == recipient {
			cp := *n
			result = append(result, &cp)
		}
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Retry re-sends a failed notification.
func (m *Manager) Retry(ctx context.Context, id string) error {
	m.mu.Lock()
	n, ok := m.notifications[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if n.Status != StatusFailed {
		status := n.Status
		m.mu.Unlock()
		return fmt.Errorf("%w: %q is %s", ErrNotRetryable, id, status)
	}
	// Pending until delivered, so a concurrent retry is refused.
	n.Status = StatusPending
	m.mu.Unlock()
	return m.deliver(ctx, n)
}

// Stats returns counts of notifications grouped by status.
func (m *Manager) Stats(_ context.Context) map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]int)
	for _, n := range m.notifications {
		stats[n.Status]++
	}
	return stats
}
