package notification

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// LogSender satisfies every sender interface by writing the message to a
// zerolog logger. It stands in for real providers when none are configured.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "notification").Logger()}
}

func (s *LogSender) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info().Str("channel", string(ChannelEmail)).Str("to", to).Str("subject", subject).Msg(body)
	return nil
}

func (s *LogSender) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info().Str("channel", string(ChannelSMS)).Str("to", to).Msg(body)
	return nil
}

func (s *LogSender) SendPush(ctx context.Context, to, title, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info().Str("channel", string(ChannelPush)).Str("to", to).Str("title", title).Msg(body)
	return nil
}

// ---------------------------------------------------------------------------
// Mock Senders
// ---------------------------------------------------------------------------

// MockEmailSender records every email sent through it.
type MockEmailSender struct {
	mu    sync.Mutex
	calls []MockEmailCall
	Err   error
}

type MockEmailCall struct {
	To      string
	Subject string
	Body    string
}

func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockEmailCall{To: to, Subject: subject, Body: body})
	return m.Err
}

// Calls returns a copy of all recorded email calls.
func (m *MockEmailSender) Calls() []MockEmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockEmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockSMSSender records every SMS sent through it.
type MockSMSSender struct {
	mu    sync.Mutex
	calls []MockSMSCall
	Err   error
}

type MockSMSCall struct {
	To   string
	Body string
}

func (m *MockSMSSender) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockSMSCall{To: to, Body: body})
	return m.Err
}

func (m *MockSMSSender) Calls() []MockSMSCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockSMSCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockPushSender records every push notification sent through it.
type MockPushSender struct {
	mu    sync.Mutex
	calls []MockPushCall
	Err   error
}

type MockPushCall struct {
	To    string
	Title string
	Body  string
}

func (m *MockPushSender) SendPush(_ context.Context, to, title, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockPushCall{To: to, Title: title, Body: body})
	return m.Err
}

func (m *MockPushSender) Calls() []MockPushCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockPushCall, len(m.calls))
	copy(out, m.calls)
	return out
}
