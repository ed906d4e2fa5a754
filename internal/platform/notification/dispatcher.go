package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/agent"
	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
)

var errNoRecipient = errors.New("subject has no user")

var notifyTemplates = map[agent.Trigger]string{
	agent.TriggerNudge:     TemplateNudge,
	agent.TriggerLifestyle: TemplateLifestyle,
	agent.TriggerAdherence: TemplateAdherence,
}

// Dispatcher maps agent actions onto channels:
//
//	NOTIFY          push
//	ALERT           push, SMS
//	CRITICAL_ALERT  SMS, email, SMS to the emergency contact
//
// Every channel is attempted; the joined error reports the ones that failed.
type Dispatcher struct {
	manager *Manager
	logger  zerolog.Logger
}

var _ agent.Notifier = (*Dispatcher)(nil)

func NewDispatcher(manager *Manager, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{manager: manager, logger: logger}
}

func (d *Dispatcher) Notify(ctx context.Context, to *patient.Subject, a agent.Action) error {
	if to == nil || to.User == nil {
		return errNoRecipient
	}
	tpl, ok := notifyTemplates[a.Trigger]
	if !ok {
		tpl = TemplateNudge
	}
	_, err := d.manager.SendFromTemplateOn(ctx, ChannelPush, tpl, templateData(to, a), to.User.ID.String(), string(a.Priority))
	return err
}

func (d *Dispatcher) Alert(ctx context.Context, to *patient.Subject, a agent.Action) error {
	if to == nil || to.User == nil {
		return errNoRecipient
	}
	data := templateData(to, a)
	_, pushErr := d.manager.SendFromTemplateOn(ctx, ChannelPush, TemplateAlert, data, to.User.ID.String(), string(a.Priority))
	_, smsErr := d.manager.SendFromTemplateOn(ctx, ChannelSMS, TemplateAlert, data, to.User.PhoneNumber, string(a.Priority))
	return errors.Join(pushErr, smsErr)
}

func (d *Dispatcher) CriticalAlert(ctx context.Context, to *patient.Subject, a agent.Action) error {
	if to == nil || to.User == nil {
		return errNoRecipient
	}
	data := templateData(to, a)
	priority := string(a.Priority)

	var errs []error
	if _, err := d.manager.SendFromTemplateOn(ctx, ChannelSMS, TemplateCriticalAlert, data, to.User.PhoneNumber, priority); err != nil {
		errs = append(errs, err)
	}
	if to.User.Email != nil && *to.User.Email != "" {
		if _, err := d.manager.SendFromTemplateOn(ctx, ChannelEmail, TemplateCriticalAlert, data, *to.User.Email, priority); err != nil {
			errs = append(errs, err)
		}
	}

	if p := to.Profile; p != nil && p.EmergencyContactPhone != nil && *p.EmergencyContactPhone != "" {
		if _, err := d.manager.SendFromTemplateOn(ctx, ChannelSMS, TemplateEmergencyContact, data, *p.EmergencyContactPhone, priority); err != nil {
			errs = append(errs, fmt.Errorf("emergency contact: %w", err))
		}
	} else {
		d.logger.Warn().Str("user_id", to.User.ID.String()).Msg("critical alert without emergency contact")
	}
	return errors.Join(errs...)
}

func templateData(to *patient.Subject, a agent.Action) map[string]string {
	data := map[string]string{
		"patient_name":  to.User.DisplayName(),
		"patient_phone": to.User.PhoneNumber,
		"message":       a.Message,
		"date":          a.TargetDate.Format("2006-01-02"),
		"contact_name":  "there",
	}
	if p := to.Profile; p != nil && p.EmergencyContactName != nil && *p.EmergencyContactName != "" {
		data["contact_name"] = *p.EmergencyContactName
	}
	return data
}
