package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

const dateLayout = "02/01/2006 15:04"

type registration struct {
	Email string `json:"email"`
}

// Notifier consumes relayed events and mails the patient.
type Notifier struct {
	broker  messaging.Broker
	channel string
	sender  email.Sender
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewNotifier(broker messaging.Broker, channel string, sender email.Sender, logger *zap.Logger, metrics *metrics.Metrics) *Notifier {
	return &Notifier{
		broker:  broker,
		channel: channel,
		sender:  sender,
		logger:  logger,
		metrics: metrics,
	}
}

// Run blocks until ctx is done or the subscription closes.
func (n *Notifier) Run(ctx context.Context) error {
	messages, err := n.broker.Subscribe(ctx, n.channel)
	if err != nil {
		return err
	}
	n.logger.Info("notifier subscribed", zap.String("channel", n.channel))

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-messages:
			if !ok {
				return nil
			}
			n.Handle(ctx, raw)
		}
	}
}

// Handle processes one envelope. Failures are logged and counted; relayed
// events are not redelivered.
func (n *Notifier) Handle(ctx context.Context, raw []byte) {
	var env messaging.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		n.logger.Warn("discarding malformed envelope", zap.Error(err))
		return
	}

	msg, ok, err := compose(env)
	if err != nil {
		n.logger.Warn("discarding event with bad payload",
			zap.String("event_id", env.ID), zap.String("event_type", env.Type), zap.Error(err))
		n.metrics.NotificationsSent.WithLabelValues(env.Type, "invalid").Inc()
		return
	}
	if !ok {
		return
	}

	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Error("failed to send notification",
			zap.String("event_id", env.ID), zap.String("event_type", env.Type), zap.Error(err))
		n.metrics.NotificationsSent.WithLabelValues(env.Type, "error").Inc()
		return
	}
	n.metrics.NotificationsSent.WithLabelValues(env.Type, "sent").Inc()
}

// compose builds the mail for an event. ok is false for events that do not
// notify anyone.
func compose(env messaging.Envelope) (msg email.Message, ok bool, err error) {
	switch env.Type {
	case model.EventAppointmentBooked, model.EventAppointmentCancelled:
		var notice model.AppointmentNotice
		if err := json.Unmarshal(env.Payload, &notice); err != nil {
			return msg, false, err
		}
		if notice.PatientEmail == "" {
			return msg, false, nil
		}

		when := notice.ScheduledAt.Local().Format(dateLayout)
		msg.To = notice.PatientEmail
		if env.Type == model.EventAppointmentBooked {
			msg.Subject = "Cita reservada"
			msg.Body = fmt.Sprintf("Hola %s,\n\nTu cita N° %d para el %s fue registrada. Estado: %s.\n",
				notice.PatientName, notice.AppointmentID, when, notice.Status)
		} else {
			msg.Subject = "Cita cancelada"
			msg.Body = fmt.Sprintf("Hola %s,\n\nTu cita N° %d del %s fue cancelada.\n",
				notice.PatientName, notice.AppointmentID, when)
		}
		return msg, true, nil

	case model.EventPatientRegistered:
		var reg registration
		if err := json.Unmarshal(env.Payload, &reg); err != nil {
			return msg, false, err
		}
		if reg.Email == "" {
			return msg, false, nil
		}
		msg.To = reg.Email
		msg.Subject = "Bienvenido a la clínica"
		msg.Body = "Tu cuenta de paciente fue creada. Ya puedes reservar citas en línea.\n"
		return msg, true, nil
	}
	return msg, false, nil
}
