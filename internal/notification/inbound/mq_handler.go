package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/coursebite/internal/notification/usecase"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/messaging"
	"github.com/shandysiswandi/coursebite/internal/pkg/uid"
	"github.com/shandysiswandi/coursebite/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   ucConsumer
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID && len(headers[i].Value) > 0 {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// Malformed bodies are logged and acknowledged; redelivery cannot fix them.
func (h *MQHandler) UserSignedUpNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "UserSignedUpNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: user signed up notification", "msg_body", string(body))

	var payload event.UserSignedUpMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of user signed up notification", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeUserSignedUp(ctx, usecase.ConsumeUserSignedUpInput{
		UserID:      payload.UserID,
		PhoneNumber: payload.PhoneNumber,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume user signed up", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) EnrollmentCreatedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "EnrollmentCreatedNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: enrollment created notification", "msg_body", string(body))

	var payload event.EnrollmentCreatedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of enrollment created notification", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeEnrollmentCreated(ctx, usecase.ConsumeEnrollmentCreatedInput{
		EnrollmentID: payload.EnrollmentID,
		EditionID:    payload.EditionID,
		UserID:       payload.UserID,
		PhoneNumber:  payload.PhoneNumber,
		CourseTitle:  payload.CourseTitle,
		EditionTitle: payload.EditionTitle,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume enrollment created", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
