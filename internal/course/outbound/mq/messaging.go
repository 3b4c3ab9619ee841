package mq

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/shandysiswandi/coursebite/internal/course/usecase"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/messaging"
	"github.com/shandysiswandi/coursebite/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishEnrollmentCreated(ctx context.Context, msg usecase.EnrollmentCreatedEvent) (err error) {
	ctx, span := m.ins.Tracer("course.outbound.mq").Start(ctx, "PublishEnrollmentCreated")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body, err := json.Marshal(event.EnrollmentCreatedMessage{
		EnrollmentID: msg.EnrollmentID,
		EditionID:    msg.EditionID,
		UserID:       msg.UserID,
		PhoneNumber:  msg.PhoneNumber,
		CourseTitle:  msg.CourseTitle,
		EditionTitle: msg.EditionTitle,
	})
	if err != nil {
		return err
	}

	// keyed by edition so one edition's enrollments stay ordered on a partition
	_, err = m.client.Publish(ctx, event.EnrollmentCreatedDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(strconv.FormatInt(msg.EditionID, 10)),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(instrument.GetCorrelationID(ctx))}},
	})
	return err
}
