package enrollment

import (
	"context"

	"github.com/anjiri1684/educonnect/courses"
	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/metrics"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/payments"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// PurchaseAndEnroll charges the student for a paid course and enrolls them. Validation,
// precondition and decline failures leave no trace. Once the card is charged the enrollment
// is driven to completion; a failure after that point is returned as a *PartialFailure.
func (c *Coordinator) PurchaseAndEnroll(ctx context.Context, courseID, studentID uuid.UUID, details PaymentDetails) (*Result, error) {
	if err := validateCard(c.validate, details); err != nil {
		return nil, err
	}

	course, err := c.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	switch {
	case !course.IsPaid || course.FinalPrice <= 0:
		return nil, ErrFreeCourse
	case course.InstructorID == studentID:
		return nil, ErrOwnCourse
	case course.IsEnrolled(studentID):
		return nil, ErrAlreadyEnrolled
	}

	student, err := c.loadUser(ctx, studentID)
	if err != nil {
		return nil, err
	}
	payee, err := c.payoutAccount(ctx, course.InstructorID)
	if err != nil {
		return nil, err
	}

	intentCtx := payments.WithIdempotencyKey(ctx, payments.IntentKey(course.ID, studentID, uuid.NewString()))
	intent, err := c.provider.CreatePaymentIntent(intentCtx, course.FinalPrice, map[string]string{
		"course_id":     course.ID.String(),
		"student_id":    studentID.String(),
		"instructor_id": course.InstructorID.String(),
	})
	if err != nil {
		c.log.Error("🔥 failed to create payment intent", zap.String("course_id", course.ID.String()), zap.Error(err))
		return nil, ErrPaymentUnavailable
	}

	auth, err := c.provider.AuthorizeCard(ctx, payments.Fingerprint(c.fingerprintKey, details.CardNumber))
	if err != nil {
		c.log.Error("🔥 card authorization failed", zap.String("payment_intent_id", intent.ID), zap.Error(err))
		return nil, ErrPaymentUnavailable
	}
	if !auth.Approved {
		metrics.PaymentDeclines.WithLabelValues(string(auth.DeclineReason)).Inc()
		c.log.Info("card declined",
			zap.String("course_id", course.ID.String()),
			zap.String("student_id", studentID.String()),
			zap.String("reason", string(auth.DeclineReason)))
		return nil, &DeclineError{Reason: auth.DeclineReason}
	}

	now := c.now()
	res := &Result{}
	mutated := []string{"card charged"}

	payment := &models.Payment{
		CourseID:         course.ID,
		StudentID:        studentID,
		InstructorID:     course.InstructorID,
		TotalAmount:      course.FinalPrice,
		BaseAmount:       course.BasePrice,
		PlatformFee:      courses.RoundMoney(course.FinalPrice - course.BasePrice),
		InstructorAmount: course.BasePrice,
		Currency:         c.currency,
		Status:           models.PaymentSucceeded,
		TransferStatus:   models.TransferPending,
		PayeeAccountRef:  payee,
		MaskedCard:       payments.MaskCard(details.CardNumber),
		PaymentIntentID:  intent.ID,
		CreatedAt:        now,
	}

	transferCtx := payments.WithIdempotencyKey(ctx, payments.TransferKey(intent.ID))
	transfer, err := c.provider.TransferToPayee(transferCtx, payment.InstructorAmount, payee)
	if err != nil {
		metrics.PayoutTransfers.WithLabelValues("pending").Inc()
		c.log.Warn("instructor payout failed, left pending",
			zap.String("course_id", course.ID.String()),
			zap.String("payment_intent_id", intent.ID),
			zap.Error(err))
		res.Warnings = append(res.Warnings, WarnPayoutPending)
	} else {
		metrics.PayoutTransfers.WithLabelValues("completed").Inc()
		payment.TransferStatus = models.TransferCompleted
		payment.TransferID = &transfer.ID
		mutated = append(mutated, "instructor paid")
	}

	if err := c.payments.Create(ctx, payment); err != nil {
		return nil, c.incomplete(mutated, errors.Wrap(err, "record payment"))
	}
	mutated = append(mutated, "payment recorded")
	res.Payment = payment

	enrolledCourse, added, err := c.enroll(ctx, course.ID, studentID)
	if err != nil {
		return nil, c.incomplete(mutated, err)
	}
	res.Course = enrolledCourse
	if added {
		c.enrollSessions(ctx, enrolledCourse, studentID, now, res)
	}

	metrics.Enrollments.WithLabelValues("checkout").Inc()

	received := coursePayload(course)
	received["amount"] = payment.InstructorAmount
	received["student_name"] = student.FullName
	c.notifier.Notify(ctx, studentID, course.InstructorID, models.KindPaymentReceived, received)

	confirmed := coursePayload(course)
	confirmed["amount"] = payment.TotalAmount
	c.notifier.Notify(ctx, course.InstructorID, studentID, models.KindEnrollmentConfirmed, confirmed)

	c.log.Info("paid enrollment completed",
		zap.String("course_id", course.ID.String()),
		zap.String("student_id", studentID.String()),
		zap.String("transfer_status", payment.TransferStatus))
	return res, nil
}

func (c *Coordinator) payoutAccount(ctx context.Context, instructorID uuid.UUID) (string, error) {
	instructor, err := c.users.Get(ctx, instructorID)
	if errors.Is(err, database.ErrNotFound) {
		return "", ErrPayoutNotConfigured
	}
	if err != nil {
		return "", errors.Wrap(err, "load instructor")
	}
	if instructor.PayoutAccountID == nil || *instructor.PayoutAccountID == "" {
		return "", ErrPayoutNotConfigured
	}
	return *instructor.PayoutAccountID, nil
}

func (c *Coordinator) incomplete(mutated []string, err error) error {
	c.log.Error("🔥 payment succeeded but enrollment incomplete", zap.Strings("done", mutated), zap.Error(err))
	return &PartialFailure{
		Op:      "purchase",
		Mutated: mutated,
		Err:     multierr.Append(ErrEnrollmentIncomplete, err),
	}
}
