package enrollment

import (
	"fmt"
	"strings"

	"github.com/anjiri1684/educonnect/payments"
	"github.com/pkg/errors"
)

var (
	ErrDuplicatePendingRequest = errors.New("an enrollment request for this course is already pending")
	ErrRequestNotPending       = errors.New("enrollment request is not pending")
	ErrRequestNotFound         = errors.New("enrollment request not found")
	ErrStudentNotFound         = errors.New("student not found")
	ErrPayoutNotConfigured     = errors.New("the instructor has not configured payouts for this course yet")
	ErrPaidCourse              = errors.New("paid courses are joined through checkout")
	ErrFreeCourse              = errors.New("this course is free; send an enrollment request instead")
	ErrOwnCourse               = errors.New("instructors cannot enroll in their own course")
	ErrAlreadyEnrolled         = errors.New("student is already enrolled in this course")
	ErrNotEnrolled             = errors.New("student is not enrolled in this course")
	ErrPaymentUnavailable      = errors.New("payment could not be processed, try again later")
	ErrEnrollmentIncomplete    = errors.New("payment succeeded but enrollment is incomplete")
	ErrCascadeIncomplete       = errors.New("course deletion stopped before every related record was removed")
	ErrRemovalIncomplete       = errors.New("student was removed but some of their sessions remain")
)

// DeclineError is a card decline reported by the payment provider. Nothing was charged.
type DeclineError struct {
	Reason payments.DeclineReason
}

func (e *DeclineError) Error() string {
	return e.Reason.Message()
}

// PartialFailure means some authoritative state was changed before a later step failed.
// Mutated lists what already happened, in order, so the caller can report it accurately.
type PartialFailure struct {
	Op      string
	Mutated []string
	Err     error
}

func (e *PartialFailure) Error() string {
	if len(e.Mutated) == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v (already done: %s)", e.Op, e.Err, strings.Join(e.Mutated, ", "))
}

func (e *PartialFailure) Unwrap() error {
	return e.Err
}
