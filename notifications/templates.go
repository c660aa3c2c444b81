package notifications

import (
	"fmt"
	"html"

	"github.com/anjiri1684/educonnect/models"
)

func payloadString(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	return html.EscapeString(fmt.Sprint(v))
}

// render builds the e-mail for a notification. Kinds without an e-mail return ok=false.
func render(kind models.NotificationKind, payload map[string]any) (subject, body string, ok bool) {
	course := payloadString(payload, "course_title")

	switch kind {
	case models.KindEnrollmentRequest:
		return "New enrollment request",
			fmt.Sprintf("<h1>New enrollment request</h1><p>%s asked to join <b>%s</b>.</p>",
				payloadString(payload, "student_name"), course), true
	case models.KindRequestAccepted:
		return "Your enrollment request was accepted",
			fmt.Sprintf("<h1>Welcome aboard!</h1><p>You are now enrolled in <b>%s</b>.</p>", course), true
	case models.KindRequestRejected:
		return "Your enrollment request was declined",
			fmt.Sprintf("<p>Your request to join <b>%s</b> was declined.</p>", course), true
	case models.KindEnrollmentConfirmed:
		return "Enrollment confirmed",
			fmt.Sprintf("<h1>Payment received</h1><p>You are enrolled in <b>%s</b>. Amount paid: %s.</p>",
				course, payloadString(payload, "amount")), true
	case models.KindPaymentReceived:
		return "You received a payment",
			fmt.Sprintf("<h1>New student</h1><p>%s enrolled in <b>%s</b>. Your share: %s.</p>",
				payloadString(payload, "student_name"), course, payloadString(payload, "amount")), true
	case models.KindStudentRemoved:
		return "You were removed from a course",
			fmt.Sprintf("<p>You are no longer enrolled in <b>%s</b>.</p>", course), true
	case models.KindCourseCancelled:
		return "Course cancelled",
			fmt.Sprintf("<p>The course <b>%s</b> has been cancelled and its sessions removed.</p>", course), true
	case models.KindSessionReminder:
		return "Reminder: your session starts soon",
			fmt.Sprintf("<h1>Session reminder</h1><p><b>%s</b> starts at %s on %s.</p>",
				payloadString(payload, "title"), payloadString(payload, "start_time"), payloadString(payload, "date")), true
	default:
		return "", "", false
	}
}
