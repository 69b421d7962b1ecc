package bounce

import (
	"github.com/emurenMRz/bounceview/internal/detect"
	"github.com/emurenMRz/bounceview/status"
)

// EmailType is the class a message was sorted into.
type EmailType string

const (
	Bounce       EmailType = "bounce"
	Fbl          EmailType = "fbl"
	AutoResponse EmailType = "autoresponse"
)

// DiagnosticCode is the first SMTP reply found on a Diagnostic-Code line.
type DiagnosticCode struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

// FeedbackReport holds the complaint fields of a feedback loop message.
type FeedbackReport = detect.FeedbackReport

// Result describes the outcome for one recipient of a message.
type Result struct {
	EmailType      EmailType       `json:"emailType"`
	Action         status.Action   `json:"action"`
	DeliveryStatus string          `json:"deliveryStatus"`
	Recipient      string          `json:"recipient"`
	Reason         status.Reason   `json:"reason"`
	MessageID      string          `json:"messageId"`
	Subject        string          `json:"subject"`
	DiagnosticCode *DiagnosticCode `json:"diagnosticCode,omitempty"`
	FeedbackReport *FeedbackReport `json:"feedbackReport,omitempty"`
	AutoResponse   string          `json:"autoResponse,omitempty"`
}

// Suppressible reports whether future mail to the recipient should stop:
// a permanent bounce or an abuse complaint.
func (r Result) Suppressible() bool {
	if r.Recipient == "" {
		return false
	}
	return r.EmailType == Fbl || (r.EmailType == Bounce && r.Action == status.Failed)
}

// Messages returns the descriptive text for the delivery status, or "".
func (r Result) Messages() string {
	return status.Messages(r.DeliveryStatus)
}
