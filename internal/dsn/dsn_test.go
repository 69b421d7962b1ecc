package dsn

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(lines ...string) string {
	return strings.Join(lines, "\r\n")
}

func TestParse(t *testing.T) {
	r := Parse(report(
		"",
		"Content-Type: message/delivery-status",
		"",
		"Reporting-MTA: dns; mx.example.com",
		"X-Postfix-Sender: rfc822; sender@example.org",
		"Arrival-Date: Mon, 1 Jan 2024 10:00:00 +0000",
		"",
		"Final-Recipient: rfc822; <user@example.com>",
		"Original-Recipient: rfc822;alias@example.com",
		"Action: failed",
		"Status: 5.1.1",
		"Remote-MTA: dns; mail.example.com",
		"Diagnostic-Code: smtp; 550 5.1.1 user unknown",
		"",
		"Final-Recipient: other@example.com",
		"Action: delayed",
		"Status: 4.4.7",
		"",
		"--",
	))

	assert.Equal(t, "message/delivery-status", r.MIMEHeader.Text("Content-type"))
	assert.Equal(t, TypedField{"dns", "mx.example.com"}, r.PerMessageFields["Reporting-mta"])
	assert.Equal(t, TypedField{"rfc822", "sender@example.org"}, r.PerMessageFields["X-postfix-sender"])
	assert.NotContains(t, r.PerMessageFields, "Received-from-mta")
	assert.Equal(t, "Mon, 1 Jan 2024 10:00:00 +0000", r.PerMessage.Text("Arrival-date"))

	require.Len(t, r.Recipients, 2)

	first := r.Recipients[0]
	assert.Equal(t, &TypedField{"rfc822", "user@example.com"}, first.FinalRecipient)
	assert.Equal(t, &TypedField{"rfc822", "alias@example.com"}, first.OriginalRecipient)
	assert.Equal(t, &TypedField{"dns", "mail.example.com"}, first.RemoteMTA)
	assert.Equal(t, &TypedField{"smtp", "550 5.1.1 user unknown"}, first.DiagnosticCode)
	assert.Equal(t, "failed", first.Action)
	assert.Equal(t, "5.1.1", first.Status)
	assert.Equal(t, "alias@example.com", first.Address())

	second := r.Recipients[1]
	assert.Equal(t, &TypedField{"unknown", "other@example.com"}, second.FinalRecipient)
	assert.Nil(t, second.OriginalRecipient)
	assert.Equal(t, "other@example.com", second.Address())
	assert.Equal(t, "4.4.7", second.Status)
}

func TestParseRecipientInSecondBlock(t *testing.T) {
	r := Parse(report(
		"Content-Type: message/delivery-status",
		"",
		"Final-Recipient: rfc822;user@example.com",
		"Action: failed",
		"Status: 5.2.2",
	))

	assert.Equal(t, 0, r.PerMessage.Len())
	require.Len(t, r.Recipients, 1)
	assert.Equal(t, "user@example.com", r.Recipients[0].Address())
	assert.Equal(t, "5.2.2", r.Recipients[0].Status)
}

func TestTransientDiagnosticOverridesFailedAction(t *testing.T) {
	r := Parse(report(
		"Content-Type: message/delivery-status",
		"",
		"Reporting-MTA: dns; mx.example.com",
		"",
		"Final-Recipient: rfc822;user@example.com",
		"Action: Failed",
		"Status: 5.0.0",
		"Diagnostic-Code: smtp; 451 4.7.1 greylisted, try again",
	))

	require.Len(t, r.Recipients, 1)
	assert.Equal(t, "transient", r.Recipients[0].Action)
	assert.Equal(t, "4.3.0", r.Recipients[0].Status)
}

func TestPermanentDiagnosticKeepsAction(t *testing.T) {
	r := Parse(report(
		"Content-Type: message/delivery-status",
		"",
		"Reporting-MTA: dns; mx.example.com",
		"",
		"Final-Recipient: rfc822;user@example.com",
		"Action: failed",
		"Status: 5.1.1",
		"Diagnostic-Code: smtp; 550 5.1.1 no such user",
	))

	require.Len(t, r.Recipients, 1)
	assert.Equal(t, "failed", r.Recipients[0].Action)
	assert.Equal(t, "5.1.1", r.Recipients[0].Status)
}

func TestParseEmpty(t *testing.T) {
	r := Parse("")
	assert.Empty(t, r.Recipients)
	assert.Empty(t, r.PerMessageFields)
}
