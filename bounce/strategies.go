package bounce

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/emurenMRz/bounceview/internal/address"
	"github.com/emurenMRz/bounceview/internal/detect"
	"github.com/emurenMRz/bounceview/internal/dsn"
	"github.com/emurenMRz/bounceview/internal/mailheader"
	"github.com/emurenMRz/bounceview/internal/mimepart"
	"github.com/emurenMRz/bounceview/status"
)

// Extraction strategies, in the order they are tried.
const (
	StrategyFbl               = "fbl"
	StrategyAutoResponse      = "autoresponse"
	StrategyDeliveryReport    = "delivery-report"
	StrategyXFailedRecipients = "x-failed-recipients"
	StrategyMIMEBounce        = "mime-bounce"
	StrategyLastDitch         = "last-ditch"
	StrategyNone              = "none"
)

// item is one raw finding before it is resolved into a Result.
type item struct {
	action       string
	status       string
	recipient    string
	autoResponse string
}

func (it item) empty() bool {
	return it.recipient == "" && it.action == "" && it.status == ""
}

// message is the parsed state shared by the strategies.
type message struct {
	head      mailheader.Header
	firstBody mailheader.Header
	body      string
	bodyLines []string
	boundary  string
	sections  mimepart.Sections

	isBounce     bool
	fbl          detect.FblVerdict
	report       *FeedbackReport
	isAuto       bool
	autoResponse string
}

func (m *message) extract() ([]item, string) {
	switch {
	case m.fbl.IsFbl:
		return []item{m.feedbackLoop()}, StrategyFbl
	case m.isAuto:
		return []item{m.autoReply()}, StrategyAutoResponse
	case m.isDeliveryReport():
		return m.deliveryReport(), StrategyDeliveryReport
	}

	if failed, ok := m.head.TextOK("X-failed-recipients"); ok {
		return m.scanEach(failedRecipients(failed)), StrategyXFailedRecipients
	}
	if m.boundary != "" && m.isBounce {
		return m.scanEach(address.FindAll(m.sections.FirstBodyPart)), StrategyMIMEBounce
	}
	if m.isBounce {
		return m.scanEach(address.FindAll(m.body)), StrategyLastDitch
	}
	return nil, StrategyNone
}

// failedRecipients splits an X-Failed-Recipients value. Entries written as
// "Name <addr>" are reduced to the address.
func failedRecipients(v string) []string {
	var rcpts []string
	for _, entry := range strings.Split(v, ",") {
		if addr := address.Extract(entry); addr != "" {
			entry = addr
		}
		rcpts = append(rcpts, strings.TrimSpace(entry))
	}
	return rcpts
}

func (m *message) feedbackLoop() item {
	return item{action: string(status.Failed), status: "5.7.1", recipient: m.report.OriginalRcptTo}
}

func (m *message) autoReply() item {
	rcpt := address.StripAngleBrackets(m.head.Text("Return-path"))
	if rcpt == "" {
		if found := address.FindAll(m.body); len(found) > 0 {
			rcpt = strings.TrimSpace(found[0])
		}
	}
	return item{
		action:       string(status.AutoResponse),
		recipient:    rcpt,
		autoResponse: m.autoResponse,
	}
}

// isDeliveryReport matches an RFC 1892 multipart/report of delivery-status.
func (m *message) isDeliveryReport() bool {
	ct, ok := m.head.ContentType()
	return ok && ct.Type == "multipart/report" &&
		ct.Param("report-type") == "delivery-status" &&
		m.boundary != ""
}

// deliveryReport reads the per-recipient DSN fields. A report without any
// recipient block falls back to scanning the human readable part.
func (m *message) deliveryReport() []item {
	report := dsn.Parse(m.sections.MachineParsableBodyPart)
	if len(report.Recipients) == 0 {
		return m.scanEach(address.FindAll(m.sections.FirstBodyPart))
	}

	items := make([]item, 0, len(report.Recipients))
	for _, rcpt := range report.Recipients {
		items = append(items, item{
			recipient: rcpt.Address(),
			status:    status.Format(rcpt.Status).Code,
			action:    rcpt.Action,
		})
	}
	return items
}

// scanEach derives a status for every address from the body text.
func (m *message) scanEach(addrs []string) []item {
	items := make([]item, 0, len(addrs))
	for _, addr := range addrs {
		addr = strings.TrimSpace(addr)
		code := detect.StatusFromText(addr, 0, m.bodyLines)
		items = append(items, item{
			recipient: addr,
			status:    code,
			action:    status.ActionString(code),
		})
	}
	return items
}

var (
	diagnosticLine = regexp.MustCompile(`(?is)^Diagnostic-Code:(.*)$`)
	diagnosticText = regexp.MustCompile(`(?s)(\d\d\d)(.*)$`)
)

// diagnosticCode returns the first Diagnostic-Code line that carries a reply
// code.
func diagnosticCode(lines []string) *DiagnosticCode {
	for _, line := range lines {
		m := diagnosticLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		d := diagnosticText.FindStringSubmatch(m[1])
		if d == nil {
			continue
		}
		code, err := strconv.Atoi(d[1])
		if err != nil {
			continue
		}
		return &DiagnosticCode{Code: code, Text: strings.TrimSpace(d[2])}
	}
	return nil
}

var angleToken = regexp.MustCompile(`<[^>]+>`)

// messageID prefers the Message-ID of the original letter, then the first
// token of References, then of In-Reply-To.
func messageID(original, head mailheader.Header) string {
	if id := original.Text("Message-id"); id != "" {
		return id
	}
	for _, name := range []string{"References", "In-reply-to"} {
		if tok := angleToken.FindString(head.Text(name)); tok != "" {
			return tok
		}
	}
	return ""
}
