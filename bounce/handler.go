// Package bounce classifies inbound email as a delivery bounce, a feedback
// loop complaint or an automatic reply, and extracts the affected
// recipients with their delivery status.
//
// A Handler keeps no state between calls and is safe for concurrent use.
package bounce

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/emurenMRz/bounceview/internal/detect"
	"github.com/emurenMRz/bounceview/internal/mailheader"
	"github.com/emurenMRz/bounceview/internal/mimepart"
	"github.com/emurenMRz/bounceview/status"
)

// Handler parses raw messages into Results.
type Handler struct {
	logger *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for per-message debug output.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// New returns a Handler. Without options it logs nothing.
func New(opts ...Option) *Handler {
	h := &Handler{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Analysis is the outcome of one message together with the intermediate
// findings that led to it.
type Analysis struct {
	Headers         map[string]string `json:"headers"`
	Boundary        string            `json:"boundary,omitempty"`
	LetterSource    string            `json:"letterSource,omitempty"`
	OriginalHeaders map[string]string `json:"originalHeaders,omitempty"`
	IsBounce        bool              `json:"isBounce"`
	IsFbl           bool              `json:"isFbl"`
	IsAutoResponse  bool              `json:"isAutoResponse"`
	EmailType       EmailType         `json:"emailType"`
	Strategy        string            `json:"strategy"`
	Results         []Result          `json:"results"`
}

// Parse classifies raw and returns one Result per affected recipient. A
// message that matches nothing yields no results.
func (h *Handler) Parse(raw string) []Result {
	return h.Analyze(raw).Results
}

// ParseBytes is Parse for a byte slice.
func (h *Handler) ParseBytes(raw []byte) []Result {
	return h.Parse(string(raw))
}

// ParseReader reads a whole message from r and parses it.
func (h *Handler) ParseReader(r io.Reader) ([]Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}
	return h.ParseBytes(raw), nil
}

// Classify returns the type of raw. It reports false when the message
// produced no results.
func (h *Handler) Classify(raw string) (EmailType, bool) {
	results := h.Parse(raw)
	if len(results) == 0 {
		return "", false
	}
	return results[0].EmailType, true
}

// Analyze runs the full pipeline on raw.
func (h *Handler) Analyze(raw string) Analysis {
	email := mimepart.NormalizeLineEndings(raw)
	rawHead, body := mimepart.SplitHeadAndBody(email)
	head := mailheader.Parse(rawHead)
	boundary := head.Boundary()

	m := &message{
		head:      head,
		body:      body,
		bodyLines: strings.Split(body, mimepart.CRLF),
		boundary:  boundary,
		sections:  mimepart.ParseSections(body, boundary),
	}

	var original mailheader.Header
	var letterBody string
	letter, source := recoverOriginalLetter(m.sections, body, email)
	if letter != "" {
		var originalHead string
		originalHead, letterBody = mimepart.SplitHeadAndBody(letter)
		original = mailheader.Parse(originalHead)
	}

	if m.sections.FirstBodyPart != "" {
		m.firstBody = mailheader.Parse(m.sections.FirstBodyPart)
	}

	m.isBounce = detect.IsBounce(head)
	m.fbl = detect.DetectFbl(head, m.firstBody, m.sections)
	if !m.isBounce && !m.fbl.IsFbl {
		m.autoResponse, m.isAuto = detect.DetectAutoResponse(head)
	}

	if m.fbl.IsFbl {
		if letter != "" && original.Len() > 0 {
			if nested, ok := unwrapFeedbackLetter(original, letterBody); ok {
				original = nested
			}
		}
		report := detect.ParseFeedbackReport(m.fbl, head, m.firstBody, m.sections)
		m.report = &report
	}

	items, strategy := m.extract()

	a := Analysis{
		Headers:         flatten(head),
		Boundary:        boundary,
		LetterSource:    source,
		OriginalHeaders: flatten(original),
		IsBounce:        m.isBounce,
		IsFbl:           m.fbl.IsFbl,
		IsAutoResponse:  m.isAuto,
		EmailType:       resolveType(m.isBounce, m.fbl.IsFbl, m.isAuto),
		Strategy:        strategy,
	}
	a.Results = m.resolve(items, a.EmailType, messageID(original, head), original.Text("Subject"))

	h.logger.Debug("message classified",
		"email_type", a.EmailType,
		"strategy", strategy,
		"letter", source,
		"results", len(a.Results),
	)
	return a
}

// resolveType orders the classifications FBL, bounce, automatic reply.
// Anything else is reported as a bounce.
func resolveType(isBounce, isFbl, isAuto bool) EmailType {
	switch {
	case isFbl:
		return Fbl
	case isBounce:
		return Bounce
	case isAuto:
		return AutoResponse
	}
	return Bounce
}

// resolve turns raw findings into Results. Findings without a recipient,
// action and status are dropped.
func (m *message) resolve(items []item, t EmailType, msgID, subject string) []Result {
	diag := diagnosticCode(m.bodyLines)

	var results []Result
	for _, it := range items {
		it.recipient = strings.TrimSpace(it.recipient)
		if it.empty() {
			continue
		}

		action, ok := status.ParseAction(it.action)
		if !ok {
			action = fallbackAction(it.status, m.isAuto)
		}

		reason := status.ReasonFor(it.status)
		if reason == status.Filtered && t != Fbl {
			reason = status.UserUnknown
		}

		results = append(results, Result{
			EmailType:      t,
			Action:         action,
			DeliveryStatus: it.status,
			Recipient:      it.recipient,
			Reason:         reason,
			MessageID:      msgID,
			Subject:        subject,
			DiagnosticCode: diag,
			FeedbackReport: m.report,
			AutoResponse:   it.autoResponse,
		})
	}
	return results
}

// fallbackAction handles tokens that are not an Action, including the RFC
// 3464 "delayed", "delivered", "relayed" and "expanded". The status class
// decides so that a class 5 code never pairs with Success.
func fallbackAction(code string, isAuto bool) status.Action {
	if isAuto {
		return status.AutoResponse
	}
	if a, ok := status.ActionFor(code); ok {
		return a
	}
	return status.Failed
}

func flatten(h mailheader.Header) map[string]string {
	if h.Len() == 0 {
		return nil
	}
	out := make(map[string]string, h.Len())
	for _, name := range h.Names() {
		if v, ok := h.Get(name); ok {
			out[name] = v.String()
		}
	}
	return out
}

var std = New()

// Parse classifies raw with a Handler that logs nothing.
func Parse(raw string) []Result {
	return std.Parse(raw)
}
