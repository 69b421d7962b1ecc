package mailbox

import (
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/emurenMRz/bounceview/bounce"
	"github.com/emurenMRz/bounceview/internal/mailheader"
)

var addressParser = &mail.AddressParser{WordDecoder: mailheader.NewWordDecoder()}

// Summary is the list view of one message.
type Summary struct {
	ID         int              `json:"id"`
	From       string           `json:"from"`
	Date       string           `json:"date"`
	Subject    string           `json:"subject"`
	EmailType  bounce.EmailType `json:"emailType,omitempty"`
	Recipients []string         `json:"recipients,omitempty"`
	// Timestamp is the parsed Date used for sorting.
	Timestamp time.Time `json:"-"`
}

// Summaries classifies every message of the mailbox with h and returns
// them newest first. Messages marked deleted (Status: D) are left out.
func (s *Store) Summaries(name string, h *bounce.Handler) ([]Summary, error) {
	summaries := []Summary{}
	err := s.Each(name, func(id int, raw string) error {
		sum, ok := Summarize(id, raw, h)
		if !ok {
			s.logger.Debug("skipping message", "mailbox", name, "msg", id)
			return nil
		}
		summaries = append(summaries, sum)
		return nil
	})
	if err != nil {
		return nil, err
	}
	SortByDate(summaries)
	return summaries, nil
}

// Summarize builds the Summary of one raw message. It reports false for
// messages marked deleted.
func Summarize(id int, raw string, h *bounce.Handler) (Summary, bool) {
	sum := Summary{ID: id}

	if msg, err := mail.ReadMessage(strings.NewReader(raw)); err == nil {
		header := msg.Header
		if header.Get("Status") == "D" {
			return sum, false
		}

		sum.Subject = mailheader.DecodeWords(header.Get("Subject"))
		sum.From = decodeAddressList(header.Get("From"))
		sum.Date = header.Get("Date")
		sum.Timestamp = parseDate(sum.Date)
	}

	results := h.Parse(raw)
	if len(results) > 0 {
		sum.EmailType = results[0].EmailType
	}
	for _, r := range results {
		sum.Recipients = append(sum.Recipients, r.Recipient)
	}
	return sum, true
}

// SortByDate orders summaries newest first. Undated messages go last in
// file order.
func SortByDate(summaries []Summary) {
	sort.SliceStable(summaries, func(a, b int) bool {
		ta, tb := summaries[a].Timestamp, summaries[b].Timestamp
		if ta.Equal(tb) {
			return summaries[a].ID < summaries[b].ID
		}
		if ta.IsZero() {
			return false
		}
		if tb.IsZero() {
			return true
		}
		return ta.After(tb)
	})
}

// parseDate tries the common Date header layouts and returns the zero time
// when none fits.
func parseDate(dateStr string) time.Time {
	if dateStr == "" {
		return time.Time{}
	}
	if t, err := mail.ParseDate(dateStr); err == nil {
		return t
	}
	layouts := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		time.RFC850,
		time.RFC3339,
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, dateStr); err == nil {
			return t
		}
	}
	return time.Time{}
}

func decodeAddressList(header string) string {
	if header == "" {
		return ""
	}
	addrs, err := addressParser.ParseList(header)
	if err != nil {
		return mailheader.DecodeWords(header)
	}
	var parts []string
	for _, a := range addrs {
		name := a.Name
		if name == "" {
			parts = append(parts, a.Address)
			continue
		}
		parts = append(parts, name+" <"+a.Address+">")
	}
	return strings.Join(parts, ", ")
}
