package mailbox

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/emurenMRz/bounceview/internal/mailheader"
	"github.com/emurenMRz/bounceview/internal/mimepart"
)

// EnsureMessageID returns raw unchanged together with its Message-ID, or,
// when the message has none, raw with a generated Message-ID field
// prepended. Generated IDs are UUIDv7 at host.
func EnsureMessageID(raw []byte, host string) ([]byte, string, error) {
	head, _ := mimepart.SplitHeadAndBody(mimepart.NormalizeLineEndings(string(raw)))
	if id := mailheader.Parse(head).Text("Message-id"); id != "" {
		return raw, id, nil
	}

	u, err := uuid.NewV7()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate message id: %w", err)
	}
	id := fmt.Sprintf("<%s@%s>", u, host)

	out := make([]byte, 0, len(raw)+len(id)+14)
	out = append(out, "Message-ID: "+id+"\n"...)
	out = append(out, raw...)
	return out, id, nil
}
