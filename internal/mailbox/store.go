// Package mailbox reads and appends mbox files kept in one directory. File
// names on disk are IMAP modified UTF-7; the API speaks UTF-8.
package mailbox

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-imap/utf7"
	"github.com/emersion/go-mbox"
)

var (
	ErrNotFound    = errors.New("mailbox: not found")
	ErrInvalidName = errors.New("mailbox: invalid name")
)

// DefaultSender is the envelope sender written when Append gets none.
const DefaultSender = "MAILER-DAEMON"

// Store is a directory of mbox files.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New returns a Store over dir. A nil logger discards output.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{dir: dir, logger: logger.With("component", "mailbox")}
}

// Dir returns the directory the store reads.
func (s *Store) Dir() string { return s.dir }

// Names lists the mailboxes in the directory, decoded to UTF-8. Entries
// whose names do not decode are skipped.
func (s *Store) Names() ([]string, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mailbox directory: %w", err)
	}

	names := []string{}
	for _, file := range files {
		if file.IsDir() || strings.HasPrefix(file.Name(), ".") {
			continue
		}
		name, err := utf7.Encoding.NewDecoder().String(file.Name())
		if err != nil {
			s.logger.Warn("skipping undecodable mailbox", "file", file.Name(), "error", err)
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Path maps a UTF-8 mailbox name to its file.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	encoded, err := utf7.Encoding.NewEncoder().String(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	return filepath.Join(s.dir, encoded), nil
}

// Messages returns every message in the mailbox, without the mbox From
// line.
func (s *Store) Messages(name string) ([]string, error) {
	var out []string
	err := s.Each(name, func(_ int, raw string) error {
		out = append(out, raw)
		return nil
	})
	return out, err
}

// Message returns message id of the mailbox.
func (s *Store) Message(name string, id int) (string, error) {
	if id < 0 {
		return "", ErrNotFound
	}
	var found string
	var ok bool
	err := s.Each(name, func(i int, raw string) error {
		if i == id {
			found, ok = raw, true
			return io.EOF
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotFound
	}
	return found, nil
}

// Each calls fn for every message of the mailbox in file order. Returning
// io.EOF from fn stops the walk without error.
func (s *Store) Each(name string, fn func(id int, raw string) error) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to open mailbox: %w", err)
	}
	defer f.Close()

	return ReadEach(f, fn)
}

// ReadEach walks the messages of an mbox stream.
func ReadEach(r io.Reader, fn func(id int, raw string) error) error {
	reader := mbox.NewReader(r)
	for i := 0; ; i++ {
		msg, err := reader.NextMessage()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read message %d: %w", i, err)
		}
		raw, err := io.ReadAll(msg)
		if err != nil {
			return fmt.Errorf("failed to read message %d: %w", i, err)
		}
		if err := fn(i, string(raw)); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// Append adds raw to the end of the mailbox, creating it when needed.
func (s *Store) Append(name string, raw []byte, from string, date time.Time) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create mailbox directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o660)
	if err != nil {
		return fmt.Errorf("failed to open mailbox: %w", err)
	}

	if err := WriteMessage(f, raw, from, date); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close mailbox: %w", err)
	}
	s.logger.Debug("message appended", "mailbox", name, "bytes", len(raw))
	return nil
}

// WriteMessage writes one mbox entry for raw to w. Line endings are
// stored as LF.
func WriteMessage(w io.Writer, raw []byte, from string, date time.Time) error {
	if from == "" {
		from = DefaultSender
	}
	if date.IsZero() {
		date = time.Now()
	}

	mw := mbox.NewWriter(w)
	body, err := mw.CreateMessage(from, date)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := io.WriteString(body, text); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}
	return nil
}
