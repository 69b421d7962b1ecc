package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emurenMRz/bounceview/bounce"
	"github.com/emurenMRz/bounceview/internal/mailbox"
	"github.com/emurenMRz/bounceview/internal/suppress"
)

var bounceMessage = strings.Join([]string{
	"Return-Path: <>",
	"From: Mail Delivery System <MAILER-DAEMON@mx.example.net>",
	"Subject: Mail delivery failed: returning message to sender",
	"X-Failed-Recipients: gone@example.org",
	"",
	"A message could not be delivered.",
	"",
	"  gone@example.org",
	"    550 5.1.1 User unknown",
	"",
}, "\r\n")

var plainMessage = strings.Join([]string{
	"Return-Path: <friend@example.com>",
	"From: friend@example.com",
	"Subject: lunch",
	"",
	"hello",
	"",
}, "\r\n")

func configFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bounceview.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"error\"\n"), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (output, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"-c", configFile(t)}, args...))
	if err := cmd.Execute(); err != nil {
		return output{}, err
	}
	var o output
	require.NoError(t, json.Unmarshal(out.Bytes(), &o))
	return o, nil
}

func TestPipePrintsResults(t *testing.T) {
	o, err := run(t, bounceMessage)
	require.NoError(t, err)
	assert.Equal(t, bounce.Bounce, o.EmailType)
	require.Len(t, o.Results, 1)
	assert.Equal(t, "gone@example.org", o.Results[0].Recipient)
	assert.Empty(t, o.Mailbox)
}

func TestPipeFilesByType(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mail")

	o, err := run(t, bounceMessage, "--mbox-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "bounce", o.Mailbox)

	o, err = run(t, plainMessage, "--mbox-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, Unclassified, o.Mailbox)
	assert.Empty(t, o.Results)

	store := mailbox.New(dir, nil)
	names, err := store.Names()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bounce", Unclassified}, names)

	data, err := os.ReadFile(filepath.Join(dir, Unclassified))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "From friend@example.com "))

	data, err = os.ReadFile(filepath.Join(dir, "bounce"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "From "+mailbox.DefaultSender+" "))
}

func TestPipeRecordsSuppressions(t *testing.T) {
	db := filepath.Join(t.TempDir(), "suppress.db")

	o, err := run(t, bounceMessage, "--store", db)
	require.NoError(t, err)
	assert.Equal(t, 1, o.Suppressed)

	s, err := suppress.Open(context.Background(), db, nil)
	require.NoError(t, err)
	defer s.Close()
	ok, err := s.IsSuppressed(context.Background(), "gone@example.org")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPipeReadError(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetIn(iotest.ErrReader(assert.AnError))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-c", configFile(t)})
	assert.ErrorIs(t, cmd.Execute(), assert.AnError)
}
