package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Code
	}{
		{"5.1.1 mailbox unavailable", Code{"5.1.1", "mailbox unavailable"}},
		{"511 mailbox unavailable", Code{"5.1.1", "mailbox unavailable"}},
		{"smtp; 4.2.2", Code{"4.2.2", ""}},
		{"5.7.10 encryption needed", Code{"5.7.10", "encryption needed"}},
		{"no code here", Code{}},
		{"", Code{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		in     string
		want   Action
		wantOK bool
	}{
		{"2.1.5 delivered", Success, true},
		{"4.2.2 mailbox full", Transient, true},
		{"5.1.1 user unknown", Failed, true},
		{"550 denied", Failed, true},
		{"invalid code", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ActionFor(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	assert.Equal(t, "failed", ActionString("5.5.0"))
	assert.Equal(t, "", ActionString("x"))
}

func TestPermanentNeverSuccess(t *testing.T) {
	for _, code := range []string{"5.0.0", "5.1.1", "5.7.1", "554", "5.5.0 other"} {
		a, ok := ActionFor(code)
		assert.True(t, ok)
		assert.NotEqual(t, Success, a, code)
		assert.Equal(t, Failed, a, code)
	}
}

func TestReasonFor(t *testing.T) {
	assert.Equal(t, Filtered, ReasonFor("5.7.1"))
	assert.Equal(t, NotAccept, ReasonFor("4.2.0"))
	assert.Equal(t, NotAccept, ReasonFor("4.2.2"))
	assert.Equal(t, NotAccept, ReasonFor("4.3.2"))
	assert.Equal(t, UserUnknown, ReasonFor("5.1.1"))
	assert.Equal(t, UserUnknown, ReasonFor(""))
}

func TestDecodeDiagnostic(t *testing.T) {
	assert.Equal(t, "5.1.1", DecodeDiagnostic("smtp; 5.1.1 User unknown"))
	assert.Equal(t, "550", DecodeDiagnostic("smtp; 550 User unknown"))
	assert.Equal(t, "4.4.7", DecodeDiagnostic("450 4.4.7 queue timeout"))
	assert.Equal(t, "", DecodeDiagnostic("No diagnostic code"))
}

func TestParseAction(t *testing.T) {
	tests := map[string]Action{
		"failed":       Failed,
		" Failed ":     Failed,
		"transient":    Transient,
		"Success":      Success,
		"autoresponse": AutoResponse,
	}
	for in, want := range tests {
		got, ok := ParseAction(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"bogus", "", "delayed", "delivered", "relayed", "expanded"} {
		_, ok := ParseAction(in)
		assert.False(t, ok, in)
	}
}

func TestMessages(t *testing.T) {
	msg := Messages("5.1.1")
	assert.Contains(t, msg, "Permanent Failure")
	assert.Contains(t, msg, "Bad destination mailbox address")

	d, ok := Describe("421 try later")
	assert.True(t, ok)
	assert.Equal(t, "4.2.1", d.Code)
	assert.Equal(t, "Persistent Transient Failure", d.Class.Title)
	assert.Equal(t, "Mailbox disabled, not accepting messages", d.Subject.Title)

	assert.Equal(t, "", Messages("garbage"))
}
