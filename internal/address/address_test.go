package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindAll(t *testing.T) {
	assert.Equal(t, []string{"first@example.com"}, FindAll("to first@example.com and second@example.com"))
	assert.Equal(t, []string{"User.Name@Example.ORG"}, FindAll("<User.Name@Example.ORG>: unknown"))
	assert.Nil(t, FindAll("nobody here"))
	assert.Nil(t, FindAll(""))
}

func TestStripAngleBrackets(t *testing.T) {
	tests := map[string]string{
		"<user@example.com>":        "user@example.com",
		"  [ 192.0.2.1 ] ":          "192.0.2.1",
		"Name <user@example.com>":   "user@example.com",
		" plain@example.com ":       "plain@example.com",
		"<a@example.com> <b@x.com>": "a@example.com> <b@x.com",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripAngleBrackets(in), in)
	}
}

func TestExtract(t *testing.T) {
	assert.Equal(t, "b@example.com", Extract(`"A" <a@example.com> (b@example.com)`))
	assert.Equal(t, "", Extract("no address"))
}

func TestFindRecipient(t *testing.T) {
	assert.Equal(t, "orig@example.com", FindRecipient("<orig@example.com>", "final@example.com"))
	assert.Equal(t, "final@example.com", FindRecipient("", "<final@example.com>"))
	assert.Equal(t, "", FindRecipient("", ""))
}
