package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayTitle_FallsBackToURL(t *testing.T) {
	e := Entry{URL: "https://example.com/x"}
	assert.Equal(t, "https://example.com/x", e.DisplayTitle())

	e.Title = "Example"
	assert.Equal(t, "Example", e.DisplayTitle())
}

func TestHost(t *testing.T) {
	tests := []struct {
		url  string
		host string
	}{
		{"https://www.example.com/page?q=1", "www.example.com"},
		{"http://blog.test.org:8080/post", "blog.test.org"},
		{"file:///tmp/notes.html", ""},
		{"http://exa mple.com/", ""},
	}

	for _, tc := range tests {
		e := Entry{URL: tc.url}
		assert.Equal(t, tc.host, e.Host(), "host for %q", tc.url)
	}
}
