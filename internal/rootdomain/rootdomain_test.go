package rootdomain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "www stripped", url: "https://www.netflix.com/signup", want: "netflix.com"},
		{name: "subdomain dropped", url: "https://app.slack.com/client", want: "slack.com"},
		{name: "two part tld keeps three labels", url: "https://foo.bar.co.uk", want: "bar.co.uk"},
		{name: "short tld", url: "https://zoom.us/join", want: "zoom.us"},
		{name: "www on two part tld", url: "https://www.amazon.co.uk/gp/cart", want: "amazon.co.uk"},
		{name: "deep subdomain", url: "https://a.b.c.example.com", want: "example.com"},
		{name: "bare hostname without scheme", url: "netflix.com", want: "netflix.com"},
		{name: "two labels unchanged", url: "https://example.com", want: "example.com"},
		{name: "single label unchanged", url: "https://localhost", want: "localhost"},
		{name: "empty input", url: "", want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Extract(tc.url))
		})
	}
}

func TestExtract_NeverPanicsOnGarbage(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"://broken", "%%%", "http://", "just some text", "a.b.co.uk"} {
		require.NotPanics(t, func() { Extract(raw) }, "input %q", raw)
	}
}

func TestBase(t *testing.T) {
	t.Parallel()

	require.Equal(t, "notion.so", Base("app.notion.so"))
	require.Equal(t, "example.com", Base("example.com"))
	require.Equal(t, "localhost", Base("localhost"))
	require.Equal(t, "co.uk", Base("foo.bar.co.uk"))
}
