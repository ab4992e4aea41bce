package guidance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

func TestFetcher_Allowed(t *testing.T) {
	f := NewFetcher()

	allowed := []string{
		"https://www.nhs.uk/conditions/anaemia/",
		"https://medlineplus.gov/anemia.html",
		"https://ods.od.nih.gov/factsheets/Iron-HealthProfessional/",
	}
	for _, u := range allowed {
		assert.True(t, f.Allowed(u), u)
	}

	blocked := []string{
		"https://example.com/health",
		"https://evil.nhs.uk.attacker.com/",
		"https://nhs.uk.example.com/conditions/x",
		"http://127.0.0.1:8080/",
		"not a url at all ://",
	}
	for _, u := range blocked {
		assert.False(t, f.Allowed(u), u)
	}
}

func TestFetcher_BlockedHostRejectedBeforeConnecting(t *testing.T) {
	f := NewFetcher()

	_, err := f.FetchText(context.Background(), "https://example.com/page")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBlockedHost)
}

func TestStripHTML(t *testing.T) {
	in := `<html><head><script>var x = 1;</script><style>p{color:red}</style></head>
<body><h1>Iron</h1><p>Iron is a mineral.</p><ul><li>red meat</li><li>spinach</li></ul></body></html>`

	out := StripHTML(in)
	assert.NotContains(t, out, "var x")
	assert.NotContains(t, out, "color:red")
	assert.NotContains(t, out, "<")
	assert.Contains(t, out, "Iron is a mineral.")
	assert.Contains(t, out, "red meat")
}

func TestStripHTML_Entities(t *testing.T) {
	assert.Contains(t, StripHTML("<p>fish &amp; chips</p>"), "fish & chips")
}

func TestExtractSearchLinks(t *testing.T) {
	html := `<html><body>
		<a href="/conditions/anaemia/">Anaemia</a>
		<a href="/conditions/anaemia/#content">Anchor duplicate</a>
		<a href="/live-well/eat-well/iron-rich-foods/">Iron rich foods</a>
		<a href="/conditions/">Index page</a>
		<a href="/live-well/">Index page</a>
		<a href="/about-us/contact/">Wrong section</a>
		<a href="https://example.com/conditions/x/">Absolute external</a>
		<a href="/medicines/ferrous-sulfate/">Medicine</a>
	</body></html>`

	links := ExtractSearchLinks(html, "www.nhs.uk")
	assert.Equal(t, []string{
		"https://www.nhs.uk/conditions/anaemia",
		"https://www.nhs.uk/live-well/eat-well/iron-rich-foods",
		"https://www.nhs.uk/medicines/ferrous-sulfate",
	}, links)
}

func TestExtractSearchLinks_EmptyDocument(t *testing.T) {
	assert.Empty(t, ExtractSearchLinks("", "www.nhs.uk"))
	assert.Empty(t, ExtractSearchLinks("<p>no links</p>", "www.nhs.uk"))
}
