package htmlutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func mustDoc(t testing.TB, markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestNormalizedText(t *testing.T) {
	doc := mustDoc(t, `<div id="a">
		Machine   Learning
		<b>and</b>   AI <script>ignored()</script>
	</div>`)

	require.Equal(t, "Machine Learning and AI", NormalizedText(doc.Find("#a")))
	require.Equal(t, "", NormalizedText(doc.Find("#missing")))
	require.Equal(t, "", NormalizedText(nil))
}

func TestLines(t *testing.T) {
	doc := mustDoc(t, `<article>
		<h1>Hi there</h1>
		<p>first line<br>second line</p>
		<p>   </p>
		<pre>multi
		  line</pre>
	</article>`)

	lines := Lines(doc.Find("article"))
	require.Equal(t, []string{"Hi there", "first line", "second line", "multi", "line"}, lines)

	require.Equal(t, []string{}, Lines(doc.Find("section")))
}

func TestGetLinks(t *testing.T) {
	base, err := url.Parse("https://github.com")
	if err != nil {
		t.Fatal(err)
	}

	doc := mustDoc(t, `<ul>
		<li><a href="/alice">  Alice
			Smith </a></li>
		<li><a href="https://github.com/bob">Bob</a></li>
		<li><a>no href</a></li>
		<li><a href="   ">blank</a></li>
	</ul>`)

	links := GetLinks(base, doc.Find("a"))
	require.Len(t, links, 2)
	require.Equal(t, "https://github.com/alice", links[0].String())
	require.Equal(t, "https://github.com/bob", links[1].String())
}

func TestResolveUrl(t *testing.T) {
	base, err := url.Parse("https://github.com")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		href     string
		expected string
	}{
		{href: "/rasbt/LLMs-from-scratch", expected: "https://github.com/rasbt/LLMs-from-scratch"},
		{href: " /orgs/github ", expected: "https://github.com/orgs/github"},
		{href: "https://example.com/x", expected: "https://example.com/x"},
	}
	for _, test := range cases {
		resolved, err := ResolveUrl(base, test.href)
		require.NoError(t, err)
		require.Equal(t, test.expected, resolved.String())
	}
}
