package htmlconv

import (
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Field Notes</title><style>body { color: red }</style></head>
<body>
<nav><a href="/">Home</a></nav>
<main>
<h1>Field Notes</h1>
<p>First paragraph of the article.</p>
<p>Second paragraph with <strong>emphasis</strong>.</p>
</main>
<footer>Copyright</footer>
<script>alert("hi")</script>
</body>
</html>`

func TestIsHTML(t *testing.T) {
	if !IsHTML(samplePage) {
		t.Error("sample page should be detected as HTML")
	}
	if IsHTML("just a plain sentence with <3 symbols") {
		t.Error("plain text should not be detected as HTML")
	}
}

func TestToMarkdownStripsBoilerplate(t *testing.T) {
	md := ToMarkdown(samplePage)
	if !strings.Contains(md, "First paragraph of the article.") {
		t.Errorf("article text missing from markdown: %q", md)
	}
	if strings.Contains(md, "alert(") {
		t.Error("script content leaked into markdown")
	}
	if strings.Contains(md, "Copyright") {
		t.Error("footer content leaked into markdown")
	}
}

func TestToMarkdownPassesThroughPlainText(t *testing.T) {
	plain := "nothing to convert here"
	if got := ToMarkdown(plain); got != plain {
		t.Errorf("plain text should pass through, got %q", got)
	}
}

func TestTitle(t *testing.T) {
	if got := Title(samplePage); got != "Field Notes" {
		t.Errorf("Title = %q, want Field Notes", got)
	}
	noTitle := `<html><body><h1>Heading Only</h1></body></html>`
	if got := Title(noTitle); got != "Heading Only" {
		t.Errorf("Title fallback = %q, want Heading Only", got)
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("one two  three\nfour"); got != 4 {
		t.Errorf("WordCount = %d, want 4", got)
	}
}
