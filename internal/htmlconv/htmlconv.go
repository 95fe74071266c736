// Package htmlconv turns raw HTML pages into clean markdown suitable for
// document analysis and model prompts.
package htmlconv

import (
	"bytes"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

var htmlTagPattern = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9]*)\b[^>]*>`)

// Number of HTML tags required before the input is treated as HTML.
const htmlTagThreshold = 3

// Nodes stripped before conversion; they carry navigation and boilerplate,
// not article content.
var unwantedElements = map[string]bool{
	"script": true, "style": true, "nav": true, "header": true,
	"footer": true, "aside": true, "iframe": true, "noscript": true,
	"form": true, "svg": true,
}

// IsHTML reports whether the input looks like an HTML document.
func IsHTML(input string) bool {
	return len(htmlTagPattern.FindAllString(input, htmlTagThreshold+1)) > htmlTagThreshold
}

// ToMarkdown converts HTML to markdown after stripping boilerplate elements.
// Non-HTML input is returned unchanged.
func ToMarkdown(input string) string {
	if !IsHTML(input) {
		return strings.TrimSpace(input)
	}

	cleaned, err := stripBoilerplate(input)
	if err != nil {
		cleaned = input
	}

	markdown, err := htmltomarkdown.ConvertString(cleaned)
	if err != nil {
		return strings.TrimSpace(input)
	}
	return tidyMarkdown(markdown)
}

// Title extracts the document title, falling back to the first h1.
func Title(input string) string {
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return ""
	}
	if title := findText(doc, "title"); title != "" {
		return title
	}
	return findText(doc, "h1")
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func stripBoilerplate(input string) (string, error) {
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return input, err
	}

	root := findNode(doc, "main")
	if root == nil {
		root = findNode(doc, "article")
	}
	if root == nil {
		root = doc
	}
	removeUnwanted(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return input, err
	}
	return buf.String(), nil
}

func findNode(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, name); found != nil {
			return found
		}
	}
	return nil
}

func findText(n *html.Node, name string) string {
	node := findNode(n, name)
	if node == nil {
		return ""
	}
	var sb strings.Builder
	collectText(node, &sb)
	return strings.TrimSpace(sb.String())
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

func removeUnwanted(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && unwantedElements[c.Data] {
			n.RemoveChild(c)
			continue
		}
		removeUnwanted(c)
	}
}

var blankLines = regexp.MustCompile(`\n{3,}`)

func tidyMarkdown(markdown string) string {
	markdown = blankLines.ReplaceAllString(markdown, "\n\n")
	return strings.TrimSpace(markdown)
}
