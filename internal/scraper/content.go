package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// NoiseSelector matches elements removed before any text is read.
const NoiseSelector = "script, style, nav, header, footer, aside"

// ContentSelectors lists content regions in priority order. The first selector
// with a match wins; narrow labelled regions come before page-wide ones.
// Attribute substring matches are case-sensitive.
var ContentSelectors = []string{
	"article",
	`[class*="job-description"]`,
	`[class*="job-details"]`,
	`[class*="description"]`,
	`[id*="job-description"]`,
	`[id*="job-details"]`,
	"main",
	`[role="main"]`,
}

var bodyTag = regexp.MustCompile(`(?i)<body[\s/>]`)

// ExtractContent parses an HTML page and returns the linearized text of its
// main content region, or an empty string if the region holds no text.
//
// The page is parsed with scripting disabled so <noscript> children are
// elements rather than raw markup text.
func ExtractContent(page string) (string, error) {
	root, err := html.ParseWithOptions(strings.NewReader(page), html.ParseOptionEnableScripting(false))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc := goquery.NewDocumentFromNode(root)
	doc.Find(NoiseSelector).Remove()

	return Linearize(selectContent(doc, bodyTag.MatchString(page))), nil
}

// selectContent falls back to <body> only when the page declares one. The
// parser always synthesizes a body, so fragments without it are read whole,
// <title> included.
func selectContent(doc *goquery.Document, hasBody bool) *goquery.Selection {
	for _, selector := range ContentSelectors {
		if found := doc.Find(selector).First(); found.Length() > 0 {
			return found
		}
	}

	if hasBody {
		if body := doc.Find("body").First(); body.Length() > 0 {
			return body
		}
	}

	return doc.Selection
}

// Linearize joins the text nodes under sel, one per line, trimming each line
// and dropping blank ones.
func Linearize(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}

	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		for _, line := range strings.Split(part, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}

	return strings.Join(lines, "\n")
}

func collectText(node *html.Node, parts *[]string) {
	if node.Type == html.TextNode {
		if text := strings.TrimSpace(node.Data); text != "" {
			*parts = append(*parts, text)
		}
		return
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, parts)
	}
}
