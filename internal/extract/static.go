package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StaticPage is a parsed HTML snapshot that evaluates the extractor scripts with
// goquery instead of a browser. Scripts it does not know are rejected.
type StaticPage struct {
	doc *goquery.Document
	url string
}

// NewStaticPage parses body as the document served at pageURL.
func NewStaticPage(pageURL string, body []byte) (*StaticPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &StaticPage{doc: doc, url: pageURL}, nil
}

func (p *StaticPage) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	switch expression {
	case baseURIScript:
		return p.baseURI(), nil
	case bodyTextScript:
		return p.bodyText(), nil
	case jsonLDScript:
		return p.jsonLDBlocks(), nil
	case domScript:
		if len(arg) == 0 {
			return nil, fmt.Errorf("dom query: missing selectors")
		}
		var q domQuery
		data, err := json.Marshal(arg[0])
		if err != nil {
			return nil, fmt.Errorf("dom query: %w", err)
		}
		if err := json.Unmarshal(data, &q); err != nil {
			return nil, fmt.Errorf("dom query: %w", err)
		}
		return p.queryCards(q), nil
	default:
		return nil, fmt.Errorf("static page cannot evaluate script")
	}
}

func (p *StaticPage) baseURI() string {
	href, ok := p.doc.Find("base[href]").First().Attr("href")
	if !ok {
		return p.url
	}
	page, err := url.Parse(p.url)
	if err != nil {
		return p.url
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return p.url
	}
	return page.ResolveReference(ref).String()
}

func (p *StaticPage) bodyText() string {
	var b strings.Builder
	visibleText(p.doc.Find("body"), &b)
	return b.String()
}

func visibleText(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "#text":
			if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
				b.WriteString(t)
				b.WriteByte('\n')
			}
			return
		case "script", "style", "noscript", "template", "#comment":
			return
		}
		if _, hidden := s.Attr("hidden"); hidden {
			return
		}
		if v, _ := s.Attr("aria-hidden"); v == "true" {
			return
		}
		visibleText(s, b)
	})
}

func (p *StaticPage) jsonLDBlocks() []string {
	blocks := []string{}
	p.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, s.Text())
	})
	return blocks
}

func (p *StaticPage) queryCards(q domQuery) domResult {
	for _, selector := range q.Selectors {
		nodes := p.doc.Find(selector)
		if nodes.Length() == 0 {
			continue
		}
		result := domResult{Selector: selector}
		nodes.Each(func(_ int, node *goquery.Selection) {
			result.Items = append(result.Items, domItem{
				Title:      firstText(node, q.Title),
				Location:   firstText(node, q.Location),
				Department: firstText(node, q.Department),
				Href:       firstHref(node, q.Link),
			})
		})
		return result
	}
	return domResult{Items: []domItem{}}
}

func firstText(root *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if v := strings.TrimSpace(root.Find(sel).First().Text()); v != "" {
			return v
		}
	}
	return ""
}

func firstHref(root *goquery.Selection, selectors []string) string {
	if goquery.NodeName(root) == "a" {
		if href, ok := root.Attr("href"); ok && href != "" {
			return href
		}
	}
	for _, sel := range selectors {
		if href, ok := root.Find(sel).First().Attr("href"); ok && href != "" {
			return href
		}
	}
	return ""
}
