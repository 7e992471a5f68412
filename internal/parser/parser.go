// Package parser normalizes fetched registry responses before they reach a
// site: bodies are decoded to UTF-8 and markup is summarized for logging.
package parser

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/abraham-mv/huon-test/internal/extract"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

// Decode reads r and converts it to UTF-8 using the declared or sniffed
// charset. JSON bodies are returned as read.
func (p *Parser) Decode(r io.Reader, contentType string) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if mediaType, _, _ := mime.ParseMediaType(contentType); strings.HasSuffix(mediaType, "json") {
		return data, nil
	}

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		// already utf-8 despite the declaration
		if !utf8.Valid(data) {
			return nil, err
		}
		utf8data = data
	}
	return utf8data, nil
}

// Summary is what the crawler logs about a fetched page.
type Summary struct {
	Title    string
	Language string
	Links    int
	Tables   int
}

// Summarize reads the title, declared language and link/table counts of
// markup. Unparseable content yields an empty summary.
func (p *Parser) Summarize(content []byte) Summary {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return Summary{}
	}
	doc.Find("script,noscript,style").Remove()
	return Summary{
		Title:    extract.Clean(doc.Find("title").First().Text()),
		Language: strings.TrimSpace(doc.Find("html").AttrOr("lang", "")),
		Links:    doc.Find("a[href]").Length(),
		Tables:   doc.Find("table").Length(),
	}
}
