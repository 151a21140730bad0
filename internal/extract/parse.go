package extract

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Parse decodes a saved page to UTF-8 and parses it into a node tree.
// contentType may be empty, in which case the encoding is sniffed from the
// page itself (BOM, meta tags). Undeclared pages are read as UTF-8 when they
// are valid UTF-8 and as windows-1252 otherwise.
func Parse(r io.Reader, contentType string) (*html.Node, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}

	doc, err := html.Parse(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ParseBytes is Parse over an in-memory page
func ParseBytes(data []byte) (*html.Node, error) {
	return Parse(bytes.NewReader(data), "")
}
