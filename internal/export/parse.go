package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ErrNoEmbeddedData is returned when a document lacks the questionnaire data block.
var ErrNoEmbeddedData = errors.New("document has no embedded questionnaire data")

// ParseDocument reads the embedded questionnaire back out of an exported document.
func ParseDocument(r io.Reader) (Embedded, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Embedded{}, fmt.Errorf("parse html: %w", err)
	}

	node := findByID(doc, DataElementID)
	if node == nil {
		return Embedded{}, ErrNoEmbeddedData
	}

	var sb strings.Builder
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}

	var e Embedded
	if err := json.Unmarshal([]byte(sb.String()), &e); err != nil {
		return Embedded{}, fmt.Errorf("decode embedded questionnaire: %w", err)
	}
	return e, nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}
