package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// extractHTML walks the parsed document collecting visible text, skipping
// script and style subtrees.
func extractHTML(data []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var out strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch node.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if node.Type == html.TextNode {
			text := strings.TrimSpace(node.Data)
			if text != "" {
				if out.Len() > 0 {
					out.WriteString(" ")
				}
				out.WriteString(text)
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return out.String(), nil
}
