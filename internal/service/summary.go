package service

import (
	"bytes"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	plainText = bluemonday.StrictPolicy()
	// 块级结束标签后补空格，避免相邻段落的文字粘连
	blockBreaks = strings.NewReplacer(
		"</p>", "</p> ",
		"</li>", "</li> ",
		"</h1>", "</h1> ", "</h2>", "</h2> ", "</h3>", "</h3> ",
		"</h4>", "</h4> ", "</h5>", "</h5> ", "</h6>", "</h6> ",
		"</td>", "</td> ", "</th>", "</th> ",
		"<br />", " ",
	)
)

// summarizeContent flattens markdown into a single plain-text line for listings.
func summarizeContent(markdown string, limit int) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(markdown), &buf); err != nil {
		return ""
	}

	plain := html.UnescapeString(plainText.Sanitize(blockBreaks.Replace(buf.String())))
	plain = strings.Join(strings.Fields(plain), " ")
	if plain == "" {
		return ""
	}

	if limit <= 0 || utf8.RuneCountInString(plain) <= limit {
		return plain
	}

	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

// Summarize exposes summarizeContent with the listing length used by the storefront.
func Summarize(markdown string) string {
	return summarizeContent(markdown, 120)
}
