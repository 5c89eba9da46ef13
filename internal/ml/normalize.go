package ml

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/russross/blackfriday/v2"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern          = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]*>`)
)

// RemoveLinks keeps the text of markdown links and drops bare URLs.
func RemoveLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips the resulting markup,
// leaving single-spaced plain text. The renderer keeps per-document state,
// so each call gets its own.
func ConvertMarkdownToText(input string) string {
	input = RemoveLinks(input)
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.UseXHTML,
	})
	output := blackfriday.Run([]byte(input),
		blackfriday.WithNoExtensions(),
		blackfriday.WithRenderer(renderer))

	plain := htmlTagPattern.ReplaceAllString(string(output), " ")
	plain = html.UnescapeString(plain)
	return strings.Join(strings.Fields(plain), " ")
}

// NormalizeText is the text cleanup applied before tokenization.
func NormalizeText(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.ToLower(ConvertMarkdownToText(input))
}

// Tokenize splits normalized text into word tokens. Apostrophes are dropped
// so that "don't" and "dont" share a token.
func Tokenize(normalized string) []string {
	normalized = strings.NewReplacer("'", "", "’", "").Replace(normalized)
	return strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
