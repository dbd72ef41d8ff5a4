package chunker

import (
	"strings"
	"unicode"
)

// Token is a single token with its byte span in the source text. Spans let
// the chunker cut windows out of the original text without losing
// formatting.
type Token struct {
	// Term is the normalised token text.
	Term string

	// Start is the byte offset of the token in the source text.
	Start int

	// End is the byte offset just past the token.
	End int
}

// accentFold maps common accented vowels to their ASCII base so that
// queries match regardless of diacritics.
var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ä': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'ö': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ñ': 'n',
}

// Normalize lowercases text and folds accented vowels to ASCII.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Tokenize splits text on whitespace and punctuation boundaries and returns
// the tokens with their byte spans. Tokenization is deterministic: the same
// input always yields the same tokens and spans.
func Tokenize(text string) []Token {
	var tokens []Token
	start := -1

	flush := func(end int) {
		if start < 0 {
			return
		}
		tokens = append(tokens, Token{
			Term:  Normalize(text[start:end]),
			Start: start,
			End:   end,
		})
		start = -1
	}

	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(text))

	return tokens
}

// Terms returns just the normalised token terms of text. Queries and
// ingestion share this so that scoring sees identical vocabularies.
func Terms(text string) []string {
	tokens := Tokenize(text)
	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		terms[i] = tok.Term
	}
	return terms
}
