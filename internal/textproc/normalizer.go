package textproc

import (
	"strings"
	"unicode"

	"github.com/blevesearch/go-porterstemmer"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// asciiPunctuation mirrors the punctuation set the vectorizer artifacts were
// built with. A token is dropped when it occurs inside this string, which
// for word tokens only matches a lone underscore.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Normalizer turns raw message text into the stemmed token string the
// vectorizer expects. It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	stopWords StopWords
	logger    *zap.Logger
}

// NewNormalizer creates a new Normalizer. A nil stop-word set selects the
// built-in English list.
func NewNormalizer(stopWords StopWords, logger *zap.Logger) *Normalizer {
	if stopWords == nil {
		stopWords = DefaultStopWords()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{
		stopWords: stopWords,
		logger:    logger,
	}
}

// Normalize lowercases, tokenizes, drops stop-words and punctuation, stems
// and rejoins the text. It never fails; empty input yields "".
func (n *Normalizer) Normalize(text string) string {
	// cases.Caser is stateful, so one is built per call
	lowered := cases.Lower(language.Und).String(text)

	tokens := Tokenize(lowered)
	stems := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if n.stopWords.Contains(tok) || strings.Contains(asciiPunctuation, tok) {
			continue
		}
		stems = append(stems, Stem(tok))
	}

	if ce := n.logger.Check(zap.DebugLevel, "Text normalized"); ce != nil {
		ce.Write(
			zap.Int("input_size", len(text)),
			zap.Int("tokens", len(tokens)),
			zap.Int("kept", len(stems)))
	}

	return strings.Join(stems, " ")
}

// Tokenize splits text into maximal runs of word characters: Unicode
// letters, Unicode numbers and underscore. Everything else separates tokens.
func Tokenize(text string) []string {
	var tokens []string
	start := -1
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

// Stem reduces a lowercase token to its Porter stem. This is the original
// Porter algorithm, not Porter2: "money" stems to "monei".
func Stem(token string) string {
	return string(porterstemmer.StemWithoutLowerCasing([]rune(token)))
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
