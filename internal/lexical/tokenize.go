package lexical

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var stopwords = map[string]struct{}{
	"the": {}, "an": {}, "to": {}, "for": {}, "of": {}, "in": {}, "on": {}, "my": {},
	"is": {}, "it": {}, "what": {}, "how": {}, "do": {}, "does": {}, "should": {},
	"can": {}, "and": {}, "or": {}, "with": {}, "about": {}, "me": {}, "this": {},
	"that": {}, "when": {}, "which": {}, "be": {}, "are": {}, "there": {}, "you": {},
	"your": {}, "we": {}, "our": {}, "at": {}, "by": {}, "from": {}, "will": {},
	"need": {}, "know": {}, "tell": {}, "use": {}, "best": {}, "some": {}, "any": {},
}

// tokenize lower-cases text, splits on anything that is not a letter or
// digit, drops stopwords and single characters, and folds common English
// suffixes so "pests" meets "pest" and "planting" meets "plant".
func tokenize(text string) []string {
	text = strings.ToLower(norm.NFKC.String(text))
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, stem(f))
	}
	return tokens
}

func stem(w string) string {
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		w = w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "oes") && len(w) > 4:
		w = w[:len(w)-2]
	case strings.HasSuffix(w, "s") && len(w) > 3 &&
		!strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us") && !strings.HasSuffix(w, "is"):
		w = w[:len(w)-1]
	}
	if strings.HasSuffix(w, "ing") && len(w) >= 7 {
		w = w[:len(w)-3]
	}
	return w
}
