package services

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// englishStopWords is the built-in stop list.
var englishStopWords = []string{
	"a", "about", "above", "after", "again", "against", "all", "almost", "alone", "along",
	"already", "also", "although", "always", "am", "among", "an", "and", "another", "any",
	"anyone", "anything", "anywhere", "are", "around", "as", "at", "be", "became", "because",
	"become", "been", "before", "being", "below", "between", "both", "but", "by", "can",
	"cannot", "could", "did", "do", "does", "doing", "done", "down", "during", "each",
	"either", "else", "enough", "etc", "even", "ever", "every", "few", "for", "from",
	"further", "had", "has", "have", "having", "he", "her", "here", "hers", "herself",
	"him", "himself", "his", "how", "however", "i", "if", "in", "into", "is",
	"it", "its", "itself", "just", "least", "less", "made", "make", "many", "may",
	"me", "might", "more", "most", "much", "must", "my", "myself", "neither", "never",
	"nevertheless", "no", "nobody", "none", "nor", "not", "nothing", "now", "of", "off",
	"often", "on", "once", "one", "only", "onto", "or", "other", "others", "otherwise",
	"our", "ours", "ourselves", "out", "over", "own", "per", "perhaps", "please", "quite",
	"rather", "really", "same", "several", "she", "should", "since", "so", "some", "somehow",
	"someone", "something", "sometimes", "still", "such", "than", "that", "the", "their", "theirs",
	"them", "themselves", "then", "there", "therefore", "these", "they", "this", "those", "though",
	"through", "throughout", "thus", "to", "together", "too", "toward", "towards", "under", "until",
	"up", "upon", "us", "used", "using", "various", "very", "via", "was", "we",
	"well", "were", "what", "whatever", "when", "whenever", "where", "whereas", "whether", "which",
	"while", "who", "whoever", "whole", "whom", "whose", "why", "will", "with", "within",
	"without", "would", "yet", "you", "your", "yours", "yourself", "yourselves",
}

// Preprocessor reduces free text to the tokens worth embedding: lower-cased
// stems with stop words and punctuation removed.
type Preprocessor struct {
	stopWords map[string]struct{}
}

// NewPreprocessor builds a preprocessor over the built-in stop list plus any
// auxiliary stop words.
func NewPreprocessor(auxiliary ...string) *Preprocessor {
	stop := make(map[string]struct{}, len(englishStopWords)+len(auxiliary))
	for _, w := range englishStopWords {
		stop[w] = struct{}{}
	}
	for _, w := range auxiliary {
		stop[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &Preprocessor{stopWords: stop}
}

func (p *Preprocessor) Normalize(text string) string {
	tokens := tokenize(text)
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, stop := p.stopWords[token]; stop {
			continue
		}
		stem := english.Stem(token, false)
		if stem == "" {
			continue
		}
		if _, stop := p.stopWords[stem]; stop {
			continue
		}
		kept = append(kept, stem)
	}
	return strings.Join(kept, " ")
}

// tokenize lower-cases text and splits it into word tokens. Tokens made only
// of punctuation never survive; inner "+", "#" and "." are kept so that
// "c++", "c#" and "node.js" stay whole.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' || r == '\'')
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimRight(f, ".'")
		f = strings.TrimLeft(f, ".'+#")
		f = strings.TrimSuffix(f, "'s")
		if !hasWordRune(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
