// Package morph extracts content-bearing tokens from Japanese message
// text. It wraps an injected morphological engine and post-processes the
// raw morpheme stream: emoji part-of-speech normalization, run fusion for
// emoji symbols and compound nouns, punctuation cleanup, and a final
// inclusion filter (length, single-kana, part-of-speech, stopwords).
package morph

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kotonoha/talktrend/pkg/talktrend/internalerr"
)

// Part-of-speech classes as tagged by the IPA dictionary.
const (
	POSNoun         = "名詞"
	POSAdjective    = "形容詞"
	POSInterjection = "感動詞"
	POSSymbol       = "記号"
)

// Morpheme is the raw unit produced by an Engine. Features is the
// engine's comma-field list; missing trailing fields read as "".
type Morpheme struct {
	Surface  string
	Features []string
}

// Engine produces an ordered morpheme stream for a text.
type Engine interface {
	Analyze(text string) ([]Morpheme, error)
}

// Token is a morpheme, or a fused run of morphemes, that survived the
// pipeline. Lemma is the aggregation key; it deliberately equals the
// surface form so that counts reflect what was actually typed and the
// dictionary cannot rewrite short strings into unrelated canonical
// spellings.
type Token struct {
	Surface string
	Lemma   string
	POS     string
	Detail1 string
	Detail2 string
	Detail3 string
}

// Target classes for extraction. Symbols are handled separately: only
// emoji-bearing symbols pass.
var targetPOS = map[string]struct{}{
	POSNoun:         {},
	POSAdjective:    {},
	POSInterjection: {},
}

// Noun detail-1 subclasses excluded from extraction.
var excludedNounDetails = map[string]struct{}{
	"非自立": {},
	"代名詞": {},
	"数":   {},
}

// Adjective detail-1 subclasses excluded from extraction.
var excludedAdjDetails = map[string]struct{}{
	"非自立": {},
	"接尾":  {},
}

// Noun detail-1 subclasses eligible for compound fusion.
var combinableNounDetails = map[string]struct{}{
	"一般":     {},
	"固有名詞":   {},
	"サ変接続":   {},
	"形容動詞語幹": {},
}

// Noun detail-1 subclasses that always break a compound run.
var nonCombinableNounDetails = map[string]struct{}{
	"非自立": {},
	"代名詞": {},
	"数":   {},
	"接尾":  {},
}

// Config controls the analyzer's inclusion filter.
type Config struct {
	// MinLength is the minimum surface length in runes. Zero means 1.
	MinLength int
	// ExcludePOS lists part-of-speech classes rejected outright.
	ExcludePOS []string
	// Stopwords are lemmas rejected by the final filter.
	Stopwords []string
}

// Analyzer runs the tokenization pipeline. It is read-only after
// construction and safe to share across requests.
type Analyzer struct {
	engine     Engine
	minLength  int
	excludePOS map[string]struct{}
	stopwords  map[string]struct{}
}

// NewAnalyzer creates an analyzer around the given engine.
func NewAnalyzer(engine Engine, cfg Config) *Analyzer {
	minLength := cfg.MinLength
	if minLength < 1 {
		minLength = 1
	}
	exclude := make(map[string]struct{}, len(cfg.ExcludePOS))
	for _, p := range cfg.ExcludePOS {
		exclude[p] = struct{}{}
	}
	stops := make(map[string]struct{}, len(cfg.Stopwords))
	for _, w := range cfg.Stopwords {
		stops[w] = struct{}{}
	}
	return &Analyzer{
		engine:     engine,
		minLength:  minLength,
		excludePOS: exclude,
		stopwords:  stops,
	}
}

// Analyze tokenizes one message text. Empty or whitespace-only input
// yields an empty result. Engine failures are reported as
// internalerr.ErrTokenization.
func (a *Analyzer) Analyze(text string) ([]Token, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	morphemes, err := a.engine.Analyze(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrTokenization, err)
	}

	tokens := make([]Token, 0, len(morphemes))
	for _, m := range morphemes {
		if m.Surface == "" {
			continue
		}
		tokens = append(tokens, newToken(m))
	}

	// Fuse emoji runs before removing plain punctuation: whether two
	// emoji were adjacent in the raw stream must be judged with the
	// separators still present ("！😭！😭" stays four tokens, "😭😭"
	// fuses into one).
	tokens = fuseRuns(tokens, POSSymbol, isFusableSymbol)
	tokens = fuseRuns(tokens, POSNoun, isFusableNoun)
	tokens = dropPlainSymbols(tokens)

	var out []Token
	for _, t := range tokens {
		if a.include(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// newToken builds a Token from a raw morpheme with defensive feature
// indexing. Morphemes whose surface contains an emoji are forced into the
// symbol class: the engine alternates between symbol and noun tags for
// emoji, and the tag must be uniform for run fusion to see the run.
func newToken(m Morpheme) Token {
	t := Token{
		Surface: m.Surface,
		Lemma:   m.Surface,
		POS:     feature(m.Features, 0),
		Detail1: feature(m.Features, 1),
		Detail2: feature(m.Features, 2),
		Detail3: feature(m.Features, 3),
	}
	if ContainsEmoji(m.Surface) {
		t.POS = POSSymbol
	}
	return t
}

func feature(features []string, i int) string {
	if i < len(features) {
		return features[i]
	}
	return ""
}

// isFusableSymbol limits symbol fusion to emoji-bearing symbols so that
// punctuation between emoji breaks the run instead of joining it.
func isFusableSymbol(t Token) bool {
	return t.POS == POSSymbol && ContainsEmoji(t.Surface)
}

// isFusableNoun reports whether a noun can participate in compound
// fusion (multi-morpheme titles and names the engine split apart).
func isFusableNoun(t Token) bool {
	if t.POS != POSNoun {
		return false
	}
	if ContainsEmoji(t.Surface) {
		return false
	}
	if _, bad := nonCombinableNounDetails[t.Detail1]; bad {
		return false
	}
	_, ok := combinableNounDetails[t.Detail1]
	return ok
}

// dropPlainSymbols removes symbol tokens without emoji (punctuation),
// keeping fused emoji runs. Runs after fusion so adjacency was already
// judged on the unfiltered stream.
func dropPlainSymbols(tokens []Token) []Token {
	out := tokens[:0]
	for _, t := range tokens {
		if t.POS == POSSymbol && !ContainsEmoji(t.Surface) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// include applies the final per-token filter: length, single-kana,
// part-of-speech, and stopwords.
func (a *Analyzer) include(t Token) bool {
	n := utf8.RuneCountInString(t.Surface)
	if n < a.minLength {
		return false
	}
	if n == 1 && isSingleKana(t.Surface) {
		return false
	}
	if !a.includePOS(t) {
		return false
	}
	if _, stop := a.stopwords[t.Lemma]; stop {
		return false
	}
	return true
}

func (a *Analyzer) includePOS(t Token) bool {
	if _, excluded := a.excludePOS[t.POS]; excluded {
		return false
	}
	if t.POS == POSSymbol {
		return ContainsEmoji(t.Surface)
	}
	if _, ok := targetPOS[t.POS]; !ok {
		return false
	}
	if t.POS == POSNoun {
		if _, bad := excludedNounDetails[t.Detail1]; bad {
			return false
		}
	}
	if t.POS == POSAdjective {
		if _, bad := excludedAdjDetails[t.Detail1]; bad {
			return false
		}
	}
	return true
}
