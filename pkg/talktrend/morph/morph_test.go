package morph

import (
	"errors"
	"strings"
	"testing"

	"github.com/kotonoha/talktrend/pkg/talktrend/internalerr"
)

// fakeEngine returns a canned morpheme stream regardless of input.
type fakeEngine struct {
	morphemes []Morpheme
	err       error
}

func (e *fakeEngine) Analyze(text string) ([]Morpheme, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.morphemes, nil
}

func m(surface string, features ...string) Morpheme {
	return Morpheme{Surface: surface, Features: features}
}

func surfaces(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Surface)
	}
	return out
}

func TestAnalyzeEmptyInput(t *testing.T) {
	a := NewAnalyzer(&fakeEngine{}, Config{})

	for _, text := range []string{"", "   ", "\n\t"} {
		tokens, err := a.Analyze(text)
		if err != nil {
			t.Fatalf("Analyze(%q) failed: %v", text, err)
		}
		if len(tokens) != 0 {
			t.Errorf("Analyze(%q) = %v, want empty", text, tokens)
		}
	}
}

func TestAnalyzeEngineError(t *testing.T) {
	a := NewAnalyzer(&fakeEngine{err: errors.New("boom")}, Config{})

	_, err := a.Analyze("text")
	if !errors.Is(err, internalerr.ErrTokenization) {
		t.Errorf("error = %v, want ErrTokenization", err)
	}
}

func TestAnalyzeTargetPOSOnly(t *testing.T) {
	engine := &fakeEngine{morphemes: []Morpheme{
		m("映画", POSNoun, "一般"),
		m("を", "助詞", "格助詞"),
		m("見る", "動詞", "自立"),
		m("楽しい", POSAdjective, "自立"),
		m("わあ", POSInterjection, "*"),
	}}
	a := NewAnalyzer(engine, Config{})

	tokens, err := a.Analyze("dummy")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	got := surfaces(tokens)
	want := []string{"映画", "楽しい", "わあ"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Tokens = %v, want %v", got, want)
	}
}

func TestAnalyzeSingleKanaExcluded(t *testing.T) {
	engine := &fakeEngine{morphemes: []Morpheme{
		m("あ", POSInterjection, "*"), // single hiragana: noise
		m("ア", POSNoun, "一般"),        // single katakana: noise
		m("ｱ", POSNoun, "一般"),        // half-width katakana: noise
		m("草", POSNoun, "一般"),        // single kanji: allowed
		m("w", POSNoun, "一般"),        // single letter: allowed
	}}
	a := NewAnalyzer(engine, Config{MinLength: 1})

	tokens, err := a.Analyze("dummy")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	got := surfaces(tokens)
	want := []string{"草", "w"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Tokens = %v, want %v", got, want)
	}
}

func TestAnalyzeMinLength(t *testing.T) {
	engine := &fakeEngine{morphemes: []Morpheme{
		m("草", POSNoun, "一般"),
		m("映画館", POSNoun, "一般"),
	}}
	a := NewAnalyzer(engine, Config{MinLength: 2})

	tokens, err := a.Analyze("dummy")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Surface != "映画館" {
		t.Errorf("Tokens = %v, want only 映画館", surfaces(tokens))
	}
}

func TestAnalyzeNounDetailExclusions(t *testing.T) {
	engine := &fakeEngine{morphemes: []Morpheme{
		m("これ", POSNoun, "代名詞"),
		m("こと", POSNoun, "非自立"),
		m("三", POSNoun, "数"),
		m("東京", POSNoun, "固有名詞"),
	}}
	a := NewAnalyzer(engine, Config{})

	tokens, err := a.Analyze("dummy")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Surface != "東京" {
		t.Errorf("Tokens = %v, want only 東京", surfaces(tokens))
	}
}

func TestAnalyzeAdjectiveDetailExclusions(t *testing.T) {
	engine := &fakeEngine{morphemes: []Morpheme{
		m("よい", POSAdjective, "非自立"),
		m("っぽい", POSAdjective, "接尾"),
		m("楽しい", POSAdjective, "自立"),
	}}
	a := NewAnalyzer(engine, Config{})

	tokens, err := a.Analyze("dummy")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Surface != "楽しい" {
		t.Errorf("Tokens = %v, want only 楽しい", surfaces(tokens))
	}
}

func TestAnalyzeExcludePOS(t *testing.T) {
	engine := &fakeEngine{morphemes: []Morpheme{
		m("映画", POSNoun, "一般"),
		m("わあ", POSInterjection, "*"),
	}}
	a := NewAnalyzer(engine, Config{ExcludePOS: []string{POSInterjection}})

	tokens, err := a.Analyze("dummy")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Surface != "映画" {
		t.Errorf("Tokens = %v, want only 映画", surfaces(tokens))
	}
}

func TestAnalyzeStopwords(t *testing.T) {
	engine := &fakeEngine{morphemes: []Morpheme{
		m("映画", POSNoun, "一般"),
		m("感じ", POSNoun, "一般"),
	}}
	a := NewAnalyzer(engine, Config{Stopwords: []string{"感じ"}})

	tokens, err := a.Analyze("dummy")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Surface != "映画" {
		t.Errorf("Tokens = %v, want 感じ filtered", surfaces(tokens))
	}
}

func TestAnalyzeEmojiNormalizedToSymbol(t *testing.T) {
	// The engine sometimes tags emoji as nouns; they must still come
	// out as symbols and survive the punctuation cleanup.
	engine := &fakeEngine{morphemes: []Morpheme{
		m("😭", POSNoun, "一般"),
		m("。", POSSymbol, "句点"),
	}}
	a := NewAnalyzer(engine, Config{})

	tokens, err := a.Analyze("dummy")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("Tokens = %v, want 1", surfaces(tokens))
	}
	if tokens[0].Surface != "😭" || tokens[0].POS != POSSymbol {
		t.Errorf("Token = %+v, want emoji retagged as symbol", tokens[0])
	}
}

func TestAnalyzeSurfaceUsedAsLemma(t *testing.T) {
	// The dictionary base form must never replace the typed surface.
	engine := &fakeEngine{morphemes: []Morpheme{
		m("荒かっ", POSAdjective, "自立", "*", "*"),
	}}
	a := NewAnalyzer(engine, Config{})

	tokens, err := a.Analyze("dummy")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Lemma != "荒かっ" {
		t.Errorf("Lemma = %v, want surface form", tokens)
	}
}

func TestAnalyzeMissingFeatureFields(t *testing.T) {
	// Morphemes with short feature lists default missing fields to "".
	engine := &fakeEngine{morphemes: []Morpheme{
		m("映画"), // no features at all
	}}
	a := NewAnalyzer(engine, Config{})

	tokens, err := a.Analyze("dummy")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	// Empty POS is not a target class; the token is filtered, but the
	// pipeline must not panic.
	if len(tokens) != 0 {
		t.Errorf("Tokens = %v, want none", surfaces(tokens))
	}
}
