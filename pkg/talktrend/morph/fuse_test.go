package morph

import (
	"strings"
	"testing"
)

func tok(surface, pos, detail1 string) Token {
	return Token{Surface: surface, Lemma: surface, POS: pos, Detail1: detail1}
}

func TestFuseEmojiRun(t *testing.T) {
	tokens := []Token{
		tok("😭", POSSymbol, "一般"),
		tok("😭", POSSymbol, "一般"),
		tok("😭", POSSymbol, "一般"),
	}

	fused := fuseRuns(tokens, POSSymbol, isFusableSymbol)
	if len(fused) != 1 {
		t.Fatalf("Expected 1 fused token, got %d", len(fused))
	}
	if fused[0].Surface != "😭😭😭" {
		t.Errorf("Surface = %q, want 😭😭😭", fused[0].Surface)
	}
	if fused[0].Lemma != "😭😭😭" {
		t.Errorf("Lemma = %q, want concatenated surface", fused[0].Lemma)
	}
	if fused[0].Detail1 != "一般" || fused[0].Detail2 != "*" {
		t.Errorf("Details = %q/%q, want generic", fused[0].Detail1, fused[0].Detail2)
	}
}

func TestFuseSingleTokenUntouched(t *testing.T) {
	tokens := []Token{
		tok("😭", POSSymbol, "一般"),
		tok("映画", POSNoun, "一般"),
	}

	fused := fuseRuns(tokens, POSSymbol, isFusableSymbol)
	if len(fused) != 2 {
		t.Fatalf("Expected 2 tokens, got %d", len(fused))
	}
	if fused[0] != tokens[0] {
		t.Errorf("Run of 1 must pass through unchanged, got %+v", fused[0])
	}
}

func TestFuseAlternatingPunctuationBreaksRun(t *testing.T) {
	// ！😭！😭 — the exclamation marks are symbols without emoji, so
	// the two 😭 were never adjacent and must not fuse. This is why
	// fusion runs before punctuation cleanup.
	tokens := []Token{
		tok("！", POSSymbol, "一般"),
		tok("😭", POSSymbol, "一般"),
		tok("！", POSSymbol, "一般"),
		tok("😭", POSSymbol, "一般"),
	}

	fused := fuseRuns(tokens, POSSymbol, isFusableSymbol)
	if len(fused) != 4 {
		t.Fatalf("Expected 4 tokens (no fusion), got %d: %v", len(fused), fused)
	}
}

func TestFuseCompoundNoun(t *testing.T) {
	tokens := []Token{
		tok("機動", POSNoun, "サ変接続"),
		tok("戦士", POSNoun, "一般"),
		tok("ガンダム", POSNoun, "固有名詞"),
		tok("を", "助詞", "格助詞"),
		tok("見る", "動詞", "自立"),
	}

	fused := fuseRuns(tokens, POSNoun, isFusableNoun)
	if len(fused) != 3 {
		t.Fatalf("Expected 3 tokens, got %d: %v", len(fused), fused)
	}
	if fused[0].Surface != "機動戦士ガンダム" {
		t.Errorf("Fused surface = %q, want 機動戦士ガンダム", fused[0].Surface)
	}
	if fused[0].POS != POSNoun {
		t.Errorf("Fused POS = %q, want noun", fused[0].POS)
	}
}

func TestFuseNumeralBreaksNounRun(t *testing.T) {
	tokens := []Token{
		tok("映画", POSNoun, "一般"),
		tok("三", POSNoun, "数"),
		tok("本", POSNoun, "接尾"),
		tok("アニメ", POSNoun, "一般"),
	}

	fused := fuseRuns(tokens, POSNoun, isFusableNoun)
	if len(fused) != 4 {
		t.Fatalf("Numerals and suffixes must break runs, got %d: %v", len(fused), fused)
	}
}

func TestFuseEmojiNounNotCombined(t *testing.T) {
	// An emoji mis-tagged as a noun belongs to symbol fusion, never to
	// noun fusion.
	tokens := []Token{
		tok("映画", POSNoun, "一般"),
		tok("😭", POSNoun, "一般"),
	}

	fused := fuseRuns(tokens, POSNoun, isFusableNoun)
	if len(fused) != 2 {
		t.Fatalf("Expected 2 tokens, got %d", len(fused))
	}
}

func TestFusePreservesNonTargets(t *testing.T) {
	tokens := []Token{
		tok("映画", POSNoun, "一般"),
		tok("が", "助詞", "格助詞"),
		tok("好き", POSNoun, "形容動詞語幹"),
		tok("すぎ", POSNoun, "接尾"),
	}

	fused := fuseRuns(tokens, POSNoun, isFusableNoun)
	got := make([]string, 0, len(fused))
	for _, f := range fused {
		got = append(got, f.Surface)
	}
	want := []string{"映画", "が", "好き", "すぎ"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Tokens = %v, want %v", got, want)
	}
}

func TestFuseEmptyInput(t *testing.T) {
	if out := fuseRuns(nil, POSNoun, isFusableNoun); len(out) != 0 {
		t.Errorf("Fusing empty input should yield empty output, got %v", out)
	}
}
