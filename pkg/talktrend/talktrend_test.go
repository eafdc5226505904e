package talktrend

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kotonoha/talktrend/pkg/talktrend/count"
	"github.com/kotonoha/talktrend/pkg/talktrend/internalerr"
	"github.com/kotonoha/talktrend/pkg/talktrend/morph"
)

// splitEngine tags every whitespace-separated field as a general noun.
// Good enough to drive the pipeline without a dictionary.
type splitEngine struct{}

func (splitEngine) Analyze(text string) ([]morph.Morpheme, error) {
	var out []morph.Morpheme
	for _, f := range strings.Fields(text) {
		out = append(out, morph.Morpheme{
			Surface:  f,
			Features: []string{morph.POSNoun, "一般", "*", "*", "*", "*", f},
		})
	}
	return out, nil
}

type failingEngine struct{}

func (failingEngine) Analyze(string) ([]morph.Morpheme, error) {
	return nil, errors.New("dictionary unavailable")
}

const logHeader = "[LINE] グループのトーク履歴\n保存日時：2024/01/15 12:00\n"

func sampleLog() string {
	return logHeader + strings.Join([]string{
		"2024/1/1(月)",
		"10:00\tAlice\t映画 見た",
		"10:05\tBob\t映画 いいね",
		"10:10\tAlice\tそれな",
		"2024/1/2(火)",
		"09:00\tBob\tそれな",
		"09:05\tAlice\t映画 アニメ",
	}, "\n") + "\n"
}

func defaultOptions() Options {
	return Options{TopN: 50, CountMode: count.ModeExact}
}

func TestNewRequiresEngine(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, internalerr.ErrEngineInit) {
		t.Errorf("error = %v, want ErrEngineInit", err)
	}
}

func TestAnalyzePipeline(t *testing.T) {
	a, err := New(Config{Engine: splitEngine{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	r, err := a.Analyze(sampleLog(), defaultOptions())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if r.TotalMessages != 5 || r.TotalAuthors != 2 {
		t.Errorf("Totals = %d msgs / %d authors, want 5/2", r.TotalMessages, r.TotalAuthors)
	}
	if r.Period.Start.Day() != 1 || r.Period.End.Day() != 2 {
		t.Errorf("Period = %+v, want Jan 1..2", r.Period)
	}
	if len(r.TopWords) == 0 || r.TopWords[0].Lemma != "映画" {
		t.Fatalf("TopWords = %+v, want 映画 first", r.TopWords)
	}
	if r.TopWords[0].Count != 3 {
		t.Errorf("映画 count = %d, want 3", r.TopWords[0].Count)
	}
	if len(r.TopMessages) == 0 || r.TopMessages[0].Text != "それな" {
		t.Errorf("TopMessages = %+v, want それな first", r.TopMessages)
	}
	if r.ID == "" {
		t.Error("Report needs an ID")
	}
}

func TestAnalyzeEmptyInputYieldsEmptyReport(t *testing.T) {
	a, err := New(Config{Engine: splitEngine{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	r, err := a.Analyze("", defaultOptions())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if r.TotalMessages != 0 || len(r.TopWords) != 0 {
		t.Errorf("Report = %+v, want empty", r)
	}
	if !r.Period.Start.Equal(r.Period.End) {
		t.Errorf("Empty period = %+v, want single day", r.Period)
	}
}

func TestAnalyzePeriodFilterEmptiesReport(t *testing.T) {
	a, err := New(Config{Engine: splitEngine{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	opts := defaultOptions()
	opts.PeriodStart = time.Date(2030, 1, 1, 0, 0, 0, 0, time.Local)

	r, err := a.Analyze(sampleLog(), opts)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if r.TotalMessages != 0 {
		t.Errorf("TotalMessages = %d, want 0 after period filter", r.TotalMessages)
	}
}

func TestAnalyzePeriodFilterApplied(t *testing.T) {
	a, err := New(Config{Engine: splitEngine{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	opts := defaultOptions()
	opts.PeriodStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local)

	r, err := a.Analyze(sampleLog(), opts)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if r.TotalMessages != 2 {
		t.Errorf("TotalMessages = %d, want 2 (day 2 only)", r.TotalMessages)
	}
}

func TestAnalyzeEngineErrorAborts(t *testing.T) {
	a, err := New(Config{Engine: failingEngine{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = a.Analyze(sampleLog(), defaultOptions())
	if !errors.Is(err, internalerr.ErrTokenization) {
		t.Errorf("error = %v, want ErrTokenization", err)
	}
}

func TestAnalyzeInvalidOptions(t *testing.T) {
	a, err := New(Config{Engine: splitEngine{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	bad := []Options{
		{TopN: 0},
		{TopN: 10, MinWordCount: -1},
		{TopN: 10, MinWordLength: -1},
	}
	for _, opts := range bad {
		if _, err := a.Analyze(sampleLog(), opts); !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("opts %+v: error = %v, want ErrInvalidInput", opts, err)
		}
	}
}

func TestAnalyzeRequestExcludePOS(t *testing.T) {
	a, err := New(Config{Engine: splitEngine{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	opts := defaultOptions()
	opts.ExcludePOS = []string{morph.POSNoun}

	r, err := a.Analyze(sampleLog(), opts)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(r.TopWords) != 0 {
		t.Errorf("TopWords = %+v, want none with nouns excluded", r.TopWords)
	}
	// Message counting is unaffected by token exclusion.
	if len(r.TopMessages) == 0 {
		t.Error("TopMessages must still be populated")
	}
}

func TestAnalyzeStopwordsFromConfig(t *testing.T) {
	a, err := New(Config{Engine: splitEngine{}, Stopwords: []string{"映画"}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	r, err := a.Analyze(sampleLog(), defaultOptions())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	for _, w := range r.TopWords {
		if w.Lemma == "映画" {
			t.Errorf("Stopword leaked into ranking: %+v", w)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a, err := New(Config{Engine: splitEngine{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	opts := defaultOptions()
	opts.PerAuthor = true

	first, err := a.Analyze(sampleLog(), opts)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	second, err := a.Analyze(sampleLog(), opts)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(first.TopWords) != len(second.TopWords) {
		t.Fatal("Rankings differ between runs")
	}
	for i := range first.TopWords {
		if first.TopWords[i].Lemma != second.TopWords[i].Lemma ||
			first.TopWords[i].Count != second.TopWords[i].Count {
			t.Errorf("Word rank %d differs: %+v vs %+v",
				i, first.TopWords[i], second.TopWords[i])
		}
	}
	for i := range first.AuthorWords {
		if first.AuthorWords[i].Author != second.AuthorWords[i].Author {
			t.Errorf("Author order differs at %d: %q vs %q",
				i, first.AuthorWords[i].Author, second.AuthorWords[i].Author)
		}
	}
}
