// Package talktrend analyzes LINE talk-history exports: it parses the
// raw text into messages, tokenizes each message with a morphological
// engine, aggregates word and message frequencies, and shapes the result
// into a ranked trending report.
package talktrend

import (
	"errors"
	"fmt"
	"time"

	"github.com/kotonoha/talktrend/pkg/talktrend/count"
	"github.com/kotonoha/talktrend/pkg/talktrend/internalerr"
	"github.com/kotonoha/talktrend/pkg/talktrend/morph"
	"github.com/kotonoha/talktrend/pkg/talktrend/parse"
	"github.com/kotonoha/talktrend/pkg/talktrend/report"
)

// Analyzer is the pipeline facade. Construct once and reuse: the
// morphological engine and the stopword set are loaded at construction
// and shared read-only across requests.
type Analyzer struct {
	parser  *parse.Parser
	morph   *morph.Analyzer
	builder *report.Builder
}

// Config wires an Analyzer.
type Config struct {
	// Engine is the injected morphological engine. Required.
	Engine morph.Engine
	// Stopwords are lemmas excluded from token extraction.
	Stopwords []string
	// ExcludePOS lists part-of-speech classes excluded for every request.
	ExcludePOS []string
	// MinTokenLength is the tokenizer's own minimum surface length in
	// runes (distinct from the counting bounds). Zero means 1.
	MinTokenLength int
}

// Options are per-request analysis parameters. Zero values mean "no
// bound" for lengths and period, and "no floor" for minimum counts;
// negative values are rejected.
type Options struct {
	TopN             int
	MinWordLength    int
	MaxWordLength    int
	MinMessageLength int
	MaxMessageLength int
	MinWordCount     int
	MinMessageCount  int
	ExcludePOS       []string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	CountMode        count.Mode
	PerAuthor        bool
}

// New creates an Analyzer from the given configuration.
func New(cfg Config) (*Analyzer, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("%w: nil engine", internalerr.ErrEngineInit)
	}
	return &Analyzer{
		parser: parse.NewParser(),
		morph: morph.NewAnalyzer(cfg.Engine, morph.Config{
			MinLength:  cfg.MinTokenLength,
			ExcludePOS: cfg.ExcludePOS,
			Stopwords:  cfg.Stopwords,
		}),
		builder: report.NewBuilder(),
	}, nil
}

// Analyze runs the full pipeline on one raw export. A parse yielding no
// valid messages, or a period filter emptying the set, produces a
// well-formed empty report rather than an error. Invalid caller
// parameters and tokenization failures are surfaced.
func (a *Analyzer) Analyze(raw string, opts Options) (*report.Report, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	messages, err := a.parser.Parse(raw)
	if err != nil {
		if errors.Is(err, internalerr.ErrNoMessages) {
			return a.builder.Empty(), nil
		}
		return nil, err
	}

	messages, err = report.FilterPeriod(messages, opts.PeriodStart, opts.PeriodEnd)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return a.builder.Empty(), nil
	}

	tokensPerMessage := make([][]morph.Token, len(messages))
	for i, msg := range messages {
		tokens, err := a.morph.Analyze(msg.Text)
		if err != nil {
			// A partial tokenization failure would corrupt the
			// aggregate counts; abort the whole request.
			return nil, err
		}
		tokensPerMessage[i] = excludePOS(tokens, opts.ExcludePOS)
	}

	words, err := count.Words(messages, tokensPerMessage, opts.MinWordLength, opts.MaxWordLength)
	if err != nil {
		return nil, err
	}
	msgs, err := count.Messages(messages, opts.MinMessageLength, opts.MaxMessageLength, opts.CountMode)
	if err != nil {
		return nil, err
	}

	return a.builder.Build(messages, words, msgs, report.Options{
		TopN:            opts.TopN,
		MinWordCount:    opts.MinWordCount,
		MinMessageCount: opts.MinMessageCount,
		PerAuthor:       opts.PerAuthor,
	})
}

func validateOptions(opts Options) error {
	if opts.TopN < 1 {
		return fmt.Errorf("%w: top N must be at least 1, got %d",
			internalerr.ErrInvalidInput, opts.TopN)
	}
	if opts.MinWordCount < 0 || opts.MinMessageCount < 0 {
		return fmt.Errorf("%w: negative minimum-count floor", internalerr.ErrInvalidInput)
	}
	return nil
}

// excludePOS drops tokens whose part-of-speech class is excluded for this
// request. Request-level exclusion composes with the analyzer-level
// exclusion applied inside the tokenizer.
func excludePOS(tokens []morph.Token, exclude []string) []morph.Token {
	if len(exclude) == 0 {
		return tokens
	}
	excluded := make(map[string]struct{}, len(exclude))
	for _, p := range exclude {
		excluded[p] = struct{}{}
	}
	var out []morph.Token
	for _, t := range tokens {
		if _, drop := excluded[t.POS]; drop {
			continue
		}
		out = append(out, t)
	}
	return out
}
