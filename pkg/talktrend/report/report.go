// Package report shapes aggregated counts into ranked trending reports:
// period filtering, top-N selection with a stable count-only sort, and
// optional per-author sub-rankings.
package report

import (
	"crypto/rand"
	"fmt"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kotonoha/talktrend/pkg/talktrend/count"
	"github.com/kotonoha/talktrend/pkg/talktrend/internalerr"
	"github.com/kotonoha/talktrend/pkg/talktrend/parse"
)

// SampleAppearances caps the appearance list shown per entry in
// per-author sub-rankings.
const SampleAppearances = 5

// Period is the inclusive date range a report covers.
type Period struct {
	Start time.Time
	End   time.Time
}

// AuthorWords is one author's word ranking. Each entry's Count is the
// author's own count and Appearances holds only that author's messages.
type AuthorWords struct {
	Author string
	Words  []count.WordCount
}

// AuthorMessages is one author's message ranking.
type AuthorMessages struct {
	Author   string
	Messages []count.MessageCount
}

// Report is the analysis result for one upload. Built fresh per request;
// nothing in it is shared mutable state.
type Report struct {
	ID             string
	GeneratedAt    time.Time
	Period         Period
	TotalMessages  int
	TotalAuthors   int
	TopWords       []count.WordCount
	TopMessages    []count.MessageCount
	AuthorWords    []AuthorWords
	AuthorMessages []AuthorMessages
}

// Options controls report shaping.
type Options struct {
	TopN            int
	MinWordCount    int // entries below the floor are dropped before ranking
	MinMessageCount int
	PerAuthor       bool
}

// Builder assembles reports. Safe for reuse; the ULID entropy source is
// monotonic within one builder.
type Builder struct {
	entropy *ulid.MonotonicEntropy
}

// NewBuilder creates a report builder.
func NewBuilder() *Builder {
	return &Builder{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// FilterPeriod keeps messages whose timestamps fall inside the inclusive
// bounds. A zero bound is open. Both bounds set with start after end is
// internalerr.ErrInvalidInput.
func FilterPeriod(messages []parse.Message, start, end time.Time) ([]parse.Message, error) {
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return nil, fmt.Errorf("%w: period start %s after end %s",
			internalerr.ErrInvalidInput, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	var out []parse.Message
	for _, m := range messages {
		if !start.IsZero() && m.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && m.Timestamp.After(end) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Build assembles a report from aggregated counts. messages must be the
// same (period-filtered) set the counts were built from.
func (b *Builder) Build(messages []parse.Message, words []count.WordCount, msgs []count.MessageCount, opts Options) (*Report, error) {
	if opts.TopN < 1 {
		return nil, fmt.Errorf("%w: top N must be at least 1, got %d",
			internalerr.ErrInvalidInput, opts.TopN)
	}
	if opts.MinWordCount < 0 || opts.MinMessageCount < 0 {
		return nil, fmt.Errorf("%w: negative minimum-count floor",
			internalerr.ErrInvalidInput)
	}
	if len(messages) == 0 {
		return b.Empty(), nil
	}

	r := &Report{
		ID:            b.newID(),
		GeneratedAt:   time.Now(),
		Period:        periodOf(messages),
		TotalMessages: len(messages),
		TotalAuthors:  countAuthors(messages),
		TopWords:      topWords(words, opts.TopN, opts.MinWordCount),
		TopMessages:   topMessages(msgs, opts.TopN, opts.MinMessageCount),
	}
	if opts.PerAuthor {
		r.AuthorWords = authorWordRankings(words, opts.TopN)
		r.AuthorMessages = authorMessageRankings(msgs, opts.TopN)
	}
	return r, nil
}

// Empty returns a well-formed all-zero report with today's date as both
// period bounds. Used when parsing or period filtering leaves nothing.
func (b *Builder) Empty() *Report {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return &Report{
		ID:          b.newID(),
		GeneratedAt: now,
		Period:      Period{Start: today, End: today},
	}
}

func (b *Builder) newID() string {
	return ulid.MustNew(ulid.Now(), b.entropy).String()
}

func periodOf(messages []parse.Message) Period {
	start, end := messages[0].Timestamp, messages[0].Timestamp
	for _, m := range messages[1:] {
		if m.Timestamp.Before(start) {
			start = m.Timestamp
		}
		if m.Timestamp.After(end) {
			end = m.Timestamp
		}
	}
	return Period{Start: start, End: end}
}

func countAuthors(messages []parse.Message) int {
	seen := make(map[string]struct{})
	for _, m := range messages {
		seen[m.Author] = struct{}{}
	}
	return len(seen)
}

// topWords ranks by count descending. The sort is stable and keyed on
// count only, so ties keep their first-seen order; there is no secondary
// alphabetic key.
func topWords(words []count.WordCount, topN, floor int) []count.WordCount {
	ranked := make([]count.WordCount, 0, len(words))
	for _, w := range words {
		if floor > 0 && w.Count < floor {
			continue
		}
		ranked = append(ranked, w)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func topMessages(msgs []count.MessageCount, topN, floor int) []count.MessageCount {
	ranked := make([]count.MessageCount, 0, len(msgs))
	for _, m := range msgs {
		if floor > 0 && m.TotalCount < floor {
			continue
		}
		ranked = append(ranked, m)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalCount > ranked[j].TotalCount
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// authorOrder derives a deterministic author sequence from appearance
// lists: authors appear in the order their first contribution occurs.
func authorOrder(appearances ...[]parse.Message) []string {
	var order []string
	seen := make(map[string]struct{})
	for _, list := range appearances {
		for _, m := range list {
			if _, ok := seen[m.Author]; ok {
				continue
			}
			seen[m.Author] = struct{}{}
			order = append(order, m.Author)
		}
	}
	return order
}

func authorWordRankings(words []count.WordCount, topN int) []AuthorWords {
	lists := make([][]parse.Message, len(words))
	for i, w := range words {
		lists[i] = w.Appearances
	}

	var out []AuthorWords
	for _, author := range authorOrder(lists...) {
		var entries []count.WordCount
		for _, w := range words {
			n, ok := w.PerAuthor[author]
			if !ok {
				continue
			}
			entries = append(entries, count.WordCount{
				Word:        w.Word,
				Lemma:       w.Lemma,
				POS:         w.POS,
				Count:       n,
				Appearances: authorSample(w.Appearances, author),
			})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Count > entries[j].Count
		})
		if len(entries) > topN {
			entries = entries[:topN]
		}
		out = append(out, AuthorWords{Author: author, Words: entries})
	}
	return out
}

func authorMessageRankings(msgs []count.MessageCount, topN int) []AuthorMessages {
	lists := make([][]parse.Message, len(msgs))
	for i, m := range msgs {
		lists[i] = m.ExactAppearances
	}

	var out []AuthorMessages
	for _, author := range authorOrder(lists...) {
		var entries []count.MessageCount
		for _, m := range msgs {
			n, ok := m.PerAuthor[author]
			if !ok {
				continue
			}
			entries = append(entries, count.MessageCount{
				Text:             m.Text,
				ExactCount:       n,
				TotalCount:       n,
				ExactAppearances: authorSample(m.ExactAppearances, author),
			})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].TotalCount > entries[j].TotalCount
		})
		if len(entries) > topN {
			entries = entries[:topN]
		}
		out = append(out, AuthorMessages{Author: author, Messages: entries})
	}
	return out
}

// authorSample returns up to SampleAppearances of the author's own
// contributions, in appearance order.
func authorSample(appearances []parse.Message, author string) []parse.Message {
	var sample []parse.Message
	for _, m := range appearances {
		if m.Author != author {
			continue
		}
		sample = append(sample, m)
		if len(sample) == SampleAppearances {
			break
		}
	}
	return sample
}
