// Package count aggregates tokens and message texts into frequency
// tables: global totals, per-author totals, and the messages each entry
// appeared in. Message counting supports exact-match grouping and an
// optional partial mode that additionally counts non-overlapping
// substring occurrences inside other messages.
package count

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kotonoha/talktrend/pkg/talktrend/internalerr"
	"github.com/kotonoha/talktrend/pkg/talktrend/morph"
	"github.com/kotonoha/talktrend/pkg/talktrend/parse"
)

// Mode selects the message-counting contract.
type Mode int

const (
	// ModeExact counts exact duplicates only.
	ModeExact Mode = iota
	// ModeExactAndPartial additionally counts non-overlapping substring
	// occurrences of each message inside other messages.
	ModeExactAndPartial
)

// WordCount is the aggregate for one distinct lemma.
type WordCount struct {
	Word        string // display surface from the first occurrence
	Lemma       string
	Count       int
	POS         string
	PerAuthor   map[string]int
	Appearances []parse.Message // first-seen (chronological) order
}

// MessageCount is the aggregate for one distinct message text. In
// ModeExact, PartialCount is zero and TotalCount equals ExactCount.
type MessageCount struct {
	Text               string
	ExactCount         int
	PartialCount       int
	TotalCount         int
	PerAuthor          map[string]int
	ExactAppearances   []parse.Message
	PartialAppearances []parse.Message
}

// Words groups tokens by lemma across all messages. tokensPerMessage is
// parallel to messages. The surface-length bounds (runes, maxLen 0 =
// unbounded) apply per occurrence, before grouping.
func Words(messages []parse.Message, tokensPerMessage [][]morph.Token, minLen, maxLen int) ([]WordCount, error) {
	if len(messages) != len(tokensPerMessage) {
		return nil, fmt.Errorf("%w: %d messages but %d token lists",
			internalerr.ErrInvalidInput, len(messages), len(tokensPerMessage))
	}
	if err := checkBounds(minLen, maxLen); err != nil {
		return nil, err
	}

	groups := make(map[string]*WordCount)
	var order []string

	for i, tokens := range tokensPerMessage {
		msg := messages[i]
		for _, t := range tokens {
			n := utf8.RuneCountInString(t.Surface)
			if n < minLen || (maxLen > 0 && n > maxLen) {
				continue
			}

			wc, ok := groups[t.Lemma]
			if !ok {
				wc = &WordCount{
					Word:      t.Surface,
					Lemma:     t.Lemma,
					POS:       t.POS,
					PerAuthor: make(map[string]int),
				}
				groups[t.Lemma] = wc
				order = append(order, t.Lemma)
			}
			wc.Count++
			wc.PerAuthor[msg.Author]++
			wc.Appearances = append(wc.Appearances, msg)
		}
	}

	out := make([]WordCount, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out, nil
}

// Messages groups messages by exact text. The text-length bounds (runes,
// maxLen 0 = unbounded) select which messages participate. In
// ModeExactAndPartial each distinct text is additionally counted as a
// non-overlapping substring of every other message.
func Messages(messages []parse.Message, minLen, maxLen int, mode Mode) ([]MessageCount, error) {
	if err := checkBounds(minLen, maxLen); err != nil {
		return nil, err
	}

	groups := make(map[string]*MessageCount)
	var order []string

	for _, msg := range messages {
		n := utf8.RuneCountInString(msg.Text)
		if n < minLen || (maxLen > 0 && n > maxLen) {
			continue
		}

		mc, ok := groups[msg.Text]
		if !ok {
			mc = &MessageCount{
				Text:      msg.Text,
				PerAuthor: make(map[string]int),
			}
			groups[msg.Text] = mc
			order = append(order, msg.Text)
		}
		mc.ExactCount++
		mc.PerAuthor[msg.Author]++
		mc.ExactAppearances = append(mc.ExactAppearances, msg)
	}

	if mode == ModeExactAndPartial {
		for _, key := range order {
			mc := groups[key]
			mc.PartialAppearances = partialMatches(mc.Text, messages)
			mc.PartialCount = len(mc.PartialAppearances)
		}
	}

	out := make([]MessageCount, 0, len(order))
	for _, key := range order {
		mc := groups[key]
		mc.TotalCount = mc.ExactCount + mc.PartialCount
		out = append(out, *mc)
	}
	return out, nil
}

func checkBounds(minLen, maxLen int) error {
	if minLen < 0 || maxLen < 0 {
		return fmt.Errorf("%w: negative length bound (min=%d, max=%d)",
			internalerr.ErrInvalidInput, minLen, maxLen)
	}
	if maxLen > 0 && minLen > maxLen {
		return fmt.Errorf("%w: min length %d exceeds max length %d",
			internalerr.ErrInvalidInput, minLen, maxLen)
	}
	return nil
}

// partialMatches finds messages that contain target as a substring,
// excluding exact matches. A message containing target k times
// contributes k entries.
func partialMatches(target string, messages []parse.Message) []parse.Message {
	var matches []parse.Message
	for _, msg := range messages {
		if msg.Text == target {
			continue
		}
		for k := Occurrences(target, msg.Text); k > 0; k-- {
			matches = append(matches, msg)
		}
	}
	return matches
}

// Occurrences counts non-overlapping occurrences of sub in text with a
// greedy left-to-right scan: each match advances past its own end, so
// "AA" occurs once in "AAA" and twice in "AAAA".
func Occurrences(sub, text string) int {
	if sub == "" || text == "" {
		return 0
	}
	count := 0
	for start := 0; ; {
		i := strings.Index(text[start:], sub)
		if i < 0 {
			break
		}
		count++
		start += i + len(sub)
	}
	return count
}
