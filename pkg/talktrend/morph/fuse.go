package morph

import "strings"

// fuseRuns merges every maximal run of >=2 consecutive eligible tokens
// into a single token tagged with pos and generic detail fields. Runs of
// exactly one token are left untouched. The scan is a pure function over
// its input; eligibility must be judged on the original adjacency, so
// fusion runs before any filtering that could remove separators.
func fuseRuns(tokens []Token, pos string, eligible func(Token) bool) []Token {
	if len(tokens) == 0 {
		return nil
	}

	out := make([]Token, 0, len(tokens))
	i := 0
	for i < len(tokens) {
		if !eligible(tokens[i]) {
			out = append(out, tokens[i])
			i++
			continue
		}

		j := i + 1
		for j < len(tokens) && eligible(tokens[j]) {
			j++
		}

		if j-i == 1 {
			out = append(out, tokens[i])
			i = j
			continue
		}

		var b strings.Builder
		for _, t := range tokens[i:j] {
			b.WriteString(t.Surface)
		}
		surface := b.String()
		out = append(out, Token{
			Surface: surface,
			Lemma:   surface,
			POS:     pos,
			Detail1: "一般",
			Detail2: "*",
			Detail3: "*",
		})
		i = j
	}
	return out
}
