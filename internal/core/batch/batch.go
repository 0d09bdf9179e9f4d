// Package batch plans embedding requests under the provider's two independent
// limits: a per-item token ceiling and a cumulative per-request token budget.
// Naive batching can silently violate either and get a whole request rejected,
// dropping a material's indexing run.
package batch

// Limits match the embedding provider's documented caps with headroom; the
// estimator is approximate, so items are split 5% under the ceiling.
const (
	DefaultItemTokenLimit     = 8000
	DefaultRequestTokenBudget = 250000

	splitMargin = 0.95
)

// EstimateTokens is a cheap proxy for real tokenization: ceil(chars/4).
// Counted in runes, same as the chunker.
func EstimateTokens(s string) int {
	n := len([]rune(s))
	return (n + 3) / 4
}

// Planner packs chunk texts into request-sized batches. The zero value uses
// the default limits.
type Planner struct {
	ItemTokenLimit     int
	RequestTokenBudget int
}

func (p Planner) limits() (itemLimit, budget int) {
	itemLimit = p.ItemTokenLimit
	if itemLimit <= 0 {
		itemLimit = DefaultItemTokenLimit
	}
	budget = p.RequestTokenBudget
	if budget <= 0 {
		budget = DefaultRequestTokenBudget
	}
	return itemLimit, budget
}

// Plan returns batches whose items each fit the per-item ceiling and whose
// token sums fit the per-request budget. Oversized chunks are split in place;
// global order is preserved and nothing is dropped or duplicated, so ordinal
// positions can be assigned by final emission order with batch boundaries
// transparent to the caller.
func (p Planner) Plan(chunks []string) [][]string {
	itemLimit, budget := p.limits()

	// Normalization pass: split every chunk over the per-item ceiling.
	maxItemChars := marginChars(itemLimit)
	var pieces []string
	for _, c := range chunks {
		if EstimateTokens(c) <= itemLimit {
			pieces = append(pieces, c)
			continue
		}
		pieces = append(pieces, splitRunes(c, maxItemChars)...)
	}

	// Packing pass: greedy fill until the next piece would blow the budget.
	var batches [][]string
	var cur []string
	curTokens := 0
	flush := func() {
		if len(cur) > 0 {
			batches = append(batches, cur)
			cur = nil
			curTokens = 0
		}
	}

	for _, piece := range pieces {
		t := EstimateTokens(piece)
		if t > budget {
			// A single piece over the whole request budget: split it and
			// distribute across fresh batches.
			flush()
			for _, sub := range splitRunes(piece, marginChars(budget)) {
				st := EstimateTokens(sub)
				if curTokens+st > budget {
					flush()
				}
				cur = append(cur, sub)
				curTokens += st
			}
			continue
		}
		if curTokens+t > budget {
			flush()
		}
		cur = append(cur, piece)
		curTokens += t
	}
	flush()
	return batches
}

// marginChars converts a token limit into a character cap 5% under it.
func marginChars(tokenLimit int) int {
	n := int(float64(tokenLimit) * 4 * splitMargin)
	if n < 1 {
		n = 1
	}
	return n
}

// splitRunes cuts s into order-preserving pieces of at most maxChars runes.
func splitRunes(s string, maxChars int) []string {
	runes := []rune(s)
	var out []string
	for start := 0; start < len(runes); start += maxChars {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
