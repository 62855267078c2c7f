package interview

import (
	"math/rand"
)

// Selector picks the next fallback question. The tag-priority step is fully
// deterministic; only the final pick among untagged remainders is random,
// through an injectable source so tests can fix the outcome.
type Selector struct {
	intn func(n int) int
}

// NewSelector creates a selector backed by the default randomness source.
func NewSelector() *Selector {
	return &Selector{intn: rand.Intn}
}

// NewSelectorWithRand creates a selector with a custom randomness source.
// intn must return a value in [0, n).
func NewSelectorWithRand(intn func(n int) int) *Selector {
	return &Selector{intn: intn}
}

// Next returns the next question given the questions already asked and the
// candidate's latest answer. closing is true when the bank is exhausted and
// the returned text is the terminal closing remark.
func (s *Selector) Next(previousQuestions []string, latestAnswer string) (text string, closing bool) {
	asked := make(map[string]struct{}, len(previousQuestions))
	for _, q := range previousQuestions {
		asked[q] = struct{}{}
	}

	remaining := make([]string, 0, len(questionBank))
	remainingSet := make(map[string]struct{}, len(questionBank))
	for _, q := range questionBank {
		if _, ok := asked[q.Text]; ok {
			continue
		}
		remaining = append(remaining, q.Text)
		remainingSet[q.Text] = struct{}{}
	}

	if len(remaining) == 0 {
		return ClosingRemark, true
	}

	// Tags come back in vocabulary priority order; first remaining match wins.
	for _, tag := range ExtractKeywords(latestAnswer) {
		q, ok := questionForTag(tag)
		if !ok {
			continue
		}
		if _, ok := remainingSet[q]; ok {
			return q, false
		}
	}

	return remaining[s.intn(len(remaining))], false
}
