package ml

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

const (
	wordPrefix   = "w:"
	bigramPrefix = "b:"
	charPrefix   = "c:"
)

// SparseVector holds the non-zero entries of a feature vector, indices ascending.
type SparseVector struct {
	Indices []int
	Values  []float64
}

func (v SparseVector) Len() int { return len(v.Indices) }

// Dot computes v·w for a dense w. Indices outside w are ignored.
func (v SparseVector) Dot(w []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		if idx < len(w) {
			sum += v.Values[i] * w[idx]
		}
	}
	return sum
}

// SquaredNorm returns ||v||².
func (v SparseVector) SquaredNorm() float64 {
	return floats.Dot(v.Values, v.Values)
}

// TextFeaturizer maps text onto a fixed vocabulary of word, bigram and
// character n-gram terms. The vocabulary is frozen once fitted.
type TextFeaturizer struct {
	opts       FeaturizerOptions
	vocabulary map[string]int
	terms      []string
}

// FitFeaturizer builds the vocabulary from texts. Terms are indexed in
// lexicographic order so the same corpus always yields the same layout.
func FitFeaturizer(opts FeaturizerOptions, texts []string) *TextFeaturizer {
	minCount := opts.MinTermCount
	if minCount < 1 {
		minCount = 1
	}

	docFreq := make(map[string]int)
	for _, text := range texts {
		for term := range extractTerms(opts, text) {
			docFreq[term]++
		}
	}

	terms := make([]string, 0, len(docFreq))
	for term, count := range docFreq {
		if count >= minCount {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	for i, term := range terms {
		vocabulary[term] = i
	}

	return &TextFeaturizer{opts: opts, vocabulary: vocabulary, terms: terms}
}

// Size is the dimension of the vectors produced by Transform.
func (f *TextFeaturizer) Size() int { return len(f.terms) }

// Terms returns the vocabulary in index order.
func (f *TextFeaturizer) Terms() []string {
	return append([]string(nil), f.terms...)
}

// Transform converts text into an L2-normalized term count vector.
// Terms outside the vocabulary are dropped; empty text gives an empty vector.
func (f *TextFeaturizer) Transform(text string) SparseVector {
	counts := extractTerms(f.opts, text)
	if len(counts) == 0 {
		return SparseVector{}
	}

	indices := make([]int, 0, len(counts))
	byIndex := make(map[int]float64, len(counts))
	for term, count := range counts {
		idx, ok := f.vocabulary[term]
		if !ok {
			continue
		}
		indices = append(indices, idx)
		byIndex[idx] = count
	}
	if len(indices) == 0 {
		return SparseVector{}
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = byIndex[idx]
	}
	if norm := floats.Norm(values, 2); norm > 0 {
		floats.Scale(1/norm, values)
	}

	return SparseVector{Indices: indices, Values: values}
}

func extractTerms(opts FeaturizerOptions, text string) map[string]float64 {
	tokens := Tokenize(NormalizeText(text))
	counts := make(map[string]float64, len(tokens)*4)

	for i, token := range tokens {
		counts[wordPrefix+token]++
		if opts.WordBigrams && i > 0 {
			counts[bigramPrefix+tokens[i-1]+"|"+token]++
		}
		if opts.CharNgramSize > 0 {
			for _, gram := range charNgrams(token, opts.CharNgramSize) {
				counts[charPrefix+gram]++
			}
		}
	}
	return counts
}

// charNgrams returns the n-grams of the token wrapped in boundary markers.
func charNgrams(token string, n int) []string {
	runes := []rune("<" + token + ">")
	if len(runes) < n {
		return []string{string(runes)}
	}

	grams := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}
