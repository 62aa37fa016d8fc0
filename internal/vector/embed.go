package vector

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultDimensions is the width of hashed embeddings.
const DefaultDimensions = 512

// tokenize lowercases text and splits it into terms. A run of letters or
// digits is one term. Han characters carry no spaces, so each one is a
// term and every adjacent pair is a term as well.
func tokenize(text string) []string {
	var (
		terms   []string
		word    []rune
		prevHan rune
	)

	flush := func() {
		if len(word) > 0 {
			terms = append(terms, string(word))
			word = word[:0]
		}
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()

			terms = append(terms, string(r))
			if prevHan != 0 {
				terms = append(terms, string([]rune{prevHan, r}))
			}

			prevHan = r

			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word = append(word, r)
		default:
			flush()
		}

		prevHan = 0
	}

	flush()

	return terms
}

// termFrequencies returns the sublinear term frequency 1+ln(count) of
// every distinct term.
func termFrequencies(terms []string) map[string]float64 {
	counts := make(map[string]int, len(terms))
	for _, t := range terms {
		counts[t]++
	}

	tf := make(map[string]float64, len(counts))
	for t, n := range counts {
		tf[t] = 1 + math.Log(float64(n))
	}

	return tf
}

func bucket(term string, dims int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(term))

	return int(h.Sum32() % uint32(dims))
}

// embed projects weighted terms onto a unit vector of dims buckets.
func embed(tf map[string]float64, idf func(string) float64, dims int) []float64 {
	vec := make([]float64, dims)

	for term, freq := range tf {
		vec[bucket(term, dims)] += freq * idf(term)
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}

	if norm == 0 {
		return vec
	}

	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}

	return vec
}

// dot is the cosine similarity of two unit vectors.
func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}

	return sum
}
