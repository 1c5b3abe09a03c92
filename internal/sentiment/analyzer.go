package sentiment

import (
	"math"
	"strings"
	"unicode"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
)

const (
	// Normalization constant for the compound score, sum/sqrt(sum^2+alpha).
	normAlpha = 15.0
	// Scalar applied to a valence hit by a preceding negation.
	negationScalar = -0.74
	// Emphasis added per trailing exclamation mark (capped).
	exclamationBoost  = 0.292
	maxExclamations   = 4
	capsEmphasisBoost = 0.733
	// Booster influence decays with distance from the sentiment word.
	boosterDampenTwo   = 0.95
	boosterDampenThree = 0.9
)

// Analyzer scores text and maps the compound score to a label using the
// configured cutoffs.
type Analyzer struct {
	positiveCutoff float64
	negativeCutoff float64
}

// New creates an Analyzer with the given label cutoffs on the compound score.
func New(positiveCutoff, negativeCutoff float64) *Analyzer {
	return &Analyzer{positiveCutoff: positiveCutoff, negativeCutoff: negativeCutoff}
}

// Default returns an Analyzer with the standard +-0.05 cutoffs.
func Default() *Analyzer {
	return New(0.05, -0.05)
}

// Analyze classifies text. It always returns a result: empty or
// whitespace-only text is NEUTRAL with score 0.
func (a *Analyzer) Analyze(text string) domain.SentimentResult {
	score := Compound(text)

	label := domain.SentimentNeutral
	switch {
	case score >= a.positiveCutoff:
		label = domain.SentimentPositive
	case score <= a.negativeCutoff:
		label = domain.SentimentNegative
	}

	return domain.SentimentResult{Label: label, Score: score}
}

// Compound computes the compound polarity score of text in [-1, 1].
func Compound(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	mixedCase := hasMixedCase(tokens)

	var sum float64
	for i, tok := range tokens {
		valence, ok := lexicon[tok.lower]
		if !ok {
			continue
		}

		if mixedCase && tok.allCaps {
			valence += sign(valence) * capsEmphasisBoost
		}

		// Look back up to three tokens for boosters and negations.
		boost := 0.0
		negated := false
		for back := 1; back <= 3 && i-back >= 0; back++ {
			prev := tokens[i-back]
			if b, ok := boosters[prev.lower]; ok {
				switch back {
				case 2:
					b *= boosterDampenTwo
				case 3:
					b *= boosterDampenThree
				}
				boost += b
			}
			if negations[prev.lower] {
				negated = true
			}
		}

		valence += sign(valence) * boost
		if negated {
			valence *= negationScalar
		}

		sum += valence
	}

	if sum != 0 {
		excl := strings.Count(text, "!")
		if excl > maxExclamations {
			excl = maxExclamations
		}
		sum += sign(sum) * float64(excl) * exclamationBoost
	}

	compound := sum / math.Sqrt(sum*sum+normAlpha)
	return math.Max(-1, math.Min(1, compound))
}

type token struct {
	lower   string
	allCaps bool
}

func tokenize(text string) []token {
	fields := strings.Fields(text)
	tokens := make([]token, 0, len(fields))
	for _, f := range fields {
		trimmed := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if trimmed == "" {
			continue
		}
		tokens = append(tokens, token{
			lower:   strings.ToLower(trimmed),
			allCaps: isAllCaps(trimmed),
		})
	}
	return tokens
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter && len(s) > 1
}

// hasMixedCase reports whether caps emphasis is meaningful: an all-caps
// message carries no differential emphasis.
func hasMixedCase(tokens []token) bool {
	caps := 0
	for _, t := range tokens {
		if t.allCaps {
			caps++
		}
	}
	return caps > 0 && caps < len(tokens)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
