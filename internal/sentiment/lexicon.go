package sentiment

// lexicon maps lowercase words to valences on the [-4, 4] scale used by the
// VADER lexicon. This is a curated subset covering the vocabulary typical of
// social messaging feedback; unknown words score zero.
var lexicon = map[string]float64{
	// positive
	"adore":       3.3,
	"amazing":     3.4,
	"appreciate":  2.3,
	"appreciated": 2.1,
	"awesome":     3.1,
	"beautiful":   2.9,
	"best":        3.2,
	"better":      1.9,
	"brilliant":   3.0,
	"cool":        1.3,
	"delicious":   2.7,
	"delighted":   2.9,
	"enjoy":       2.2,
	"enjoyed":     2.3,
	"excellent":   3.2,
	"excited":     2.4,
	"fantastic":   3.3,
	"fast":        1.2,
	"favorite":    2.0,
	"fine":        0.8,
	"friendly":    2.2,
	"fun":         2.3,
	"glad":        2.0,
	"good":        1.9,
	"grateful":    2.5,
	"great":       3.1,
	"happy":       2.7,
	"helpful":     1.8,
	"impressed":   2.2,
	"impressive":  2.3,
	"incredible":  3.0,
	"kind":        2.4,
	"like":        1.5,
	"liked":       1.8,
	"love":        3.2,
	"loved":       2.9,
	"lovely":      2.8,
	"nice":        1.8,
	"perfect":     2.7,
	"pleased":     2.2,
	"recommend":   1.6,
	"recommended": 1.8,
	"satisfied":   1.9,
	"smooth":      1.4,
	"thank":       1.9,
	"thanks":      1.9,
	"thrilled":    2.9,
	"wonderful":   2.7,
	"wow":         2.8,

	// negative
	"angry":          -2.3,
	"annoyed":        -1.8,
	"annoying":       -1.7,
	"awful":          -2.0,
	"bad":            -2.5,
	"broken":         -1.8,
	"cheap":          -0.9,
	"complaint":      -1.5,
	"damaged":        -1.9,
	"disappointed":   -2.2,
	"disappointing":  -2.2,
	"disgusting":     -2.9,
	"dishonest":      -2.2,
	"expensive":      -0.9,
	"fail":           -2.3,
	"failed":         -2.1,
	"fraud":          -2.9,
	"frustrated":     -2.1,
	"frustrating":    -1.9,
	"garbage":        -2.2,
	"hate":           -2.7,
	"hated":          -2.8,
	"horrible":       -2.5,
	"ignored":        -1.4,
	"late":           -1.0,
	"lousy":          -2.1,
	"mediocre":       -0.7,
	"mess":           -1.5,
	"nasty":          -2.5,
	"pathetic":       -2.6,
	"poor":           -2.1,
	"problem":        -1.6,
	"refund":         -0.8,
	"regret":         -2.0,
	"ridiculous":     -1.6,
	"rude":           -2.2,
	"sad":            -2.1,
	"scam":           -2.6,
	"slow":           -1.2,
	"sorry":          -0.3,
	"terrible":       -2.1,
	"trash":          -2.0,
	"ugly":           -2.4,
	"unacceptable":   -2.4,
	"unhappy":        -1.8,
	"unhelpful":      -1.9,
	"unprofessional": -2.3,
	"unreliable":     -1.9,
	"upset":          -1.9,
	"useless":        -1.8,
	"waste":          -1.8,
	"worst":          -3.1,
	"worthless":      -2.7,
	"wrong":          -2.1,
}

// boosters intensify (or dampen, when negative) the valence of the word that
// follows within a three-token window.
var boosters = map[string]float64{
	"absolutely": 0.293,
	"completely": 0.293,
	"extremely":  0.293,
	"incredibly": 0.293,
	"really":     0.293,
	"so":         0.293,
	"super":      0.293,
	"totally":    0.293,
	"truly":      0.293,
	"very":       0.293,
	"almost":     -0.293,
	"barely":     -0.293,
	"hardly":     -0.293,
	"kind of":    -0.293,
	"kinda":      -0.293,
	"slightly":   -0.293,
	"somewhat":   -0.293,
}

// negations flip the valence of a following sentiment word.
var negations = map[string]bool{
	"no":      true,
	"not":     true,
	"never":   true,
	"neither": true,
	"nor":     true,
	"none":    true,
	"nothing": true,
	"without": true,
	"cannot":  true,
	"can't":   true,
	"won't":   true,
	"don't":   true,
	"doesn't": true,
	"didn't":  true,
	"isn't":   true,
	"wasn't":  true,
	"aren't":  true,
	"weren't": true,
	"ain't":   true,
}
