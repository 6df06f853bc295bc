package evaluation

import "github.com/abhisek/mockprep/internal/question"

// Default thresholds. Each is a tuning knob, not a contract.
const (
	DefaultMinChars       = 20
	DefaultMinWordsJunior = 30
	DefaultMinWordsMid    = 50
	DefaultMinWordsSenior = 80

	DefaultBonusPerTerm = 10
	DefaultBonusCap     = 15

	DefaultLengthWeight   = 0.6
	DefaultCoverageWeight = 0.4

	DefaultClarityBase         = 75
	DefaultRunOnThreshold      = 25
	DefaultRunOnPenaltyPerWord = 2
	DefaultRunOnPenaltyCap     = 30
	DefaultMarkerBonus         = 5
	DefaultMarkerCap           = 25
	DefaultFillerThreshold     = 0.03
	DefaultFillerScale         = 400
	DefaultFillerPenaltyCap    = 40

	DefaultDeliveryBase     = 50
	DefaultActionVerbBonus  = 12
	DefaultMaxActionVerbs   = 4
	DefaultFirstPersonBonus = 10
	DefaultHedgePenalty     = 12
	DefaultMaxHedges        = 4

	DefaultStrengthMin = 80
	DefaultWeaknessMax = 60

	NeutralScore = 50
)

// Weights are the overall-score weights of the five dimensions.
type Weights struct {
	Relevance         float64
	Completeness      float64
	Clarity           float64
	TechnicalAccuracy float64
	Communication     float64
}

// Of returns the weight of d.
func (w Weights) Of(d Dimension) float64 {
	switch d {
	case Relevance:
		return w.Relevance
	case Completeness:
		return w.Completeness
	case Clarity:
		return w.Clarity
	case TechnicalAccuracy:
		return w.TechnicalAccuracy
	case Communication:
		return w.Communication
	}
	return 0
}

// MinWords is the expected minimum answer length per level.
type MinWords struct {
	Junior int
	Mid    int
	Senior int
}

// For returns the threshold for d. "all" and unknown levels use Mid.
func (m MinWords) For(d question.Difficulty) int {
	switch d {
	case question.DifficultyJunior:
		return m.Junior
	case question.DifficultySenior:
		return m.Senior
	default:
		return m.Mid
	}
}

// Config holds every threshold, weight and word list the heuristics read.
type Config struct {
	MinChars int
	MinWords MinWords

	BonusPerTerm int
	BonusCap     int

	LengthWeight   float64
	CoverageWeight float64

	ClarityBase         int
	RunOnThreshold      int
	RunOnPenaltyPerWord int
	RunOnPenaltyCap     int
	MarkerBonus         int
	MarkerCap           int
	FillerThreshold     float64
	FillerScale         float64
	FillerPenaltyCap    int

	DeliveryBase     int
	ActionVerbBonus  int
	MaxActionVerbs   int
	FirstPersonBonus int
	HedgePenalty     int
	MaxHedges        int

	StrengthMin int
	WeaknessMax int

	Weights Weights

	// Phrase lists. Multi-word entries match whole-word sequences.
	StructureMarkers []string
	Fillers          []string
	ActionVerbs      []string
	Hedges           []string
	FirstPerson      []string
	PositiveWords    []string
	NegativeWords    []string
	StopWords        []string
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		MinChars: DefaultMinChars,
		MinWords: MinWords{Junior: DefaultMinWordsJunior, Mid: DefaultMinWordsMid, Senior: DefaultMinWordsSenior},

		BonusPerTerm: DefaultBonusPerTerm,
		BonusCap:     DefaultBonusCap,

		LengthWeight:   DefaultLengthWeight,
		CoverageWeight: DefaultCoverageWeight,

		ClarityBase:         DefaultClarityBase,
		RunOnThreshold:      DefaultRunOnThreshold,
		RunOnPenaltyPerWord: DefaultRunOnPenaltyPerWord,
		RunOnPenaltyCap:     DefaultRunOnPenaltyCap,
		MarkerBonus:         DefaultMarkerBonus,
		MarkerCap:           DefaultMarkerCap,
		FillerThreshold:     DefaultFillerThreshold,
		FillerScale:         DefaultFillerScale,
		FillerPenaltyCap:    DefaultFillerPenaltyCap,

		DeliveryBase:     DefaultDeliveryBase,
		ActionVerbBonus:  DefaultActionVerbBonus,
		MaxActionVerbs:   DefaultMaxActionVerbs,
		FirstPersonBonus: DefaultFirstPersonBonus,
		HedgePenalty:     DefaultHedgePenalty,
		MaxHedges:        DefaultMaxHedges,

		StrengthMin: DefaultStrengthMin,
		WeaknessMax: DefaultWeaknessMax,

		Weights: Weights{
			Relevance:         0.25,
			Completeness:      0.25,
			Clarity:           0.15,
			TechnicalAccuracy: 0.20,
			Communication:     0.15,
		},

		StructureMarkers: []string{
			"first", "firstly", "second", "secondly", "third", "next", "then",
			"finally", "lastly", "for example", "for instance", "as a result",
			"in summary", "to summarize", "in conclusion", "on the other hand",
			"the trade-off", "the tradeoff",
		},
		Fillers: []string{
			"um", "uh", "erm", "like", "basically", "actually", "literally",
			"just", "really", "you know", "i mean", "so yeah", "whatever",
		},
		ActionVerbs: []string{
			"analyze", "automate", "build", "built", "coordinate", "create",
			"debug", "decide", "define", "deliver", "deploy", "design",
			"fix", "implement", "improve", "increase", "launch", "lead", "led",
			"measure", "mentor", "migrate", "negotiate", "optimize", "organize",
			"own", "plan", "profile", "prototype", "reduce", "refactor",
			"remove", "resolve", "review", "ship", "solve", "test", "add",
			"wrote", "write", "monitor", "document", "escalate", "prioritize",
		},
		Hedges: []string{
			"maybe", "probably", "perhaps", "possibly", "i guess", "i think",
			"i suppose", "not sure", "might", "kind of", "sort of",
			"hopefully", "somehow",
		},
		FirstPerson: []string{"i", "i'm", "i've", "i'd", "my", "me", "we", "our"},
		PositiveWords: []string{
			"success", "successful", "improved", "learned", "achieved", "proud",
			"effective", "solved", "confident", "excellent", "great", "win",
			"benefit", "enjoy", "happy", "grew",
		},
		NegativeWords: []string{
			"fail", "failed", "failure", "problem", "difficult", "bad",
			"frustrated", "mistake", "wrong", "blame", "hate", "terrible",
			"unfortunately", "angry", "worst",
		},
		StopWords: []string{
			"about", "after", "also", "and", "are", "been", "before", "being",
			"between", "both", "could", "describe", "does", "during", "each",
			"explain", "from", "have", "into", "like", "made", "make", "more",
			"most", "other", "over", "should", "some", "such", "tell", "than",
			"that", "their", "them", "then", "there", "these", "they", "this",
			"those", "through", "time", "under", "what", "when", "where",
			"which", "while", "with", "would", "your", "you", "how", "why",
			"the", "for", "was", "did",
		},
	}
}
