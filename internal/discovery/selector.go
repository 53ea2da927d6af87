package discovery

import "strings"

// Weights are the tunable scoring constants. Only their relative order
// is meaningful; the defaults keep previous-selection dominant over
// every other bonus combined.
type Weights struct {
	PreviousSelection float64
	TransportMatch    float64
	Connected         float64
	HistoryMax        float64
	ModelPriorities   map[string]float64
}

func DefaultWeights() Weights {
	return Weights{
		PreviousSelection: 1000,
		TransportMatch:    100,
		Connected:         50,
		HistoryMax:        60,
		ModelPriorities: map[string]float64{
			"zq":  80,
			"zd":  70,
			"zt4": 60,
			"gx":  40,
			"gk":  40,
		},
	}
}

// ScoredDevice pairs a candidate with its selection score.
type ScoredDevice struct {
	Device Device
	Score  float64
}

// Selection is the outcome of a smart-select pass: the winner (if any)
// and the full ranked list.
type Selection struct {
	Selected bool
	Best     ScoredDevice
	Ranked   []ScoredDevice
}

// Selector scores discovered devices against history and preferences.
// The caller owns the History instance and its lifecycle.
type Selector struct {
	weights Weights
	history History
}

func NewSelector(weights Weights, history History) *Selector {
	if history == nil {
		history = NewMemoryHistory()
	}
	return &Selector{weights: weights, history: history}
}

// Select picks the highest-scoring device. Ties keep input order; an
// empty candidate list yields Selected=false with no error.
func (s *Selector) Select(devices []Device, previous *Device, preferred Kind) Selection {
	if len(devices) == 0 {
		return Selection{}
	}
	ranked := make([]ScoredDevice, 0, len(devices))
	for _, d := range devices {
		ranked = append(ranked, ScoredDevice{Device: d, Score: s.Score(d, previous, preferred)})
	}
	best := ranked[0]
	for _, sd := range ranked[1:] {
		if sd.Score > best.Score {
			best = sd
		}
	}
	return Selection{Selected: true, Best: best, Ranked: ranked}
}

// Score computes one device's selection score. A previous-selection match
// is dominant and short-circuits the remaining bonuses.
func (s *Selector) Score(d Device, previous *Device, preferred Kind) float64 {
	if previous != nil && SameDevice(d, *previous) {
		return s.weights.PreviousSelection
	}
	score := 0.0
	if preferred != "" && d.Kind == preferred {
		score += s.weights.TransportMatch
	}
	score += s.modelPriority(d)
	if d.State == StateConnected {
		score += s.weights.Connected
	}
	score += s.historyBonus(d.Address)
	return score
}

// RecordSuccess feeds one successful connection back into the history,
// influencing all future selections for the process's lifetime.
func (s *Selector) RecordSuccess(address string) {
	s.history.RecordSuccess(address)
}

func (s *Selector) modelPriority(d Device) float64 {
	model := strings.ToLower(strings.TrimSpace(d.Model))
	if model == "" {
		model = strings.ToLower(strings.TrimSpace(d.Name))
	}
	if model == "" || strings.Contains(model, "generic") || strings.Contains(model, "unknown") {
		return 0
	}
	bestLen := 0
	priority := 0.0
	for prefix, p := range s.weights.ModelPriorities {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			bestLen = len(prefix)
			priority = p
		}
	}
	return priority
}

// historyBonus grows with prior successes but with diminishing returns,
// approaching HistoryMax asymptotically.
func (s *Selector) historyBonus(address string) float64 {
	count := s.history.Successes(address)
	if count <= 0 {
		return 0
	}
	return s.weights.HistoryMax * float64(count) / float64(count+2)
}
