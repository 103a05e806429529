package diagnosis

import (
	"sort"

	"verdant/pkg/errors"
)

// Diagnosis is the ranked classifier output for one observation.
type Diagnosis struct {
	TopLabel       string             `json:"top_label"`
	TopProbability float64            `json:"top_probability"`
	Probabilities  map[string]float64 `json:"probabilities"`
}

// Labels returns the distribution's labels in lexicographic order.
func (d *Diagnosis) Labels() []string {
	labels := make([]string, 0, len(d.Probabilities))
	for l := range d.Probabilities {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Rank turns a raw probability vector into a ranked diagnosis. The
// probabilities are renormalized to sum to exactly 1 (absorbing floating
// error from the model runtime), and the top label is the arg-max with
// ties broken toward the lexicographically smallest label so repeated
// calls on identical input always return the identical result.
func Rank(labels []string, probs []float64) (*Diagnosis, error) {
	if len(labels) == 0 {
		return nil, errors.New("diagnosis: no labels")
	}
	if len(labels) != len(probs) {
		return nil, errors.Newf("diagnosis: %d labels but %d probabilities", len(labels), len(probs))
	}

	var sum float64
	for i, p := range probs {
		if p < 0 {
			return nil, errors.Newf("diagnosis: negative probability %g for label %q", p, labels[i])
		}
		sum += p
	}
	if sum <= 0 {
		return nil, errors.New("diagnosis: probabilities sum to zero")
	}

	dist := make(map[string]float64, len(labels))
	topLabel := ""
	topProb := -1.0
	for i, l := range labels {
		p := probs[i] / sum
		dist[l] = p
		if p > topProb || (p == topProb && l < topLabel) {
			topLabel = l
			topProb = p
		}
	}

	return &Diagnosis{
		TopLabel:       topLabel,
		TopProbability: topProb,
		Probabilities:  dist,
	}, nil
}
