package ml

// Classifier is the opaque supervised model boundary: a feature vector in,
// one probability per trained label out. Labels absent from training are
// structurally impossible to predict.
type Classifier interface {
	// Labels returns the trained label set, in the model's output order.
	Labels() []string

	// PredictProba returns a probability for every trained label,
	// index-aligned with Labels().
	PredictProba(vector []float64) ([]float64, error)

	// Close releases model resources.
	Close() error
}
