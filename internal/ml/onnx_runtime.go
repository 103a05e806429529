package ml

import (
	onnxruntime "github.com/yalue/onnxruntime_go"

	"verdant/pkg/errors"
)

// ONNXModel wraps an ONNX Runtime session for classifier inference. The
// graph takes one float64 feature vector ("input") and produces the
// predicted class index ("output") plus the per-class probability row
// ("probabilities"); any feature scaling from the training pipeline is
// baked into the exported graph, so callers pass raw encoded features.
type ONNXModel struct {
	session *onnxruntime.DynamicAdvancedSession
	labels  []string
}

// Compile-time check
var _ Classifier = (*ONNXModel)(nil)

// LoadONNXModel loads an ONNX model from file. The label ordering comes
// from the model manifest and must match the training-time class order.
func LoadONNXModel(modelPath string, labels []string) (*ONNXModel, error) {
	// Initialize ONNX runtime environment (only once)
	if err := onnxruntime.InitializeEnvironment(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize ONNX runtime")
	}

	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session options")
	}
	defer options.Destroy()

	session, err := onnxruntime.NewDynamicAdvancedSession(modelPath,
		[]string{"input"}, []string{"output", "probabilities"}, options)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load ONNX model")
	}

	return &ONNXModel{
		session: session,
		labels:  labels,
	}, nil
}

// Labels returns the trained label set in model output order.
func (m *ONNXModel) Labels() []string {
	return m.labels
}

// PredictProba runs inference and returns one probability per label,
// aligned with Labels().
func (m *ONNXModel) PredictProba(vector []float64) ([]float64, error) {
	if m.session == nil {
		return nil, errors.ErrModelUnavailable
	}

	// Input tensor: shape [1, num_features]
	inputShape := onnxruntime.NewShape(1, int64(len(vector)))
	inputTensor, err := onnxruntime.NewTensor(inputShape, vector)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create input tensor")
	}
	defer inputTensor.Destroy()

	// Output 1: predicted class index (int64, shape [1]); the ranked
	// diagnosis recomputes the arg-max itself, but the graph emits it.
	classOutput := make([]int64, 1)
	classTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1), classOutput)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create class output tensor")
	}
	defer classTensor.Destroy()

	// Output 2: probabilities (float64, shape [1, num_classes])
	probOutput := make([]float64, len(m.labels))
	probShape := onnxruntime.NewShape(1, int64(len(m.labels)))
	probTensor, err := onnxruntime.NewTensor(probShape, probOutput)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create probabilities output tensor")
	}
	defer probTensor.Destroy()

	inputs := []onnxruntime.Value{inputTensor}
	outputs := []onnxruntime.Value{classTensor, probTensor}
	if err := m.session.Run(inputs, outputs); err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}

	probs := make([]float64, len(probOutput))
	copy(probs, probOutput)
	return probs, nil
}

// Close cleans up the ONNX session.
func (m *ONNXModel) Close() error {
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	return nil
}
