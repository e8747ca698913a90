// Package health runs a small pre-trained classifier over the current
// pollution and weather readings and turns high-confidence risk classes into
// advisory messages.
package health

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// The model maps (pm2.5, temperature, humidity) to three risk classes.
const (
	inputSize  = 3
	outputSize = 3

	// ClassSafe through ClassDanger index the model output.
	ClassSafe    = 0
	ClassCaution = 1
	ClassDanger  = 2

	// advisoryThreshold is the minimum probability before a non-safe class
	// produces an advisory.
	advisoryThreshold = 0.70
)

var advisories = map[int]string{
	ClassCaution: "Caution: current air conditions may trigger mild symptoms.",
	ClassDanger:  "DANGER: high-risk air conditions. Reduce outdoor activity.",
}

// Model holds the classifier weights: a linear layer followed by softmax.
type Model struct {
	Weights [outputSize][inputSize]float64 `json:"weights"`
	Bias    [outputSize]float64            `json:"bias"`
}

// defaultModel is used when no model file is configured. The weights favour
// the caution/danger classes as PM2.5 rises and penalize them in mild,
// moderately-humid conditions.
var defaultModel = Model{
	Weights: [outputSize][inputSize]float64{
		{-0.12, 0.02, 0.01},
		{0.06, -0.01, 0.005},
		{0.11, 0.015, 0.008},
	},
	Bias: [outputSize]float64{4.0, -1.0, -6.0},
}

type Predictor struct {
	model Model
}

// NewPredictor loads the model from path, or falls back to the built-in
// weights when path is empty.
func NewPredictor(path string) (*Predictor, error) {
	if path == "" {
		return &Predictor{model: defaultModel}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %w", path, err)
	}
	return &Predictor{model: m}, nil
}

// NewPredictorWithModel builds a predictor around explicit weights.
func NewPredictorWithModel(m Model) *Predictor {
	return &Predictor{model: m}
}

// Predict returns the most probable risk class and its probability for the
// given readings.
func (p *Predictor) Predict(pm25, tempC, humidityPct float64) (class int, probability float64) {
	input := [inputSize]float64{pm25, tempC, humidityPct}

	var logits [outputSize]float64
	for i := 0; i < outputSize; i++ {
		sum := p.model.Bias[i]
		for j := 0; j < inputSize; j++ {
			sum += p.model.Weights[i][j] * input[j]
		}
		logits[i] = sum
	}

	probs := softmax(logits)

	class = 0
	for i, pr := range probs {
		if pr > probs[class] {
			class = i
		}
	}
	return class, probs[class]
}

// Advise returns an advisory message, or "" when the prediction is safe or
// not confident enough.
func (p *Predictor) Advise(pm25, tempC, humidityPct float64) string {
	class, probability := p.Predict(pm25, tempC, humidityPct)
	if class == ClassSafe || probability <= advisoryThreshold {
		return ""
	}
	return advisories[class]
}

func softmax(logits [outputSize]float64) [outputSize]float64 {
	max := logits[0]
	for _, l := range logits[1:] {
		if l > max {
			max = l
		}
	}

	var sum float64
	var out [outputSize]float64
	for i, l := range logits {
		out[i] = math.Exp(l - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
