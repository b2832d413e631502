package model

import (
	"fmt"
	"math"
	"sort"
)

// Classifier evaluates a pre-trained logistic regression model. It holds
// no mutable state beyond its Parameters and is safe for concurrent use.
type Classifier struct {
	params Parameters
}

func NewClassifier(params Parameters) *Classifier {
	return &Classifier{params: params}
}

// Metadata returns the free-form training metadata verbatim.
func (c *Classifier) Metadata() map[string]string { return c.params.Metadata }

// FeatureNames returns the canonical feature order.
func (c *Classifier) FeatureNames() []string { return c.params.FeatureNames }

// Classes returns the class labels.
func (c *Classifier) Classes() []int { return c.params.Classes }

// PrepareFeatures aligns a client-supplied feature vector with the order
// the model was trained with.
//
// Named features are reordered by FeatureNames; every required name that
// is absent is reported in one error, and extra keys are ignored.
// Positional features must match the trained feature count exactly. Either
// way each value is coerced to float64, and a non-numeric value is a
// validation failure.
func (c *Classifier) PrepareFeatures(features FeatureVector) ([]float64, error) {
	switch f := features.(type) {
	case NamedFeatures:
		var missing []string
		for _, name := range c.params.FeatureNames {
			if _, ok := f[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return nil, validationErrorf("missing features: %v", missing)
		}
		ordered := make([]float64, len(c.params.FeatureNames))
		for i, name := range c.params.FeatureNames {
			v, err := toFloat(f[name])
			if err != nil {
				return nil, validationErrorf("feature %q: %v", name, err)
			}
			ordered[i] = v
		}
		return ordered, nil

	case PositionalFeatures:
		if len(f) != len(c.params.FeatureNames) {
			return nil, validationErrorf("incorrect number of features: expected %d, got %d",
				len(c.params.FeatureNames), len(f))
		}
		ordered := make([]float64, len(f))
		for i, raw := range f {
			v, err := toFloat(raw)
			if err != nil {
				return nil, validationErrorf("feature at index %d: %v", i, err)
			}
			ordered[i] = v
		}
		return ordered, nil

	case nil:
		return nil, validationErrorf("features must be an array or an object")

	default:
		return nil, validationErrorf("features must be an array or an object, got %T", features)
	}
}

// Predict evaluates the model on an aligned feature vector and returns the
// predicted class label with its probability.
//
// With a single logit row the model is binary: the probability is always
// the sigmoid of the logit, i.e. P(positive), regardless of which class
// wins, and the positive class Classes[1] is predicted when it is at least
// 0.5. With multiple rows a softmax is applied and the winning class's own
// probability is returned. The asymmetry between the two conventions
// mirrors the training pipeline's contract and is load-bearing for
// downstream consumers.
func (c *Classifier) Predict(ordered []float64) (int, float64) {
	logits := c.logits(ordered)

	if len(logits) == 1 {
		probability := sigmoid(logits[0])
		idx := 0
		if probability >= 0.5 {
			idx = 1
		}
		return c.params.Classes[idx], probability
	}

	total := 0.0
	exp := make([]float64, len(logits))
	for i, logit := range logits {
		exp[i] = math.Exp(logit)
		total += exp[i]
	}
	best := 0
	for i := 1; i < len(exp); i++ {
		if exp[i] > exp[best] {
			best = i
		}
	}
	return c.params.Classes[best], exp[best] / total
}

// logits accumulates intercept first, then each coefficient term in
// feature order. The summation order is fixed to keep results reproducible
// across implementations within floating point tolerance.
func (c *Classifier) logits(ordered []float64) []float64 {
	logits := make([]float64, len(c.params.Intercept))
	for i, intercept := range c.params.Intercept {
		z := intercept
		for j, coef := range c.params.Coefficients[i] {
			z += coef * ordered[j]
		}
		logits[i] = z
	}
	return logits
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Describe returns a short human-readable summary, used by the model info
// endpoint and startup logging.
func (c *Classifier) Describe() string {
	return fmt.Sprintf("logistic regression: %d feature(s), %d class(es)",
		len(c.params.FeatureNames), len(c.params.Classes))
}
