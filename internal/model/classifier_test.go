package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binaryClassifier() *Classifier {
	return NewClassifier(Parameters{
		Intercept:    []float64{0.0},
		Coefficients: [][]float64{{1.0, 1.0}},
		Classes:      []int{0, 1},
		FeatureNames: []string{"a", "b"},
		Metadata:     map[string]string{},
	})
}

func TestPrepareFeatures_Positional(t *testing.T) {
	clf := binaryClassifier()

	ordered, err := clf.PrepareFeatures(PositionalFeatures{1.5, -2.5})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2.5}, ordered)
}

func TestPrepareFeatures_PositionalCountMismatch(t *testing.T) {
	clf := binaryClassifier()

	_, err := clf.PrepareFeatures(PositionalFeatures{1.0})
	require.Error(t, err)

	var validation *ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Contains(t, err.Error(), "expected 2, got 1")
}

func TestPrepareFeatures_Named(t *testing.T) {
	clf := binaryClassifier()

	// Ordering follows the trained feature order, not map order, and
	// extra keys are ignored.
	ordered, err := clf.PrepareFeatures(NamedFeatures{
		"b":     2.0,
		"a":     1.0,
		"extra": 99.0,
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 2.0}, ordered)
}

func TestPrepareFeatures_NamedMissing(t *testing.T) {
	clf := NewClassifier(Parameters{
		Intercept:    []float64{0},
		Coefficients: [][]float64{{1, 1, 1}},
		Classes:      []int{0, 1},
		FeatureNames: []string{"c", "a", "b"},
	})

	_, err := clf.PrepareFeatures(NamedFeatures{"a": 1.0})
	require.Error(t, err)

	var validation *ValidationError
	require.True(t, errors.As(err, &validation))
	// Every missing feature is reported, not just the first.
	assert.Contains(t, err.Error(), "b")
	assert.Contains(t, err.Error(), "c")
	assert.NotContains(t, err.Error(), "\"a\"")
}

func TestPrepareFeatures_Coercion(t *testing.T) {
	clf := binaryClassifier()

	ordered, err := clf.PrepareFeatures(PositionalFeatures{"1.5", 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.0}, ordered)

	_, err = clf.PrepareFeatures(PositionalFeatures{"abc", 2.0})
	var validation *ValidationError
	require.True(t, errors.As(err, &validation))

	_, err = clf.PrepareFeatures(NamedFeatures{"a": []any{}, "b": 1.0})
	require.True(t, errors.As(err, &validation))
	assert.Contains(t, err.Error(), `"a"`)
}

func TestPrepareFeatures_NilVector(t *testing.T) {
	clf := binaryClassifier()

	_, err := clf.PrepareFeatures(nil)
	var validation *ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Contains(t, err.Error(), "array or an object")
}

func TestPredict_BinaryDecisionBoundary(t *testing.T) {
	clf := binaryClassifier()

	// Zero features give logit 0, probability exactly 0.5, which lands on
	// the positive class by the >= rule.
	class, probability := clf.Predict([]float64{0, 0})
	assert.Equal(t, 1, class)
	assert.InDelta(t, 0.5, probability, 1e-12)
}

func TestPredict_BinaryNegative(t *testing.T) {
	clf := binaryClassifier()

	// logit = -2, sigmoid(-2) ≈ 0.1192
	class, probability := clf.Predict([]float64{-1, -1})
	assert.Equal(t, 0, class)
	assert.InDelta(t, 0.11920292202211755, probability, 1e-12)
}

func TestPredict_BinaryReportsPositiveProbability(t *testing.T) {
	clf := binaryClassifier()

	// The reported probability is always P(positive), even when the
	// negative class wins.
	class, probability := clf.Predict([]float64{-3, -3})
	assert.Equal(t, 0, class)
	assert.Less(t, probability, 0.5)
	assert.Greater(t, probability, 0.0)
}

func TestPredict_BinaryBounds(t *testing.T) {
	clf := binaryClassifier()

	inputs := [][]float64{
		{0, 0}, {100, 100}, {-100, -100}, {0.5, -0.5}, {1e6, -1e6},
	}
	for _, in := range inputs {
		class, probability := clf.Predict(in)
		assert.GreaterOrEqual(t, probability, 0.0)
		assert.LessOrEqual(t, probability, 1.0)
		assert.Contains(t, []int{0, 1}, class)
		if probability >= 0.5 {
			assert.Equal(t, 1, class)
		} else {
			assert.Equal(t, 0, class)
		}
	}
}

func TestPredict_MultiClass(t *testing.T) {
	clf := NewClassifier(Parameters{
		Intercept: []float64{0.0, 1.0, -1.0},
		Coefficients: [][]float64{
			{1.0, 0.0},
			{0.0, 1.0},
			{-1.0, -1.0},
		},
		Classes:      []int{10, 20, 30},
		FeatureNames: []string{"a", "b"},
	})

	// logits: [2, 1, -3] -> class 10 wins.
	class, probability := clf.Predict([]float64{2, 0})
	assert.Equal(t, 10, class)

	// The winning class's own softmax probability is reported.
	// softmax([2,1,-3])[0] = e^2 / (e^2 + e^1 + e^-3)
	assert.InDelta(t, 0.7251, probability, 1e-4)
}

func TestPredict_MultiClassTieBreak(t *testing.T) {
	clf := NewClassifier(Parameters{
		Intercept:    []float64{1.0, 1.0},
		Coefficients: [][]float64{{0}, {0}},
		Classes:      []int{5, 6},
		FeatureNames: []string{"a"},
	})

	// Identical logits: the first index achieving the maximum wins.
	class, probability := clf.Predict([]float64{0})
	assert.Equal(t, 5, class)
	assert.InDelta(t, 0.5, probability, 1e-12)
}
