// Package model holds the pre-trained logistic regression parameters and
// the inference routine built on top of them. Parameters are loaded once
// from a JSON file produced by the offline training pipeline and are never
// mutated afterwards, so a single Classifier is safe to share across
// concurrent requests.
package model

import (
	"fmt"
	"sort"
	"strconv"
)

// Parameters is the immutable set of trained model weights.
//
// Intercept and Coefficients are index-aligned: one row per class for
// multi-class models, a single row for binary models. FeatureNames defines
// the canonical feature order used at training time and is the single
// source of truth for feature alignment. Metadata is free-form and passed
// through to responses verbatim.
type Parameters struct {
	Intercept    []float64         `json:"intercept"`
	Coefficients [][]float64       `json:"coefficients"`
	Classes      []int             `json:"classes"`
	FeatureNames []string          `json:"feature_names"`
	Metadata     map[string]string `json:"metadata"`
}

var requiredParameterKeys = []string{"classes", "coefficients", "feature_names", "intercept"}

// ParametersFromDocument builds Parameters from a deserialized JSON
// document. Every missing required key is reported in one error, sorted
// for determinism. Numeric leaves are coerced to float64, class labels to
// int and feature names to string; a leaf that cannot be coerced yields a
// LoadError. Shape invariants (row lengths, unique names) are the training
// pipeline's responsibility and are not re-checked here.
func ParametersFromDocument(doc map[string]any) (Parameters, error) {
	var missing []string
	for _, key := range requiredParameterKeys {
		if _, ok := doc[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Parameters{}, loadErrorf("missing keys in model parameters: %v", missing)
	}

	intercept, err := floatSlice(doc["intercept"])
	if err != nil {
		return Parameters{}, wrapLoadError("invalid intercept", err)
	}

	rows, err := anySlice(doc["coefficients"])
	if err != nil {
		return Parameters{}, wrapLoadError("invalid coefficients", err)
	}
	coefficients := make([][]float64, len(rows))
	for i, row := range rows {
		coefficients[i], err = floatSlice(row)
		if err != nil {
			return Parameters{}, wrapLoadError(fmt.Sprintf("invalid coefficients row %d", i), err)
		}
	}

	classes, err := intSlice(doc["classes"])
	if err != nil {
		return Parameters{}, wrapLoadError("invalid classes", err)
	}

	names, err := stringSlice(doc["feature_names"])
	if err != nil {
		return Parameters{}, wrapLoadError("invalid feature_names", err)
	}

	metadata := map[string]string{}
	if raw, ok := doc["metadata"]; ok && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			return Parameters{}, loadErrorf("metadata must be an object, got %T", raw)
		}
		for k, v := range m {
			metadata[k] = fmt.Sprint(v)
		}
	}

	return Parameters{
		Intercept:    intercept,
		Coefficients: coefficients,
		Classes:      classes,
		FeatureNames: names,
		Metadata:     metadata,
	}, nil
}

func anySlice(v any) ([]any, error) {
	s, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array, got %T", v)
	}
	return s, nil
}

func floatSlice(v any) ([]float64, error) {
	raw, err := anySlice(v)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for i, item := range raw {
		out[i], err = toFloat(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return out, nil
}

func intSlice(v any) ([]int, error) {
	raw, err := anySlice(v)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(raw))
	for i, item := range raw {
		f, err := toFloat(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = int(f)
	}
	return out, nil
}

func stringSlice(v any) ([]string, error) {
	raw, err := anySlice(v)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(raw))
	for i, item := range raw {
		out[i] = fmt.Sprint(item)
	}
	return out, nil
}

// toFloat coerces the value forms JSON decoding can produce for a numeric
// leaf, including numeric strings emitted by some training exporters.
func toFloat(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", val)
		}
		return f, nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("value of type %T is not numeric", v)
	}
}
