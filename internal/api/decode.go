package api

import (
	"bytes"
	"encoding/json"

	"riskserve/internal/model"
)

// DecodeFeatures resolves the raw `features` payload into the explicit
// feature union: a JSON object becomes NamedFeatures, a JSON array becomes
// PositionalFeatures. Anything else is a validation failure, so the
// classifier never has to inspect raw JSON itself.
func DecodeFeatures(raw json.RawMessage) (model.FeatureVector, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, model.NewValidationError("features must be an array or an object")
	}

	switch trimmed[0] {
	case '{':
		var named map[string]any
		if err := json.Unmarshal(trimmed, &named); err != nil {
			return nil, model.NewValidationError("invalid features object: " + err.Error())
		}
		return model.NamedFeatures(named), nil
	case '[':
		var positional []any
		if err := json.Unmarshal(trimmed, &positional); err != nil {
			return nil, model.NewValidationError("invalid features array: " + err.Error())
		}
		return model.PositionalFeatures(positional), nil
	default:
		return nil, model.NewValidationError("features must be an array or an object")
	}
}
