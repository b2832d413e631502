package model

// FeatureVector is the tagged union of the two feature representations a
// client may submit. The API decode layer resolves which variant an
// incoming payload is; PrepareFeatures never inspects raw JSON.
type FeatureVector interface {
	featureVector()
}

// NamedFeatures maps feature names to raw values. Values stay untyped
// until alignment so that coercion failures surface as validation errors
// rather than decode errors.
type NamedFeatures map[string]any

// PositionalFeatures carries raw values already in training order.
type PositionalFeatures []any

func (NamedFeatures) featureVector()      {}
func (PositionalFeatures) featureVector() {}
