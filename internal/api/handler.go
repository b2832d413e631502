// Package api translates invocation envelopes into classifier calls and
// formats the response envelope. The handler itself is a pure per-request
// transformation; the HTTP and WebSocket surfaces in server.go adapt their
// transports onto it.
package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"riskserve/internal/model"
)

// Event is the inbound invocation envelope. Body is either a JSON object
// or a JSON string containing the textual encoding of one.
type Event struct {
	Body json.RawMessage `json:"body"`
}

// Response is the outbound envelope.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers"`
}

// PredictionResult is the success response body.
type PredictionResult struct {
	Prediction    int               `json:"prediction"`
	Probability   float64           `json:"probability"`
	ModelMetadata map[string]string `json:"model_metadata"`
}

type errorBody struct {
	Error string `json:"error"`
}

// ClassifierSource supplies the shared classifier instance. The concrete
// implementation loads the parameter file lazily, once per process.
type ClassifierSource interface {
	Classifier() (*model.Classifier, error)
}

// MetricsInterface defines the metrics methods the handler needs.
type MetricsInterface interface {
	PredictionsInc()
	ValidationFailuresInc()
	ModelFailuresInc()
	PredictLatencyObserve(float64)
	ProbabilityObserve(float64)
}

// PredictionRecorder persists successful predictions for later audit.
type PredictionRecorder interface {
	RecordPrediction(features []float64, class int, probability float64)
}

// Handler turns one Event into one Response. It carries no per-request
// state and is safe for concurrent use.
type Handler struct {
	source   ClassifierSource
	metrics  MetricsInterface
	recorder PredictionRecorder
}

func NewHandler(source ClassifierSource, metrics MetricsInterface) *Handler {
	return &Handler{source: source, metrics: metrics}
}

// SetRecorder enables prediction auditing. A nil handler-level recorder
// means predictions are not persisted, which is the default deployment.
func (h *Handler) SetRecorder(r PredictionRecorder) { h.recorder = r }

// Invoke runs the full request pipeline: extract body, parse, extract
// features, align, predict, serialize. All validation happens before
// prediction; no partial result is ever returned.
func (h *Handler) Invoke(event Event) Response {
	start := time.Now()
	defer func() {
		if h.metrics != nil {
			h.metrics.PredictLatencyObserve(time.Since(start).Seconds())
		}
	}()

	result, err := h.predict(event)
	if err != nil {
		return h.errorResponse(err)
	}

	if h.metrics != nil {
		h.metrics.PredictionsInc()
		h.metrics.ProbabilityObserve(result.Probability)
	}

	return jsonResponse(statusOK, result)
}

func (h *Handler) predict(event Event) (*PredictionResult, error) {
	body, err := extractBody(event)
	if err != nil {
		return nil, err
	}

	rawFeatures, ok := body["features"]
	if !ok || isJSONNull(rawFeatures) {
		return nil, model.NewValidationError("missing 'features' in request body")
	}

	features, err := DecodeFeatures(rawFeatures)
	if err != nil {
		return nil, err
	}

	clf, err := h.source.Classifier()
	if err != nil {
		return nil, err
	}

	ordered, err := clf.PrepareFeatures(features)
	if err != nil {
		return nil, err
	}

	class, probability := clf.Predict(ordered)

	if h.recorder != nil {
		h.recorder.RecordPrediction(ordered, class, probability)
	}

	return &PredictionResult{
		Prediction:    class,
		Probability:   probability,
		ModelMetadata: clf.Metadata(),
	}, nil
}

// extractBody unwraps the envelope body into a parsed JSON object. A
// textual body is parsed as a document; an empty string parses as an empty
// object.
func extractBody(event Event) (map[string]json.RawMessage, error) {
	raw := event.Body
	if len(raw) == 0 || isJSONNull(raw) {
		return nil, model.NewValidationError("missing request body")
	}

	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, model.NewValidationError("invalid request body: " + err.Error())
		}
		if text == "" {
			text = "{}"
		}
		raw = json.RawMessage(text)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, model.NewValidationError("invalid request body: " + err.Error())
	}
	return body, nil
}

func (h *Handler) errorResponse(err error) Response {
	var validation *model.ValidationError
	if errors.As(err, &validation) {
		if h.metrics != nil {
			h.metrics.ValidationFailuresInc()
		}
		log.Debug().Err(err).Msg("request rejected")
		return jsonResponse(statusBadRequest, errorBody{Error: err.Error()})
	}

	var load *model.LoadError
	if errors.As(err, &load) {
		if h.metrics != nil {
			h.metrics.ModelFailuresInc()
		}
		log.Error().Err(err).Msg("model unavailable")
		return jsonResponse(statusInternalError, errorBody{Error: "Model loading error: " + err.Error()})
	}

	if h.metrics != nil {
		h.metrics.ModelFailuresInc()
	}
	log.Error().Err(err).Msg("prediction failed")
	return jsonResponse(statusInternalError, errorBody{Error: err.Error()})
}

const (
	statusOK            = 200
	statusBadRequest    = 400
	statusInternalError = 500
)

func jsonResponse(status int, body any) Response {
	data, err := json.Marshal(body)
	if err != nil {
		// Marshalling the fixed response shapes cannot fail in practice.
		data = []byte(`{"error":"response serialization failed"}`)
		status = statusInternalError
	}
	return Response{
		StatusCode: status,
		Body:       string(data),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
