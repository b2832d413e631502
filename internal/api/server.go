package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// ServerConfig carries the HTTP surface settings.
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StreamMetrics tracks open WebSocket prediction streams.
type StreamMetrics interface {
	StreamOpened()
	StreamClosed()
}

// Server exposes the handler over HTTP and WebSocket.
type Server struct {
	handler  *Handler
	source   ClassifierSource
	server   *http.Server
	upgrader websocket.Upgrader
	streams  StreamMetrics
}

func NewServer(handler *Handler, source ClassifierSource, cfg ServerConfig) *Server {
	s := &Server{
		handler: handler,
		source:  source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("/ws/predict", s.handlePredictStream)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/model/info", s.handleModelInfo)
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting prediction server")
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Mux exposes the route table, used by tests and by callers that want to
// mount the API under their own server.
func (s *Server) Mux() http.Handler { return s.server.Handler }

// SetStreamMetrics enables stream connection tracking.
func (s *Server) SetStreamMetrics(m StreamMetrics) { s.streams = m }

// handlePredict adapts an HTTP request onto the Event envelope: the HTTP
// body is the textual body of the invocation, and the Response envelope
// maps back onto status code, headers and body verbatim.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	var body json.RawMessage
	if len(raw) > 0 {
		body = json.RawMessage(raw)
	}
	resp := s.handler.Invoke(Event{Body: body})
	writeEnvelope(w, resp)
}

// handlePredictStream serves the same contract over a WebSocket: each text
// frame is one request body, each reply frame is the corresponding
// response body. The connection survives validation failures; it closes on
// transport errors only.
func (s *Server) handlePredictStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	if s.streams != nil {
		s.streams.StreamOpened()
		defer s.streams.StreamClosed()
	}

	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("prediction stream opened")

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("prediction stream read failed")
			}
			return
		}

		resp := s.handler.Invoke(Event{Body: json.RawMessage(frame)})
		if err := conn.WriteMessage(websocket.TextMessage, []byte(resp.Body)); err != nil {
			log.Warn().Err(err).Msg("prediction stream write failed")
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if _, err := s.source.Classifier(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{"status": "unavailable", "error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	clf, err := s.source.Classifier()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errorBody{Error: err.Error()})
		return
	}

	info := map[string]any{
		"description":   clf.Describe(),
		"feature_names": clf.FeatureNames(),
		"classes":       clf.Classes(),
		"metadata":      clf.Metadata(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

func writeEnvelope(w http.ResponseWriter, resp Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.WriteString(w, resp.Body); err != nil {
		log.Warn().Err(err).Msg("failed to write response body")
	}
}
