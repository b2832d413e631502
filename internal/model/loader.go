package model

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// Loader reads the parameter file lazily, at most once per process. The
// read is idempotent and side-effect free, so a fresh process simply
// reconstructs the classifier from scratch on first use. Both the
// classifier and the load error are cached: a broken parameter file fails
// every request the same way instead of being re-read per request.
type Loader struct {
	path string
	once sync.Once
	clf  *Classifier
	err  error
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the parameter file location.
func (l *Loader) Path() string { return l.path }

// Classifier returns the shared classifier instance, loading the parameter
// file on first call.
func (l *Loader) Classifier() (*Classifier, error) {
	l.once.Do(func() {
		l.clf, l.err = load(l.path)
		if l.err != nil {
			log.Error().Err(l.err).Str("path", l.path).Msg("model load failed")
			return
		}
		log.Info().Str("path", l.path).Str("model", l.clf.Describe()).Msg("model loaded")
	})
	return l.clf, l.err
}

func load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wrapLoadError("model parameters file not found", err)
		}
		return nil, wrapLoadError("model parameters file not readable", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, wrapLoadError("model parameters file is corrupted", err)
	}

	params, err := ParametersFromDocument(doc)
	if err != nil {
		return nil, err
	}
	return NewClassifier(params), nil
}
