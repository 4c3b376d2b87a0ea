package metrics

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBasePath is the default URL prefix the HTTP facade mounts under.
const DefaultBasePath = "/_app-metrics"

// handlerConfig holds the options collected by HandlerOption.
type handlerConfig struct {
	basePath string
	logger   logrus.FieldLogger
}

// HandlerOption configures NewHTTPHandler.
type HandlerOption func(*handlerConfig)

// WithBasePath overrides the URL prefix the facade mounts under. A trailing
// slash is trimmed; an empty string keeps the default, DefaultBasePath.
func WithBasePath(basePath string) HandlerOption {
	return func(c *handlerConfig) {
		if basePath != "" {
			c.basePath = strings.TrimSuffix(basePath, "/")
		}
	}
}

// WithHandlerLogger overrides the logger used for server-side-only
// diagnostics (internal errors are never leaked to the HTTP response body).
func WithHandlerLogger(logger logrus.FieldLogger) HandlerOption {
	return func(c *handlerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// httpFacade is a thin translation layer over a Registry: dispatch,
// JSON (de)serialization, and status-code mapping only. It holds no
// business logic of its own.
type httpFacade struct {
	registry *Registry
	next     http.Handler
	basePath string
	logger   logrus.FieldLogger
}

// NewHTTPHandler wraps next with operator read/write access to registry,
// mounted under a configurable base path (default DefaultBasePath).
// Requests outside the base path are forwarded to next unchanged.
func NewHTTPHandler(registry *Registry, next http.Handler, opts ...HandlerOption) http.Handler {
	cfg := &handlerConfig{basePath: DefaultBasePath, logger: newNoopLogger()}
	for _, opt := range opts {
		opt(cfg)
	}
	if next == nil {
		next = http.NotFoundHandler()
	}
	return &httpFacade{registry: registry, next: next, basePath: cfg.basePath, logger: cfg.logger}
}

func (f *httpFacade) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if !strings.HasPrefix(req.URL.Path, f.basePath) {
		f.next.ServeHTTP(w, req)
		return
	}

	rest := strings.TrimPrefix(req.URL.Path, f.basePath)
	rest = strings.TrimPrefix(rest, "/")

	if rest == "" {
		f.handleRoot(w, req)
		return
	}
	f.handleName(w, req, rest)
}

// writeJSON encodes body as the response, logging (and converting to a
// generic 500) if encoding itself fails — the one place a facade error is
// truly internal rather than a caller mistake.
func (f *httpFacade) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		f.logger.WithError(err).Error("appmetrics: failed to encode response body")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("{\"error\":\"internal error\"}\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (f *httpFacade) handleRoot(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	f.writeJSON(w, http.StatusOK, f.registry.Names())
}

func (f *httpFacade) handleName(w http.ResponseWriter, req *http.Request, name string) {
	switch req.Method {
	case http.MethodGet:
		f.get(w, name)
	case http.MethodPut:
		f.put(w, req, name)
	case http.MethodPost:
		f.post(w, req, name)
	case http.MethodDelete:
		f.delete(w, name)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *httpFacade) get(w http.ResponseWriter, name string) {
	snapshot, err := f.registry.Get(name)
	if err != nil {
		f.writeError(w, http.StatusNotFound, "not found")
		return
	}
	f.writeJSON(w, http.StatusOK, snapshot)
}

type registerRequest struct {
	Type          string  `json:"type"`
	ReservoirType string  `json:"reservoir_type"`
	Capacity      float64 `json:"capacity"`
	Window        float64 `json:"window"`
	WindowSeconds float64 `json:"window_seconds"`
	Alpha         float64 `json:"alpha"`
	TickInterval  float64 `json:"tick_interval"`
}

func (f *httpFacade) put(w http.ResponseWriter, req *http.Request, name string) {
	if !requireJSONContentType(w, req) {
		return
	}

	var body registerRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		f.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	switch body.Type {
	case string(KindCounter):
		_, err = f.registry.RegisterCounter(name)
	case string(KindGauge):
		_, err = f.registry.RegisterGauge(name)
	case string(KindTimer):
		_, err = f.registry.RegisterTimer(name)
	case string(KindMeter):
		tick := defaultMeterTickInterval
		if body.TickInterval > 0 {
			tick = secondsToDuration(body.TickInterval)
		}
		_, err = f.registry.RegisterMeterWithTickInterval(name, tick)
	case string(KindHistogram):
		var reservoir Reservoir
		reservoir, err = buildReservoirFromRequest(body)
		if err == nil {
			_, err = f.registry.RegisterHistogram(name, reservoir)
		}
	default:
		f.writeError(w, http.StatusBadRequest, "unknown instrument type")
		return
	}

	if err != nil {
		f.writeError(w, http.StatusBadRequest, "could not register metric")
		return
	}
	w.WriteHeader(http.StatusOK)
}

type notifyRequest struct {
	Value interface{} `json:"value"`
}

func (f *httpFacade) post(w http.ResponseWriter, req *http.Request, name string) {
	if !requireJSONContentType(w, req) {
		return
	}

	var body notifyRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Value == nil {
		f.writeError(w, http.StatusBadRequest, "missing value")
		return
	}

	if err := f.registry.Notify(name, body.Value); err != nil {
		switch {
		case isNotFoundErr(err):
			f.writeError(w, http.StatusNotFound, "not found")
		default:
			f.writeError(w, http.StatusBadRequest, "invalid value")
		}
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (f *httpFacade) delete(w http.ResponseWriter, name string) {
	if f.registry.Delete(name) == nil {
		f.writeJSON(w, http.StatusOK, "not deleted")
		return
	}
	f.writeJSON(w, http.StatusOK, "deleted")
}

func buildReservoirFromRequest(body registerRequest) (Reservoir, error) {
	capacity := int(body.Capacity)
	switch ReservoirKind(body.ReservoirType) {
	case ReservoirUniform, "":
		return NewUniformReservoir(capacity), nil
	case ReservoirSlidingWindow:
		return NewSlidingWindowReservoir(int(body.Window)), nil
	case ReservoirSlidingTimeWindow:
		window := secondsToDuration(body.WindowSeconds)
		return NewSlidingTimeWindowReservoir(window, nil), nil
	case ReservoirExpDecaying:
		return NewExpDecayingReservoir(capacity, body.Alpha, nil), nil
	default:
		return nil, ErrInvalidArgument
	}
}

func requireJSONContentType(w http.ResponseWriter, req *http.Request) bool {
	ct := req.Header.Get("Content-Type")
	if ct != "" && strings.HasPrefix(ct, "application/json") {
		return true
	}
	w.WriteHeader(http.StatusUnsupportedMediaType)
	return false
}

func isNotFoundErr(err error) bool {
	return errors.Is(err, ErrInvalidMetric)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func (f *httpFacade) writeError(w http.ResponseWriter, status int, message string) {
	f.writeJSON(w, status, map[string]string{"error": message})
}
