// internal/httpapi/server.go
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/tamzrod/modbus-gateway/internal/gateway"
	"github.com/tamzrod/modbus-gateway/internal/schema"
	"github.com/tamzrod/modbus-gateway/internal/status"
	"github.com/tamzrod/modbus-gateway/internal/writer"
)

// FieldGateway is the part of *gateway.Gateway the API drives.
type FieldGateway interface {
	ReadFields(names []string) (map[string]gateway.FieldValue, error)
	WriteField(name string, value float64) error
}

// Deps are the collaborators behind the routes.
// Metrics may be nil, in which case /metrics is not served.
type Deps struct {
	Gateway FieldGateway
	Writer  writer.Writer
	Status  func() status.Snapshot
	Metrics http.Handler
}

type api struct {
	deps Deps
}

// NewRouter builds the HTTP surface.
func NewRouter(deps Deps, log zerolog.Logger) http.Handler {
	a := &api{deps: deps}

	r := mux.NewRouter()
	r.Use(hlog.NewHandler(log), requestID, accessLog())

	r.HandleFunc("/device", a.getDevice).Methods(http.MethodGet)
	r.HandleFunc("/telemetry", a.getTelemetry).Methods(http.MethodGet)
	r.HandleFunc("/fields/{name}", a.getField).Methods(http.MethodGet)
	r.HandleFunc("/fields/{name}", a.putField).Methods(http.MethodPut)
	r.HandleFunc("/control", a.putControl).Methods(http.MethodPut)
	r.HandleFunc("/health", a.getHealth).Methods(http.MethodGet)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics).Methods(http.MethodGet)
	}

	return r
}

// ------------------------------------------------------------
// READS
// ------------------------------------------------------------

func (a *api) getDevice(w http.ResponseWriter, r *http.Request) {
	values, err := a.deps.Gateway.ReadFields(schema.DeviceFields)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}

	out := make(map[string]any, len(schema.DeviceFields))
	for _, name := range schema.DeviceFields {
		fv, ok := values[name]
		if !ok {
			writeError(w, r, http.StatusInternalServerError, fmt.Errorf("httpapi: device field %q missing from register map", name))
			return
		}
		if !fv.OK {
			writeError(w, r, http.StatusBadGateway, fmt.Errorf("httpapi: device field %q: %w", name, fv.Err))
			return
		}
		out[name] = fv.Value
	}

	writeJSON(w, http.StatusOK, out)
}

func (a *api) getTelemetry(w http.ResponseWriter, r *http.Request) {
	names := splitNames(r.URL.Query().Get("metrics"))

	values, err := a.deps.Gateway.ReadFields(names)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (a *api) getField(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	values, err := a.deps.Gateway.ReadFields([]string{name})
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}

	fv, ok := values[name]
	if !ok {
		err := &gateway.FieldError{Field: name, Err: gateway.ErrUnknownField}
		writeError(w, r, http.StatusNotFound, err)
		return
	}
	if !fv.OK {
		writeError(w, r, statusFor(fv.Err), fv.Err)
		return
	}
	writeJSON(w, http.StatusOK, fv)
}

func (a *api) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.deps.Status())
}

// ------------------------------------------------------------
// WRITES
// ------------------------------------------------------------

type fieldWrite struct {
	Value *float64 `json:"value"`
}

func (a *api) putField(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var body fieldWrite
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if body.Value == nil {
		writeError(w, r, http.StatusBadRequest, errors.New("httpapi: value required"))
		return
	}

	if err := a.deps.Gateway.WriteField(name, *body.Value); err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": writer.ResultOK})
}

type controlPayload struct {
	Writes map[string]float64 `json:"writes"`
}

func (a *api) putControl(w http.ResponseWriter, r *http.Request) {
	var body controlPayload
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if len(body.Writes) == 0 {
		writeError(w, r, http.StatusBadRequest, errors.New("httpapi: writes required"))
		return
	}

	res, err := a.deps.Writer.Apply(body.Writes)
	if err != nil {
		writeJSON(w, statusFor(err), map[string]any{
			"result":     res,
			"error":      err.Error(),
			"request_id": w.Header().Get(requestIDHeader),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": res})
}

// ------------------------------------------------------------
// HELPERS
// ------------------------------------------------------------

// splitNames parses "a, b,,c" into [a b c]. Empty input yields nil (all fields).
func splitNames(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("httpapi: bad request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	ev := hlog.FromRequest(r).Warn()
	if code >= http.StatusInternalServerError {
		ev = hlog.FromRequest(r).Error()
	}
	ev.Err(err).Int("status", code).Msg("request failed")

	writeJSON(w, code, map[string]string{
		"error":      err.Error(),
		"request_id": w.Header().Get(requestIDHeader),
	})
}
