package handlers

import (
	"encoding/json"
	"net/http"

	"catalogo/internal/infra"
	"catalogo/internal/middleware"
	"catalogo/internal/storage"
	"catalogo/internal/transform"
)

// App is the handler container: the transform service, the public file
// store, and the SQL executor for product persistence.
type App struct {
	Log         infra.Logger
	Transformer *transform.Service
	Store       *storage.FileStore
	SQL         infra.SQLExecutor
}

func NewApp(log infra.Logger, transformer *transform.Service, store *storage.FileStore, sql infra.SQLExecutor) *App {
	return &App{Log: log, Transformer: transformer, Store: store, SQL: sql}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes the failure body: a localized human message under "error", the
// stable machine string under "code", and the underlying detail when one
// exists. Clients combine error+details verbatim for the operator.
func (a *App) error(w http.ResponseWriter, r *http.Request, status int, code string, detail error, args ...any) {
	locale := middleware.LocaleFromContext(r.Context())
	body := map[string]any{
		"error": localizedMessage(code, locale, args...),
		"code":  code,
	}
	evt := a.Log.Warn().
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("code", code).
		Int("status", status)
	if detail != nil {
		body["details"] = detail.Error()
		evt = evt.Err(detail)
	}
	evt.Msg("request failed")
	a.json(w, status, body)
}
