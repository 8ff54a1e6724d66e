package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	app "github.com/R3E-Network/social_layer/internal/app"
	"github.com/R3E-Network/social_layer/internal/app/domain/account"
	"github.com/R3E-Network/social_layer/internal/app/domain/message"
	"github.com/R3E-Network/social_layer/internal/app/metrics"
	svcerrors "github.com/R3E-Network/social_layer/internal/errors"
	"github.com/R3E-Network/social_layer/pkg/logger"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// NewHandler returns a router exposing the REST API, health and metrics.
// Failure responses never carry a body; the status code is the only signal.
func NewHandler(application *app.Application, log *logger.Logger, opts ...Option) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	h := &handler{app: application, log: log}

	r := mux.NewRouter()
	r.Use(metrics.InstrumentHandler)

	r.HandleFunc("/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/messages", h.createMessage).Methods(http.MethodPost)
	r.HandleFunc("/messages", h.listMessages).Methods(http.MethodGet)
	r.HandleFunc("/messages/{message_id}", h.getMessage).Methods(http.MethodGet)
	r.HandleFunc("/messages/{message_id}", h.updateMessage).Methods(http.MethodPatch)
	r.HandleFunc("/messages/{message_id}", h.deleteMessage).Methods(http.MethodDelete)
	r.HandleFunc("/accounts/{account_id}/messages", h.accountMessages).Methods(http.MethodGet)

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return withRequestContext(withCORS(r, o.allowedOrigins), log)
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload account.Account
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.fail(w, r, http.StatusBadRequest, svcerrors.InvalidFormat("body", err.Error()))
		return
	}

	acct, err := h.app.Accounts.Register(r.Context(), payload)
	if err != nil {
		h.fail(w, r, rejectStatus(err, http.StatusBadRequest), err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload account.Account
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.fail(w, r, http.StatusBadRequest, svcerrors.InvalidFormat("body", err.Error()))
		return
	}

	acct, err := h.app.Accounts.Login(r.Context(), payload)
	if err != nil {
		h.fail(w, r, rejectStatus(err, http.StatusUnauthorized), err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *handler) createMessage(w http.ResponseWriter, r *http.Request) {
	var payload message.Message
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.fail(w, r, http.StatusBadRequest, svcerrors.InvalidFormat("body", err.Error()))
		return
	}

	created, err := h.app.Messages.Create(r.Context(), payload)
	if err != nil {
		h.fail(w, r, rejectStatus(err, http.StatusBadRequest), err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *handler) listMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.app.Messages.List(r.Context())
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *handler) getMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "message_id")
	if !ok {
		return
	}

	msg, err := h.app.Messages.Get(r.Context(), id)
	if err != nil {
		h.absent(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// updateMessage takes the id from the path; any id in the body is ignored and
// only message_text is read from it.
func (h *handler) updateMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "message_id")
	if !ok {
		return
	}
	var payload message.Message
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.fail(w, r, http.StatusBadRequest, svcerrors.InvalidFormat("body", err.Error()))
		return
	}

	updated, err := h.app.Messages.UpdateText(r.Context(), id, payload.Text)
	if err != nil {
		h.fail(w, r, rejectStatus(err, http.StatusBadRequest), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "message_id")
	if !ok {
		return
	}

	deleted, err := h.app.Messages.Delete(r.Context(), id)
	if err != nil {
		h.absent(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

func (h *handler) accountMessages(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.pathID(w, r, "account_id")
	if !ok {
		return
	}

	msgs, err := h.app.Messages.ListByAccount(r.Context(), accountID)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Ping(r.Context()); err != nil {
		requestLogger(r, h.log).WithError(err).Warn("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, svcerrors.InvalidFormat(name, "must be an integer"))
		return 0, false
	}
	return id, true
}

// absent answers reads and deletes: a missing message is a 200 with an empty
// body, anything else is a server error.
func (h *handler) absent(w http.ResponseWriter, r *http.Request, err error) {
	if svcerrors.IsNotFound(err) {
		w.WriteHeader(http.StatusOK)
		return
	}
	h.fail(w, r, http.StatusInternalServerError, err)
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	entry := requestLogger(r, h.log).WithField("status", status)
	if se := svcerrors.GetServiceError(err); se != nil {
		entry = entry.WithField("code", se.Code)
	}
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithError(err).Debug("request rejected")
	}
	w.WriteHeader(status)
}

// rejectStatus keeps store failures at 500 and maps every other refusal onto
// the endpoint's rejection status.
func rejectStatus(err error, rejected int) int {
	if svcerrors.IsStoreFailure(err) {
		return http.StatusInternalServerError
	}
	return rejected
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	return json.NewDecoder(body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
