package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ruteri/tee-attestation-registry/api"
	"github.com/ruteri/tee-attestation-registry/interfaces"
	"github.com/ruteri/tee-attestation-registry/metrics"
	"github.com/ruteri/tee-attestation-registry/registry"
)

// Handler translates HTTP requests into registry operations.
type Handler struct {
	registry *registry.Registry
	log      *slog.Logger
	metrics  *metrics.MetricsServer

	// now supplies the default evaluation time when the request carries
	// no timestamp header. Overridable in tests.
	now func() uint64
}

// NewHandler creates a request handler for the given registry. The
// metrics server may be nil.
func NewHandler(reg *registry.Registry, log *slog.Logger, m *metrics.MetricsServer) *Handler {
	return &Handler{
		registry: reg,
		log:      log,
		metrics:  m,
		now:      func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// caller extracts the host-authenticated identity header.
func caller(r *http.Request) interfaces.Identity {
	return interfaces.Identity(r.Header.Get(api.IdentityHeader))
}

// requestTime returns the evaluation time: the timestamp header when
// present, the handler's clock otherwise.
func (h *Handler) requestTime(r *http.Request) (uint64, error) {
	raw := r.Header.Get(api.TimestampHeader)
	if raw == "" {
		return h.now(), nil
	}
	ts, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, interfaces.NewInvalidMetadataError(api.TimestampHeader, raw, "seconds since epoch")
	}
	return ts, nil
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "register", interfaces.NewInvalidReportError("malformed request body"))
		return
	}

	teeType, err := interfaces.ParseTeeType(req.TeeType)
	if err != nil {
		h.writeJSONError(w, "register", err)
		return
	}

	now, err := h.requestTime(r)
	if err != nil {
		h.writeJSONError(w, "register", err)
		return
	}

	att, err := h.registry.Register(r.Context(), caller(r), teeType, req.PublicKey, req.Report, req.Signature, req.TTLSeconds, req.Metadata, now)
	if err != nil {
		h.writeJSONError(w, "register", err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRegistration()
	}
	h.writeJSON(w, http.StatusCreated, att)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	att, err := h.registry.Get(r.Context(), r.URL.Query().Get("key"))
	if err != nil {
		h.writeJSONError(w, "get", err)
		return
	}
	h.writeJSON(w, http.StatusOK, att)
}

func (h *Handler) HandleIsValid(w http.ResponseWriter, r *http.Request) {
	now, err := h.requestTime(r)
	if err != nil {
		h.writeJSONError(w, "is_valid", err)
		return
	}

	key := r.URL.Query().Get("key")
	h.writeJSON(w, http.StatusOK, api.ValidResponse{
		PublicKey: key,
		Valid:     h.registry.IsValid(r.Context(), key, now),
		CheckedAt: now,
	})
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	now, err := h.requestTime(r)
	if err != nil {
		h.writeJSONError(w, "verify", err)
		return
	}

	key := r.URL.Query().Get("key")
	verifySignature := r.URL.Query().Get("signature") != "false"

	valid, err := h.registry.VerifyAttestation(r.Context(), key, now, verifySignature)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordVerification("invalid")
		}
		h.writeJSONError(w, "verify", err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordVerification("valid")
	}
	h.writeJSON(w, http.StatusOK, api.VerifyResponse{PublicKey: key, Valid: valid, CheckedAt: now})
}

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	var req api.RevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "revoke", interfaces.NewInvalidReportError("malformed request body"))
		return
	}

	now, err := h.requestTime(r)
	if err != nil {
		h.writeJSONError(w, "revoke", err)
		return
	}

	if err := h.registry.Revoke(r.Context(), caller(r), req.PublicKey, now); err != nil {
		h.writeJSONError(w, "revoke", err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRevocation()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleExtend(w http.ResponseWriter, r *http.Request) {
	var req api.ExtendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "extend", interfaces.NewInvalidReportError("malformed request body"))
		return
	}

	now, err := h.requestTime(r)
	if err != nil {
		h.writeJSONError(w, "extend", err)
		return
	}

	att, err := h.registry.ExtendExpiration(r.Context(), caller(r), req.PublicKey, req.AdditionalSeconds, now)
	if err != nil {
		h.writeJSONError(w, "extend", err)
		return
	}
	h.writeJSON(w, http.StatusOK, att)
}

func (h *Handler) HandleUpdateMetadata(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "update_metadata", interfaces.NewInvalidReportError("malformed request body"))
		return
	}

	now, err := h.requestTime(r)
	if err != nil {
		h.writeJSONError(w, "update_metadata", err)
		return
	}

	att, err := h.registry.UpdateMetadata(r.Context(), caller(r), req.PublicKey, req.Metadata, now)
	if err != nil {
		h.writeJSONError(w, "update_metadata", err)
		return
	}
	h.writeJSON(w, http.StatusOK, att)
}

func (h *Handler) HandleListKeys(w http.ResponseWriter, r *http.Request) {
	fromIndex, limit := pagination(r)
	keys, err := h.registry.ListKeys(r.Context(), fromIndex, limit)
	if err != nil {
		h.writeJSONError(w, "list_keys", err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.KeyListResponse{Keys: keys, FromIndex: fromIndex, Count: len(keys)})
}

func (h *Handler) HandleListByOwner(w http.ResponseWriter, r *http.Request) {
	fromIndex, limit := pagination(r)
	owner := interfaces.Identity(r.URL.Query().Get("owner"))

	attestations, err := h.registry.ListByOwner(r.Context(), owner, fromIndex, limit)
	if err != nil {
		h.writeJSONError(w, "list_by_owner", err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.AttestationListResponse{
		Attestations: attestations,
		FromIndex:    fromIndex,
		Count:        len(attestations),
	})
}

func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Pause(r.Context(), caller(r)); err != nil {
		h.writeJSONError(w, "pause", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleUnpause(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Unpause(r.Context(), caller(r)); err != nil {
		h.writeJSONError(w, "unpause", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	admin, err := h.registry.Admin(r.Context())
	if err != nil {
		h.writeJSONError(w, "status", err)
		return
	}
	paused, err := h.registry.IsPaused(r.Context())
	if err != nil {
		h.writeJSONError(w, "status", err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.StatusResponse{Admin: admin.String(), Paused: paused})
}

func pagination(r *http.Request) (fromIndex, limit uint64) {
	fromIndex, _ = strconv.ParseUint(r.URL.Query().Get("from_index"), 10, 64)
	limit, err := strconv.ParseUint(r.URL.Query().Get("limit"), 10, 64)
	if err != nil {
		limit = registry.MaxPageSize
	}
	return fromIndex, limit
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, operation string, err error) {
	var attErr *interfaces.AttestationError
	if !errors.As(err, &attErr) {
		attErr = interfaces.NewInternalError(err.Error())
	}

	if h.metrics != nil {
		h.metrics.RecordOperationError(operation, attErr.Kind.String())
	}
	h.log.Debug("Request failed",
		slog.String("operation", operation),
		slog.String("kind", attErr.Kind.String()),
		"err", err)

	h.writeJSON(w, statusForKind(attErr.Kind), api.ErrorResponse{
		Kind:    attErr.Kind.String(),
		Message: attErr.Error(),
	})
}

// statusForKind maps registry error kinds to HTTP statuses.
func statusForKind(kind interfaces.ErrorKind) int {
	switch kind {
	case interfaces.KindUnauthorized:
		return http.StatusForbidden
	case interfaces.KindNotFound:
		return http.StatusNotFound
	case interfaces.KindAlreadyExists:
		return http.StatusConflict
	case interfaces.KindPaused:
		return http.StatusServiceUnavailable
	case interfaces.KindInternal:
		return http.StatusInternalServerError
	default:
		// Validation and state errors are the caller's problem.
		return http.StatusBadRequest
	}
}
