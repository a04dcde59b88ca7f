package video

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sundayezeilo/videorecords/internal/errx"
	"github.com/sundayezeilo/videorecords/internal/httpx"
)

// PathParam is the route variable that carries the video id.
const PathParam = "video_id"

const (
	msgNotFound       = "Could not find video..."
	msgAlreadyExists  = "Video already exists..."
	msgCannotUpdate   = "Video doesn't exist, cannot update..."
	msgCannotDelete   = "Video doesn't exist, cannot delete..."
	msgUnavailable    = "Video storage is unavailable. Please try again."
	msgInternal       = "An unexpected error occurred"
	msgInvalidVideoID = "video id must be a non-negative 64-bit integer"
)

// fieldHelp is the message reported for a missing or mistyped body field.
var fieldHelp = map[string]string{
	"name":  "Name of the video is required",
	"views": "Views of the video is required",
	"likes": "Likes on the video is required",
}

// HTTPPutVideoRequest is the JSON body of PUT /video/{id}. Every field is
// required. Keys other than these three are ignored.
type HTTPPutVideoRequest struct {
	Name  *NameParam  `json:"name"`
	Views *CountParam `json:"views"`
	Likes *CountParam `json:"likes"`
}

// HTTPPatchVideoRequest is the JSON body of PATCH /video/{id}. Every field is optional.
type HTTPPatchVideoRequest struct {
	Name  *NameParam  `json:"name"`
	Views *CountParam `json:"views"`
	Likes *CountParam `json:"likes"`
}

// Handler provides HTTP handlers for video records.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service: cfg.Service,
		logger:  logger,
	}
}

// Get handles GET /video/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, ok := h.videoID(w, r, logger)
	if !ok {
		return
	}

	v, err := h.service.Get(ctx, id)
	if err != nil {
		h.handleError(ctx, w, logger.With("video_id", id), err, msgNotFound)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, v)
}

// Put handles PUT /video/{id}, creating the record under the path id.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, ok := h.videoID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With("video_id", id)

	req, err := httpx.DecodeJSON[HTTPPutVideoRequest](r, httpx.AllowUnknownFields())
	if err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		h.writeDecodeError(ctx, w, logger, err)
		return
	}

	create, fe := validatePutRequest(req)
	if len(fe) > 0 {
		logger.WarnContext(ctx, "request validation failed", "error", fe.Error())
		httpx.WriteFieldErrors(w, fe)
		return
	}

	created, err := h.service.Create(ctx, id, create)
	if err != nil {
		h.handleError(ctx, w, logger, err, msgInternal)
		return
	}

	logger.InfoContext(ctx, "video created",
		"name", created.Name,
		"views", created.Views,
		"likes", created.Likes,
	)

	httpx.WriteJSON(w, http.StatusCreated, created)
}

// Patch handles PATCH /video/{id}. Supplied fields that are empty or zero are ignored.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, ok := h.videoID(w, r, logger)
	if !ok {
		return
	}
	logger = logger.With("video_id", id)

	req, err := httpx.DecodeOptionalJSON[HTTPPatchVideoRequest](r, httpx.AllowUnknownFields())
	if err != nil {
		h.writeDecodeError(ctx, w, logger, err)
		return
	}

	update, fe := validatePatchRequest(req)
	if len(fe) > 0 {
		logger.WarnContext(ctx, "request validation failed", "error", fe.Error())
		httpx.WriteFieldErrors(w, fe)
		return
	}

	updated, err := h.service.Update(ctx, id, update)
	if err != nil {
		h.handleError(ctx, w, logger, err, msgCannotUpdate)
		return
	}

	logger.InfoContext(ctx, "video updated")

	httpx.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /video/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, ok := h.videoID(w, r, logger)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		h.handleError(ctx, w, logger.With("video_id", id), err, msgCannotDelete)
		return
	}

	logger.InfoContext(ctx, "video deleted", "video_id", id)

	httpx.WriteNoContent(w)
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

// videoID parses the id route variable, writing a 400 when it does not fit an int64.
func (h *Handler) videoID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	raw := mux.Vars(r)[PathParam]

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		logger.WarnContext(r.Context(), "invalid video id", "video_id", raw)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_id", msgInvalidVideoID, nil)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeDecodeError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.WarnContext(ctx, "failed to decode request", "error", err.Error())

	if fe, ok := errx.FieldsOf(err); ok {
		httpx.WriteFieldErrors(w, withFieldHelp(fe))
		return
	}
	httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
}

// handleError maps a service error to a response. notFound is the message for
// errx.NotFound, which differs per operation.
func (h *Handler) handleError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error, notFound string) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	}

	switch kind {
	case errx.NotFound:
		logger.WarnContext(ctx, "video not found", logAttrs...)
		httpx.WriteKindError(w, kind, notFound)

	case errx.Conflict:
		logger.WarnContext(ctx, "video already exists", logAttrs...)
		httpx.WriteKindError(w, kind, msgAlreadyExists)

	case errx.Invalid:
		logger.WarnContext(ctx, "invalid video request", logAttrs...)
		if fe, ok := errx.FieldsOf(err); ok {
			httpx.WriteFieldErrors(w, fe)
			return
		}
		httpx.WriteKindError(w, kind, msgInvalidVideoID)

	case errx.Unavailable:
		logger.ErrorContext(ctx, "video storage unavailable", logAttrs...)
		httpx.WriteKindError(w, kind, msgUnavailable)

	default:
		logger.ErrorContext(ctx, "unexpected video error", logAttrs...)
		httpx.WriteKindError(w, kind, msgInternal)
	}
}

// validatePutRequest converts a PUT body, reporting every absent or
// unusable field with its help message.
func validatePutRequest(req HTTPPutVideoRequest) (CreateVideoRequest, errx.FieldErrors) {
	var (
		out CreateVideoRequest
		fe  errx.FieldErrors
	)

	if req.Name == nil || !req.Name.Valid {
		fe.Add("name", fieldHelp["name"])
	} else {
		out.Name = req.Name.Value
	}
	if req.Views == nil || !req.Views.Valid {
		fe.Add("views", fieldHelp["views"])
	} else {
		out.Views = req.Views.Value
	}
	if req.Likes == nil || !req.Likes.Valid {
		fe.Add("likes", fieldHelp["likes"])
	} else {
		out.Likes = req.Likes.Value
	}
	return out, fe
}

// validatePatchRequest converts a PATCH body. Absent fields stay nil; a
// supplied field that cannot be used is reported with its help message.
func validatePatchRequest(req HTTPPatchVideoRequest) (UpdateVideoRequest, errx.FieldErrors) {
	var (
		out UpdateVideoRequest
		fe  errx.FieldErrors
	)

	if req.Name != nil {
		if req.Name.Valid {
			out.Name = &req.Name.Value
		} else {
			fe.Add("name", fieldHelp["name"])
		}
	}
	if req.Views != nil {
		if req.Views.Valid {
			out.Views = &req.Views.Value
		} else {
			fe.Add("views", fieldHelp["views"])
		}
	}
	if req.Likes != nil {
		if req.Likes.Valid {
			out.Likes = &req.Likes.Value
		} else {
			fe.Add("likes", fieldHelp["likes"])
		}
	}
	return out, fe
}

// withFieldHelp replaces decoder messages with the help message of known fields.
func withFieldHelp(fe errx.FieldErrors) errx.FieldErrors {
	out := make(errx.FieldErrors, 0, len(fe))
	for _, f := range fe {
		if help, ok := fieldHelp[f.Field]; ok {
			f.Message = help
		}
		out = append(out, f)
	}
	return out
}
