package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/types"
)

// StudentDependencies defines the interface for student operations.
type StudentDependencies interface {
	// Ingest dedupes and enqueues raw survey rows for async normalisation.
	Ingest(ctx context.Context, rows []model.RawRow) (types.IngestResult, error)
	Student(ctx context.Context, id int64) (types.StudentView, error)
	Coordinates(ctx context.Context, id int64, scheme string) (model.Coordinate, error)
}

// StudentsHandler handles student requests.
type StudentsHandler struct {
	deps StudentDependencies
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(deps StudentDependencies) *StudentsHandler {
	return &StudentsHandler{deps: deps}
}

// HandlePostStudents handles POST /students. The body is one row object
// or an array of them.
//
// 202 when at least one row was accepted or was a duplicate, 429 when the
// queue refused any row, 400 when nothing usable was sent.
func (h *StudentsHandler) HandlePostStudents(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_students"
	rows, err := decodeRows(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Ingest(r.Context(), rows)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	switch {
	case res.Backpressured > 0:
		writeJSON(w, http.StatusTooManyRequests, res)
	case res.Accepted == 0 && res.Duplicates == 0:
		writeJSON(w, http.StatusBadRequest, res)
	default:
		writeJSON(w, http.StatusAccepted, res)
	}
}

// HandleGetStudent handles GET /students/{id}.
func (h *StudentsHandler) HandleGetStudent(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_student"
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.deps.Student(r.Context(), id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleGetCoordinates handles GET /students/{id}/coordinates?scheme=.
func (h *StudentsHandler) HandleGetCoordinates(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_coordinates"
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	c, err := h.deps.Coordinates(r.Context(), id, r.URL.Query().Get("scheme"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// decodeRows accepts a single object or an array. Numbers stay json.Number
// so integer ids survive untouched.
func decodeRows(body io.Reader) ([]model.RawRow, error) {
	var raw json.RawMessage
	dec := json.NewDecoder(body)
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty body")
	}

	inner := json.NewDecoder(bytes.NewReader(trimmed))
	inner.UseNumber()
	if trimmed[0] == '[' {
		var rows []model.RawRow
		if err := inner.Decode(&rows); err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, errors.New("no rows")
		}
		return rows, nil
	}
	var row model.RawRow
	if err := inner.Decode(&row); err != nil {
		return nil, err
	}
	return []model.RawRow{row}, nil
}
