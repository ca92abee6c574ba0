package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	apperrors "github.com/zsiec/stimecode/internal/errors"
	"github.com/zsiec/stimecode/internal/logger"
	"github.com/zsiec/stimecode/internal/marks"
	"github.com/zsiec/stimecode/pkg/timecode"
)

// HandleListMarks returns every stored mark in creation order.
func (h *Handlers) HandleListMarks(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		h.failStore(w, r, err)
		return
	}

	resp := MarkListResponse{
		Marks: make([]MarkResponse, 0, len(list)),
		Time:  time.Now().UTC(),
	}
	for _, m := range list {
		mr, err := newMarkResponse(m)
		if err != nil {
			logger.FromContext(r.Context()).WithError(err).
				WithField("mark_id", m.ID).Warn("Skipping undecodable mark")
			continue
		}
		resp.Marks = append(resp.Marks, mr)
	}
	resp.Count = len(resp.Marks)

	writeJSON(r.Context(), w, http.StatusOK, resp)
}

// HandleCreateMark stores a new named timecode.
func (h *Handlers) HandleCreateMark(w http.ResponseWriter, r *http.Request) {
	var req CreateMarkRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		h.fail(w, r, apperrors.NewValidationError("name is required"))
		return
	}

	tc, err := h.timecode(req.FrameRate, req.NonDrop, req.Timecode, req.FrameNumber, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	mark := marks.NewMark(name, tc)
	if err := h.store.Create(r.Context(), mark); err != nil {
		h.failStore(w, r, err)
		return
	}

	logger.FromContext(r.Context()).WithFields(logger.Fields{
		"mark_id":  mark.ID,
		"timecode": mark.Timecode,
	}).Info("Mark created")

	h.writeMark(w, r, http.StatusCreated, mark)
}

// HandleGetMark returns one mark.
func (h *Handlers) HandleGetMark(w http.ResponseWriter, r *http.Request) {
	mark, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.failStore(w, r, err)
		return
	}
	h.writeMark(w, r, http.StatusOK, mark)
}

// HandleUpdateMark renames a mark, replaces its timecode or shifts it by a
// number of frames. A replacement timecode is read at the mark's own rate.
func (h *Handlers) HandleUpdateMark(w http.ResponseWriter, r *http.Request) {
	var req UpdateMarkRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Name == nil && req.Timecode == nil && req.ShiftFrames == nil {
		h.fail(w, r, apperrors.NewValidationError("nothing to update"))
		return
	}
	if req.Timecode != nil && req.ShiftFrames != nil {
		h.fail(w, r, apperrors.NewValidationError("timecode and shift_frames are mutually exclusive"))
		return
	}

	mark, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.failStore(w, r, err)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			h.fail(w, r, apperrors.NewValidationError("name cannot be empty"))
			return
		}
		mark.Name = name
		mark.UpdatedAt = time.Now().UTC()
	}

	switch {
	case req.Timecode != nil:
		current, err := mark.Value()
		if err != nil {
			h.fail(w, r, err)
			return
		}
		tc, err := timecode.FromString(current.FrameRate(), *req.Timecode)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		mark.Set(tc)
	case req.ShiftFrames != nil:
		if err := mark.Shift(*req.ShiftFrames); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	if err := h.store.Update(r.Context(), mark); err != nil {
		h.failStore(w, r, err)
		return
	}

	logger.FromContext(r.Context()).WithField("mark_id", mark.ID).Info("Mark updated")
	h.writeMark(w, r, http.StatusOK, mark)
}

// HandleDeleteMark removes a mark.
func (h *Handlers) HandleDeleteMark(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.failStore(w, r, err)
		return
	}

	logger.FromContext(r.Context()).WithField("mark_id", id).Info("Mark deleted")
	w.WriteHeader(http.StatusNoContent)
}

// HandleMarkOffset returns other minus id, expressed at id's frame rate.
func (h *Handlers) HandleMarkOffset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	from, err := h.store.Get(r.Context(), vars["id"])
	if err != nil {
		h.failStore(w, r, err)
		return
	}
	to, err := h.store.Get(r.Context(), vars["other"])
	if err != nil {
		h.failStore(w, r, err)
		return
	}

	offset, err := marks.Offset(from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, OffsetResponse{
		From:   from.ID,
		To:     to.ID,
		Offset: newTimecodeResponse(offset),
	})
}

func (h *Handlers) writeMark(w http.ResponseWriter, r *http.Request, status int, mark *marks.Mark) {
	resp, err := newMarkResponse(mark)
	if err != nil {
		h.fail(w, r, apperrors.WrapInternalError(err, "stored mark is unreadable"))
		return
	}
	writeJSON(r.Context(), w, status, resp)
}
