package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"freshport.io/internal/auth"
	"freshport.io/internal/inquiry"
	"freshport.io/internal/obs"
	"freshport.io/internal/ratelimit"
)

const (
	inquiryRateLimit  = 3
	inquiryRateWindow = 10 * time.Minute
)

type inquiryStatusRequest struct {
	Status string `json:"status"`
}

// handlePublicInquiries accepts contact-form submissions from the site.
func (a *API) handlePublicInquiries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	res, err := a.limiter.Allow(r.Context(), ratelimit.Key("inquiry", clientIP(r)), inquiryRateLimit, inquiryRateWindow)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if !res.Allowed {
		obs.CountRateLimited("inquiry")
		retryAfter(w, res.ResetAt)
		writeError(w, r, http.StatusTooManyRequests, "too many submissions, try again later")
		return
	}

	var sub inquiry.Submission
	if err := decodeJSON(w, r, &sub); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	inq, err := a.inquiries.Submit(r.Context(), sub)
	if err != nil {
		handleInquiryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     inq.ID,
		"status": inq.Status,
	})
}

func (a *API) handleAdminInquiries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requirePermission(w, r, auth.ActionViewInquiries); !ok {
		return
	}
	var status inquiry.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := inquiry.ParseStatus(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		status = parsed
	}
	list, err := a.inquiries.List(r.Context(), status)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inquiries": list})
}

func (a *API) handleAdminInquiryScoped(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/admin/inquiries/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	id := parts[0]
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		if _, ok := a.requirePermission(w, r, auth.ActionViewInquiries); !ok {
			return
		}
		inq, err := a.inquiries.Get(r.Context(), id)
		if err != nil {
			handleInquiryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, inq)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		actor, ok := a.requireMutation(w, r, auth.ActionDeleteInquiry)
		if !ok {
			return
		}
		if err := a.inquiries.Delete(r.Context(), id); err != nil {
			handleInquiryError(w, r, err)
			return
		}
		a.audit(r.Context(), actor.ID, "INQUIRY_DELETE", "inquiry", id, nil)
		w.WriteHeader(http.StatusNoContent)
	case len(parts) == 2 && parts[1] == "read":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		actor, ok := a.requireMutation(w, r, auth.ActionMarkInquiryRead)
		if !ok {
			return
		}
		inq, err := a.inquiries.MarkRead(r.Context(), id)
		if err != nil {
			handleInquiryError(w, r, err)
			return
		}
		a.audit(r.Context(), actor.ID, "INQUIRY_READ", "inquiry", id, nil)
		writeJSON(w, http.StatusOK, inq)
	case len(parts) == 2 && parts[1] == "status":
		if r.Method != http.MethodPut {
			methodNotAllowed(w, r, http.MethodPut)
			return
		}
		actor, ok := a.requireMutation(w, r, auth.ActionMarkInquiryRead)
		if !ok {
			return
		}
		var req inquiryStatusRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		status, err := inquiry.ParseStatus(req.Status)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		inq, err := a.inquiries.SetStatus(r.Context(), id, status)
		if err != nil {
			handleInquiryError(w, r, err)
			return
		}
		a.audit(r.Context(), actor.ID, "INQUIRY_STATUS_CHANGE", "inquiry", id, map[string]any{
			"status": string(status),
		})
		writeJSON(w, http.StatusOK, inq)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

// handleInquiryStream is the admin live feed: one SSE event per incoming
// inquiry, until the client disconnects.
func (a *API) handleInquiryStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requirePermission(w, r, auth.ActionViewInquiries); !ok {
		return
	}
	if a.stream == nil {
		writeError(w, r, http.StatusServiceUnavailable, "stream unavailable")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := a.stream.Subscribe(r.Context())
	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case evt, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: inquiry\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func handleInquiryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, inquiry.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, inquiry.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
