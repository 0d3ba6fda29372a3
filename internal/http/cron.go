package http

import (
	"net/http"
	"strings"

	"dompet/internal/log"
)

type cronResponse struct {
	Status        string   `json:"status"`
	BillReminders int      `json:"billReminders"`
	AutoDebits    int      `json:"autoDebits"`
	Details       []string `json:"details,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// handleCron runs the daily job once. Reruns on the same day are harmless.
func (s *Server) handleCron(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	if s.opts.Daily == nil {
		ErrorResponse(http.StatusNotFound, "daily job is not configured").Write(w)
		return
	}
	if s.opts.CronSecret != "" && !secureEqual(cronToken(r), s.opts.CronSecret) {
		UnauthorizedError().Write(w)
		return
	}

	ctx := r.Context()
	res, err := s.opts.Daily.Run(ctx, s.opts.Now())
	body := cronResponse{
		Status:        "Success",
		BillReminders: res.BillsDue,
		AutoDebits:    res.RecurringExecuted,
		Details:       res.Details,
	}
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Daily job failed", log.FieldOperation, log.OpDailyRun, log.FieldError, err)
		body.Status = "Error"
		body.Error = "Server Error"
		NewResponse().Status(http.StatusInternalServerError).JSON(body).Write(w)
		return
	}
	NewResponse().JSON(body).Write(w)
}

func cronToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return r.URL.Query().Get("token")
}
