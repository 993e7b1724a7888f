package contact

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// SubmitHandler accepts POSTed submissions.
func (svc *Service) SubmitHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var s Submission
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "Invalid JSON body"})
			return
		}
		saved, err := svc.Submit(r.Context(), s)
		if err != nil {
			if verr, ok := err.(validation.Errors); ok {
				writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "Please fill in all required fields.", "fields": verr})
				return
			}
			svc.logger.Error("contact submit", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": http.StatusText(http.StatusInternalServerError)})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "id": saved.ID, "message": "Data saved successfully"})
	})
}

// ListHandler returns all submissions. Mount it behind a session check.
func (svc *Service) ListHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subs, err := svc.List(r.Context())
		if err != nil {
			svc.logger.Error("contact list", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": http.StatusText(http.StatusInternalServerError)})
			return
		}
		if subs == nil {
			subs = []Submission{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "submissions": subs})
	})
}
