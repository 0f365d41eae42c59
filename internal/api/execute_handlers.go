package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"codecollab/internal/services"
)

// ExecuteCode proxies a snippet to the judge service and returns its
// verdict. Sandboxing is entirely the judge's concern.
func (h *Handler) ExecuteCode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProjectID string `json:"projectId"`
		Code      string `json:"code"`
		Language  string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.Code == "" || body.Language == "" {
		writeMessage(w, http.StatusBadRequest, "Code and language are required")
		return
	}

	result, err := h.executor.Execute(r.Context(), body.Code, body.Language)
	if err != nil {
		if strings.Contains(err.Error(), "not supported") {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		// A judge failure is still a verdict for the caller
		writeJSON(w, http.StatusOK, &services.ExecuteResult{
			Output:   "Execution failed. Error: " + err.Error(),
			Error:    err.Error(),
			Language: body.Language,
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}
