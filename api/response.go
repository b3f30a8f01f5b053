package api

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the envelope of every JSON body the adapter writes
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON writes a success envelope around data
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, APIResponse{
		Status: "success",
		Data:   data,
	})
}

// OK acknowledges a write with {"status":"ok"}
func OK(w http.ResponseWriter) {
	write(w, http.StatusOK, APIResponse{Status: "ok"})
}

// Error writes an error envelope with msg
func Error(w http.ResponseWriter, status int, msg string) {
	write(w, status, APIResponse{
		Status:  "error",
		Message: msg,
	})
}

func write(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
