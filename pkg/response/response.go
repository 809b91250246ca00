package response

import (
	"encoding/json"
	"net/http"
)

type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Envelope{Status: "success", Data: data})
}

func ErrorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Status: "error", Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
