package handlers

import (
	"net/http"

	"github.com/just-nibble/starsync/pkg/response"
)

// Health godoc
//
//	@Summary	Liveness probe
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	response.Envelope
//	@Router		/healthz [get]
func Health(w http.ResponseWriter, _ *http.Request) {
	response.SuccessResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
