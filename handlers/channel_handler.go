// handlers/channel_handler.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/tapline/barmatrix/models"
)

// TuneNotificationHandler records what channel an input is now tuned to.
// The tuning subsystem posts here after every channel change.
// Expects POST to /api/channels/tuned
// with JSON body: {"input_number": 5, "channel_number": "702", "device_type": "directv"}
func TuneNotificationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req models.TuneNotification
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if req.InputNumber <= 0 {
		respondWithError(w, http.StatusBadRequest, "Missing or invalid 'input_number' in request body")
		return
	}
	if req.ChannelNumber == "" {
		respondWithError(w, http.StatusBadRequest, "Missing 'channel_number' in request body")
		return
	}

	log.Printf("Handler: Input %d reported tuned to channel %s\n", req.InputNumber, req.ChannelNumber)

	if err := Routing.RecordTune(req); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to record tuned channel: "+err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Tuned channel recorded."})
}
