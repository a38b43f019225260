// handlers/route_handler.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/tapline/barmatrix/models"
	"github.com/tapline/barmatrix/services"
)

// Routing is the routing service the handlers call into; wired up in main.
var Routing *services.RoutingService

// Overrides is the override calculator behind the preview endpoint; wired
// up in main.
var Overrides *services.OverrideService

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshalling JSON response: %v", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	log.Printf("API Error %d: %s", code, message)
	respondWithJSON(w, code, map[string]string{"error": message})
}

// SwitchRouteHandler handles route switch requests.
// Expects POST to /api/routes/switch
// with JSON body: {"output_number": 2, "input_number": 5, "source": "bartender", "changed_by": "dana"}
func SwitchRouteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req models.SwitchRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if req.OutputNumber <= 0 {
		respondWithError(w, http.StatusBadRequest, "Missing or invalid 'output_number' in request body")
		return
	}
	if req.InputNumber <= 0 {
		respondWithError(w, http.StatusBadRequest, "Missing or invalid 'input_number' in request body")
		return
	}
	source := models.RouteSource(req.Source)
	if !source.Valid() {
		respondWithError(w, http.StatusBadRequest,
			"Invalid 'source'. Use one of: bartender, ai_scheduler, manual, system")
		return
	}

	log.Printf("Handler: Received switch request input %d -> output %d from source %s\n",
		req.InputNumber, req.OutputNumber, source)

	resp := Routing.ApplyRoute(req.OutputNumber, req.InputNumber, source, req.ChangedBy)
	if !resp.Success {
		// The hardware did not switch; the caller needs to know loudly.
		respondWithJSON(w, http.StatusBadGateway, resp)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// ListRoutesHandler returns the live route table.
// Expects GET to /api/routes
func ListRoutesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	routes, err := Routing.CurrentRoutes()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list routes: "+err.Error())
		return
	}
	if routes == nil { // Always return an array for JSON, even if empty
		routes = []models.MatrixRoute{}
	}
	respondWithJSON(w, http.StatusOK, routes)
}

// PreviewOverrideHandler computes the override window a manual switch to
// the given channel would get, without touching anything.
// Expects GET to /api/overrides/preview?channel=702
func PreviewOverrideHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	channel := r.URL.Query().Get("channel")
	if channel == "" {
		respondWithError(w, http.StatusBadRequest, "Missing 'channel' query parameter")
		return
	}

	decision := Overrides.ComputeOverrideForChannel(channel)
	respondWithJSON(w, http.StatusOK, decision)
}
