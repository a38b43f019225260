// handlers/admin_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tapline/barmatrix/services"
)

// ForceRefreshScheduleHandler handles requests to manually re-ingest a
// guide feed. Expects POST requests to /api/admin/refresh-schedule/{source}
// where {source} is "national", "regional" or "all".
func ForceRefreshScheduleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	source, ok := trailingSource(r.URL.Path)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid path. Expected /api/admin/refresh-schedule/{source}")
		return
	}

	var err error
	switch source {
	case "national":
		err = services.ForceUpdateSchedule(services.SourceNationalGuide, nil) // nil skips the stamp check
	case "regional":
		err = services.ForceUpdateSchedule(services.SourceRegionalGuide, nil)
	case "all":
		err = services.ForceUpdateSchedule(services.SourceNationalGuide, nil)
		if err == nil { // Only proceed if the national feed was successful
			err = services.ForceUpdateSchedule(services.SourceRegionalGuide, nil)
		}
	default:
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid source '%s'. Use 'national', 'regional', or 'all'.", source))
		return
	}

	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to force refresh %s schedule: %v", source, err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("%s schedule refresh completed successfully.", source)})
}

// CheckAndUpdateScheduleHandler refreshes a guide feed only when the
// provider's publish stamp is newer than what was last ingested.
// Expects POST requests to /api/admin/check-update-schedule/{source}
func CheckAndUpdateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	source, ok := trailingSource(r.URL.Path)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid path. Expected /api/admin/check-update-schedule/{source}")
		return
	}

	var err error
	switch source {
	case "national":
		err = services.UpdateScheduleIfNeeded(services.SourceNationalGuide)
	case "regional":
		err = services.UpdateScheduleIfNeeded(services.SourceRegionalGuide)
	case "all":
		err = services.UpdateScheduleIfNeeded(services.SourceNationalGuide)
		if err == nil {
			err = services.UpdateScheduleIfNeeded(services.SourceRegionalGuide)
		}
	default:
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid source '%s'. Use 'national', 'regional', or 'all'.", source))
		return
	}

	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to check/update %s schedule: %v", source, err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Check/update process for %s schedule completed.", source)})
}

// trailingSource pulls the final path segment off an admin URL, e.g.
// /api/admin/refresh-schedule/national -> "national".
func trailingSource(path string) (string, bool) {
	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	if len(pathParts) < 4 {
		return "", false
	}
	return strings.ToLower(pathParts[3]), true
}
