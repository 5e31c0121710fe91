package handler

import (
	"net/http"
)

// SystemHandler serves the service banner and the health check.
type SystemHandler struct {
	responder
	appName    string
	appVersion string
	service    string
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(appName, appVersion, service string) *SystemHandler {
	return &SystemHandler{
		appName:    appName,
		appVersion: appVersion,
		service:    service,
	}
}

// Root returns the application name and version.
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": h.appName,
		"version": h.appVersion,
	})
}

// Health returns a health check response.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": h.service,
	})
}
