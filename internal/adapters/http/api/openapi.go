package api

import (
	_ "embed"
	"net/http"
)

// OpenAPI is the embedded description of the HTTP surface.
//
//go:embed openapi.yaml
var OpenAPI []byte

// handleOpenAPI serves GET /openapi.yaml.
func handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(OpenAPI)
}
