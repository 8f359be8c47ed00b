// Package api exposes the reconstruction service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/seqsense/pcgol/pc"

	"objrecon/artifact"
	"objrecon/cloud"
	"objrecon/pipeline"
	"objrecon/plane"
)

// Reconstructor runs one full reconstruction. pipeline.Pipeline
// implements it.
type Reconstructor interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// Server serves the reconstruction endpoints. Reconstruction requests
// are serialized: a request arriving while another runs waits its turn.
type Server struct {
	// Reconstructor handles POST /fix-occlusions. Required.
	Reconstructor Reconstructor
	// Fitter handles POST /extract-plane. Required for that endpoint.
	Fitter *plane.Fitter

	mu sync.Mutex
}

// Handler returns the route table of the service.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/fix-occlusions", s.fixOcclusions)
	mux.HandleFunc("/extract-plane", s.extractPlane)
	return mux
}

type fixOcclusionsResponse struct {
	Success bool `json:"success"`
	Meshes  int  `json:"meshes"`
}

func (s *Server) fixOcclusions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	res, err := s.Reconstructor.Run(r.Context())
	s.mu.Unlock()
	if err != nil {
		artifact.Logf("api: fix-occlusions: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(fixOcclusionsResponse{
		Success: res.Success,
		Meshes:  len(res.Meshes),
	}); err != nil {
		artifact.Logf("api: fix-occlusions: write response: %v", err)
	}
}

func (s *Server) extractPlane(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Fitter == nil {
		http.Error(w, "plane extraction not configured", http.StatusNotImplemented)
		return
	}
	pp, err := pc.Unmarshal(r.Body)
	if err != nil {
		http.Error(w, "invalid PCD body: "+err.Error(), http.StatusBadRequest)
		return
	}

	f := *s.Fitter
	if tol := r.URL.Query().Get("tolerance"); tol != "" {
		v, err := strconv.ParseFloat(tol, 32)
		if err != nil || v <= 0 {
			http.Error(w, "invalid tolerance", http.StatusBadRequest)
			return
		}
		f.DistanceTolerance = float32(v)
	}

	m, err := f.Fit(pp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := cloud.Select(pp, m.Inliers)
	w.Header().Set("Content-Type", "application/octet-stream")
	if err := pc.Marshal(out, w); err != nil {
		artifact.Logf("api: extract-plane: write response: %v", err)
	}
}
