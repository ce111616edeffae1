package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/scenecsv/internal/catalog"
	"github.com/JonMunkholm/scenecsv/internal/logging"
	"github.com/JonMunkholm/scenecsv/internal/placement"
	"github.com/JonMunkholm/scenecsv/internal/profile"
	"github.com/JonMunkholm/scenecsv/internal/scene"
	"github.com/JonMunkholm/scenecsv/internal/source"
)

// profileSummary is the API form of a profile.
type profileSummary struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Source      string              `json:"source"`
	Policy      string              `json:"policy"`
	Bindings    []placement.Binding `json:"bindings"`
	Template    placement.Record    `json:"template"`
}

func summarize(p profile.Profile) profileSummary {
	return profileSummary{
		Name:        p.Name,
		Description: p.Description,
		Source:      p.Source,
		Policy:      p.Policy.String(),
		Bindings:    p.Bindings,
		Template:    p.Template,
	}
}

// sceneResponse is the body of GET /api/scene.
type sceneResponse struct {
	Generation uint64     `json:"generation"`
	Count      int        `json:"count"`
	Nodes      []nodeView `json:"nodes"`
}

// nodeView is a scene node with its facing direction.
type nodeView struct {
	scene.Node
	Forward placement.Vec3 `json:"forward"`
}

func viewOf(n scene.Node) nodeView {
	return nodeView{Node: n, Forward: n.Forward()}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"spawn":  s.service.LimiterStatus(),
	})
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := s.service.Profiles()
	out := make([]profileSummary, len(profiles))
	for i, p := range profiles {
		out[i] = summarize(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	pv, err := s.service.Preview(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, pv)
}

func (s *Server) handleSpawn(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	logger := logging.WithFields(r.Context(), "profile", name)
	logger.Info("spawn requested")

	res, err := s.service.Spawn(withOrigin(r.Context(), r), name)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	nodes := s.service.Scene()
	views := make([]nodeView, len(nodes))
	for i, n := range nodes {
		views[i] = viewOf(n)
	}
	writeJSON(w, http.StatusOK, sceneResponse{
		Generation: s.service.SceneGeneration(),
		Count:      len(nodes),
		Nodes:      views,
	})
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.FindNode(chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(n))
}

func (s *Server) handleClearScene(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearScene(r.Context()); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPrefabs(w http.ResponseWriter, r *http.Request) {
	prefabs, err := s.service.Prefabs(r.Context())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if prefabs == nil {
		prefabs = []catalog.Prefab{}
	}
	writeJSON(w, http.StatusOK, prefabs)
}

// prefabRequest is the body of POST /api/prefabs.
type prefabRequest struct {
	Name  string   `json:"name"`
	Asset string   `json:"asset"`
	Tags  []string `json:"tags"`
}

func (s *Server) handleSavePrefab(w http.ResponseWriter, r *http.Request) {
	var req prefabRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: decode prefab: %v", errBadRequest, err), 0)
		return
	}

	saved, err := s.service.SavePrefab(r.Context(), catalog.Prefab{
		Name:  req.Name,
		Asset: req.Asset,
		Tags:  req.Tags,
	})
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeletePrefab(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeletePrefab(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.History())
}

// handleParse parses a raw CSV request body and returns the typed rows.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodySize)
	data, err := io.ReadAll(source.NewBOMSkippingReader(body))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("%w: limit %d bytes", source.ErrSourceTooLarge, tooLarge.Limit), 0)
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: read body: %v", errBadRequest, err), 0)
		return
	}

	writeJSON(w, http.StatusOK, s.service.ParseText(string(source.SanitizeUTF8(data))))
}
