package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	ferrors "github.com/matzehuels/stamboom/pkg/errors"
	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/graph"
	"github.com/matzehuels/stamboom/pkg/pipeline"
	"github.com/matzehuels/stamboom/pkg/storage"
	"github.com/matzehuels/stamboom/pkg/tree"
)

// TreeResponse is the body of GET /families/{id}/tree.
type TreeResponse struct {
	Family     family.Family `json:"family"`
	Generation uint64        `json:"generation"`
	Stale      bool          `json:"stale"`
	UpdatedAt  time.Time     `json:"updated_at"`
	Notice     *Notice       `json:"notice,omitempty"`
	Layout     graph.Layout  `json:"layout"`
}

// SearchResult is one hit of GET /families/{id}/search. Center is where
// the view should re-centre to show the person.
type SearchResult struct {
	Person family.Person  `json:"person"`
	NodeID string         `json:"node_id,omitempty"`
	Center *tree.Position `json:"center,omitempty"`
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ferrors.New(ferrors.ErrCodeInvalidInput, "invalid %s %q", name, raw)
	}
	return id, nil
}

// familyWorkspace resolves the {familyID} path parameter.
func (s *Server) familyWorkspace(r *http.Request) (int64, *workspace, error) {
	id, err := pathID(r, "familyID")
	if err != nil {
		return 0, nil, err
	}
	ws, err := s.workspace(r.Context(), id)
	if err != nil {
		return 0, nil, err
	}
	return id, ws, nil
}

func (s *Server) handleListFamilies(w http.ResponseWriter, r *http.Request) {
	families, err := s.repo.ListFamilies(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if families == nil {
		families = []family.Family{}
	}
	respondOK(w, families)
}

type createFamilyRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateFamily(w http.ResponseWriter, r *http.Request) {
	var req createFamilyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := ferrors.ValidateFamilyName(name); err != nil {
		respondError(w, r, err)
		return
	}
	f, err := s.repo.CreateFamily(r.Context(), name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, f)
}

func (s *Server) handleGetFamily(w http.ResponseWriter, r *http.Request) {
	_, ws, err := s.familyWorkspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	snap := ws.store.Snapshot()
	respondOK(w, map[string]any{
		"family":  snap.Family,
		"dataset": snap.Dataset,
		"version": snap.Version,
	})
}

func (s *Server) handleCopyFamily(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "familyID")
	if err != nil {
		respondError(w, r, err)
		return
	}
	res, err := storage.CopyFamily(r.Context(), s.repo, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	loggerFrom(r.Context()).Info("copied family", "from", id, "to", res.Family.ID)
	respondCreated(w, res.Family)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	_, ws, err := s.familyWorkspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	v, stale, err := ws.view()
	if err != nil {
		respondError(w, r, err)
		return
	}
	snap := ws.store.Snapshot()
	resp := TreeResponse{
		Generation: v.Generation,
		Stale:      stale,
		UpdatedAt:  v.UpdatedAt,
		Notice:     ws.notice.Load(),
		Layout:     graph.FromTree(v.Graph),
	}
	if snap.Family != nil {
		resp.Family = *snap.Family
	}
	respondOK(w, resp)
}

func (s *Server) handleTreeSVG(w http.ResponseWriter, r *http.Request) {
	_, ws, err := s.familyWorkspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	v, _, err := ws.view()
	if err != nil {
		respondError(w, r, err)
		return
	}
	opts := s.opts
	opts.Formats = []string{pipeline.FormatSVG}
	opts.Detailed = r.URL.Query().Get("detailed") == "true"
	if snap := ws.store.Snapshot(); snap.Family != nil {
		opts.Title = snap.Family.Name
	}
	artifacts, hit, err := ws.runner.RenderWithCacheInfo(r.Context(), v.Graph, opts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	loggerFrom(r.Context()).Debug("rendered tree", "cache_hit", hit, "generation", v.Generation)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[pipeline.FormatSVG])
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	_, ws, err := s.familyWorkspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, family.Summarize(ws.dataset(), time.Now()))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	_, ws, err := s.familyWorkspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		respondError(w, r, ferrors.New(ferrors.ErrCodeInvalidInput, "query parameter q is required"))
		return
	}

	var members []tree.Node
	if v := ws.refresher.Current(); v != nil {
		members = v.Graph.Members()
	}
	matches := family.Search(ws.dataset().People, q)
	results := make([]SearchResult, 0, len(matches))
	for _, p := range matches {
		res := SearchResult{Person: p}
		for _, n := range members {
			if n.Person != nil && !n.Placeholder && n.Person.ID == p.ID {
				c := n.Center()
				res.NodeID = n.ID
				res.Center = &c
				break
			}
		}
		results = append(results, res)
	}
	respondOK(w, results)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	if s.geocoder == nil {
		respondError(w, r, ferrors.New(ferrors.ErrCodeUnsupported, "map needs a Mapbox token"))
		return
	}
	_, ws, err := s.familyWorkspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	m, err := s.geocoder.Locate(r.Context(), ws.dataset().People)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, m)
}
