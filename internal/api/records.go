package api

import (
	"net/http"
	"slices"

	ferrors "github.com/matzehuels/stamboom/pkg/errors"
	"github.com/matzehuels/stamboom/pkg/family"
)

// Record handlers write to the repository first and then to the workspace
// store, whose subscription re-triggers the layout. Both writes run under
// the workspace's write lock so the store applies them in repository order.

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	familyID, ws, err := s.familyWorkspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var p family.Person
	if err := decodeJSON(w, r, &p); err != nil {
		respondError(w, r, err)
		return
	}
	if err := ferrors.ValidatePerson(p); err != nil {
		respondError(w, r, err)
		return
	}
	p.ID, p.FamilyID = 0, familyID
	var created family.Person
	err = ws.mutate(func() error {
		if created, err = s.repo.CreatePerson(r.Context(), familyID, p); err != nil {
			return err
		}
		return ws.store.AddPerson(created)
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, created)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	familyID, ws, err := s.familyWorkspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var p family.Person
	if err := decodeJSON(w, r, &p); err != nil {
		respondError(w, r, err)
		return
	}
	if err := ferrors.ValidatePerson(p); err != nil {
		respondError(w, r, err)
		return
	}
	p.ID, p.FamilyID = id, familyID
	var updated family.Person
	err = ws.mutate(func() error {
		if updated, err = s.repo.UpdatePerson(r.Context(), p); err != nil {
			return err
		}
		return ws.store.UpdatePerson(updated)
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, updated)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	familyID, ws, err := s.familyWorkspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	err = ws.mutate(func() error {
		ds := ws.dataset()
		if _, ok := ds.PersonByID(id); !ok {
			return ferrors.New(ferrors.ErrCodePersonNotFound, "person %d not found", id)
		}
		if marriages, children := family.Dependents(ds, id); len(marriages) > 0 || len(children) > 0 {
			return ferrors.New(ferrors.ErrCodeHasDependents,
				"person %d is still in %d marriage(s) and %d child link(s)", id, len(marriages), len(children))
		}
		if err := s.repo.DeletePerson(r.Context(), familyID, id); err != nil {
			return err
		}
		return ws.store.DeletePerson(id)
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkPartners requires every known partner to be a member of ds.
func checkPartners(ds family.Dataset, m family.Marriage) error {
	if err := ferrors.ValidateMarriage(m); err != nil {
		return err
	}
	for _, p := range m.Partners() {
		if p == nil {
			continue
		}
		if _, ok := ds.PersonByID(*p); !ok {
			return ferrors.New(ferrors.ErrCodePersonNotFound, "partner %d not found", *p)
		}
	}
	return nil
}

func (s *Server) handleCreateMarriage(w http.ResponseWriter, r *http.Request) {
	familyID, ws, err := s.familyWorkspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var m family.Marriage
	if err := decodeJSON(w, r, &m); err != nil {
		respondError(w, r, err)
		return
	}
	m.ID, m.FamilyID = 0, familyID
	var created family.Marriage
	err = ws.mutate(func() error {
		if err := checkPartners(ws.dataset(), m); err != nil {
			return err
		}
		if created, err = s.repo.CreateMarriage(r.Context(), familyID, m); err != nil {
			return err
		}
		return ws.store.AddMarriage(created)
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, created)
}

func (s *Server) handleUpdateMarriage(w http.ResponseWriter, r *http.Request) {
	familyID, ws, err := s.familyWorkspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var m family.Marriage
	if err := decodeJSON(w, r, &m); err != nil {
		respondError(w, r, err)
		return
	}
	m.ID, m.FamilyID = id, familyID
	var updated family.Marriage
	err = ws.mutate(func() error {
		if err := checkPartners(ws.dataset(), m); err != nil {
			return err
		}
		if updated, err = s.repo.UpdateMarriage(r.Context(), m); err != nil {
			return err
		}
		return ws.store.UpdateMarriage(updated)
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, updated)
}

func (s *Server) handleDeleteMarriage(w http.ResponseWriter, r *http.Request) {
	familyID, ws, err := s.familyWorkspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	err = ws.mutate(func() error {
		if err := s.repo.DeleteMarriage(r.Context(), familyID, id); err != nil {
			return err
		}
		return ws.store.DeleteMarriage(id)
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateChild(w http.ResponseWriter, r *http.Request) {
	familyID, ws, err := s.familyWorkspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var c family.Child
	if err := decodeJSON(w, r, &c); err != nil {
		respondError(w, r, err)
		return
	}
	c.ID, c.FamilyID = 0, familyID
	var created family.Child
	err = ws.mutate(func() error {
		ds := ws.dataset()
		if !slices.ContainsFunc(ds.Marriages, func(m family.Marriage) bool { return m.ID == c.MarriageID }) {
			return ferrors.New(ferrors.ErrCodeNotFound, "marriage %d not found", c.MarriageID)
		}
		if _, ok := ds.PersonByID(c.ChildID); !ok {
			return ferrors.New(ferrors.ErrCodePersonNotFound, "child %d not found", c.ChildID)
		}
		if created, err = s.repo.CreateChild(r.Context(), familyID, c); err != nil {
			return err
		}
		return ws.store.AddChild(created)
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, created)
}

func (s *Server) handleDeleteChild(w http.ResponseWriter, r *http.Request) {
	familyID, ws, err := s.familyWorkspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	err = ws.mutate(func() error {
		if err := s.repo.DeleteChild(r.Context(), familyID, id); err != nil {
			return err
		}
		return ws.store.DeleteChild(id)
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
