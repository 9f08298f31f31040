package api

import (
	"net/http"

	"fyf-go/internal/fyf"
	"fyf-go/internal/model"
)

// canSee composes the view gate: the author always sees their own entries,
// everyone else goes through the permission table.
func canSee(entry *model.Entry, user *model.User) bool {
	return entry.AuthorID == user.ID || fyf.CanView(entry, user.ID)
}

// canEdit composes the modify gate the same way.
func canEdit(entry *model.Entry, user *model.User) bool {
	return entry.AuthorID == user.ID || fyf.CanModify(entry, user.ID)
}

// loadGated fetches the entry and applies gate, hiding gated-off entries
// behind a 404 rather than revealing their existence.
func (s *Server) loadGated(w http.ResponseWriter, r *http.Request, gate func(*model.Entry, *model.User) bool) *model.Entry {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeMessage(w, http.StatusBadRequest, "id is required")
		return nil
	}

	entry, err := s.service.GetEntry(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return nil
	}
	if !gate(entry, requestUser(r)) {
		writeMessage(w, http.StatusNotFound, "entry not found")
		return nil
	}
	return entry
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	q := fyf.ListQuery{
		AuthorID:       requestUser(r).ID,
		IncludeDeleted: r.URL.Query().Get("all") == "true",
		ParentID:       r.URL.Query().Get("parent_id"),
	}

	entries, err := s.service.ListEntries(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []*model.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry := s.loadGated(w, r, canSee)
	if entry == nil {
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleEntryContent(w http.ResponseWriter, r *http.Request) {
	entry := s.loadGated(w, r, canSee)
	if entry == nil {
		return
	}

	url, err := s.service.ContentURL(r.Context(), entry.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

type addEntryBody struct {
	Name     string          `json:"name"`
	Type     model.EntryType `json:"type"`
	ParentID string          `json:"parent_id,omitempty"`
}

type addEntryResponse struct {
	Entry     *model.Entry `json:"entry"`
	UploadURL string       `json:"upload_url,omitempty"`
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	var body addEntryBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Name == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	if !body.Type.Valid() {
		writeMessage(w, http.StatusBadRequest, "unknown entry type")
		return
	}

	entry, err := s.service.AddEntry(r.Context(), body.Name, body.Type, requestUser(r).ID, body.ParentID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := addEntryResponse{Entry: entry}
	if entry.Type != model.EntryTypeDirectory {
		url, err := s.service.UploadURL(r.Context(), entry.ID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.UploadURL = url
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	entry := s.loadGated(w, r, canSee)
	if entry == nil {
		return
	}

	finalized, err := s.service.Finalize(r.Context(), entry.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, finalized)
}

type updateEntryBody struct {
	Name                *string                `json:"name"`
	ParentID            *string                `json:"parent_id"`
	Permission          *model.EntryPermission `json:"permission"`
	PermissionInclusive *[]string              `json:"permission_inclusive"`
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	entry := s.loadGated(w, r, canEdit)
	if entry == nil {
		return
	}

	var body updateEntryBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Permission != nil && !body.Permission.Valid() {
		writeMessage(w, http.StatusBadRequest, "unknown permission mode")
		return
	}

	updated, err := s.service.UpdateEntry(r.Context(), entry.ID, fyf.EntryUpdate{
		Name:                body.Name,
		ParentID:            body.ParentID,
		Permission:          body.Permission,
		PermissionInclusive: body.PermissionInclusive,
	}, requestUser(r).ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteEntry soft-deletes by default; force=true hard-deletes the
// row and purges the backing object.
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	entry := s.loadGated(w, r, canEdit)
	if entry == nil {
		return
	}

	if r.URL.Query().Get("force") == "true" {
		if err := s.service.DeleteEntry(r.Context(), entry.ID, requestUser(r).ID, true); err != nil {
			s.writeError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "ok")
		return
	}

	removed, err := s.service.RemoveEntry(r.Context(), entry.ID, requestUser(r).ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

func (s *Server) handleRestoreEntry(w http.ResponseWriter, r *http.Request) {
	entry := s.loadGated(w, r, canEdit)
	if entry == nil {
		return
	}

	restored, err := s.service.RestoreEntry(r.Context(), entry.ID, requestUser(r).ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restored)
}
