package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"hostsman/internal/resolve"
	"hostsman/internal/session"
	"hostsman/internal/store"
	"hostsman/pkg/models"
	"hostsman/pkg/utils"
)

// LineJSON represents one working line for display
type LineJSON struct {
	Index    int    `json:"index"`
	Kind     string `json:"kind"`
	IP       string `json:"ip,omitempty"`
	Hostname string `json:"hostname,omitempty"`
	Enabled  bool   `json:"enabled"`
	Comment  string `json:"comment,omitempty"`
	Text     string `json:"text,omitempty"`
	IPSort   uint32 `json:"ipSort,omitempty"`
}

// ProfileJSON represents a profile summary in listings
type ProfileJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsActive   bool   `json:"isActive"`
	EntryCount int    `json:"entryCount"`
}

// EntryActionRequest carries an entry mutation command
type EntryActionRequest struct {
	Action    string `json:"action"`
	IP        string `json:"ip"`
	Hostname  string `json:"hostname"`
	DNSServer string `json:"dnsServer"`
	Index     int    `json:"index"`
}

// ProfileActionRequest carries a profile command
type ProfileActionRequest struct {
	Action string `json:"action"`
	Name   string `json:"name"`
	ID     string `json:"id"`
	Path   string `json:"path"`
}

// ActionResponse reports an operation outcome. FileError and StoreError
// surface the two halves of a dual write independently.
type ActionResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	FileError  string `json:"fileError,omitempty"`
	StoreError string `json:"storeError,omitempty"`
}

// handleLinesAPI returns the current working lines
func (s *Server) handleLinesAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	lines := s.ctrl.Lines()
	jsonLines := make([]LineJSON, len(lines))
	for i, line := range lines {
		jsonLines[i] = LineJSON{Index: i, Kind: string(line.Kind)}
		switch line.Kind {
		case models.LineEntry:
			if line.Entry != nil {
				jsonLines[i].IP = line.Entry.IP
				jsonLines[i].Hostname = line.Entry.Hostname
				jsonLines[i].Enabled = line.Entry.Enabled
				jsonLines[i].Comment = line.Entry.Comment
				jsonLines[i].IPSort = utils.SortKey(line.Entry.IP)
			}
		case models.LineComment:
			jsonLines[i].Text = line.Text
		}
	}

	profileName := ""
	if selected := s.ctrl.Selected(); selected != nil {
		profileName = selected.Name
	}

	response := map[string]interface{}{"data": jsonLines, "profile": profileName}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode lines JSON: %v", err)
	}
}

// handleEntriesAPI handles entry mutation commands
func (s *Server) handleEntriesAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"Method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	var req EntryActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, "Invalid JSON data", http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "add":
		result, err := s.ctrl.AddManualEntry(req.IP, req.Hostname)
		s.writeSyncResponse(w, result, err, "Entry added")
	case "resolve":
		ip, result, err := s.ctrl.ResolveAndAdd(r.Context(), req.Hostname, req.DNSServer)
		s.writeSyncResponse(w, result, err, "Resolved to "+ip)
	case "delete":
		result, err := s.ctrl.DeleteEntry(req.Index)
		s.writeSyncResponse(w, result, err, "Entry deleted")
	case "edit":
		if err := s.ctrl.BeginEdit(req.Index); err != nil {
			s.writeSyncResponse(w, session.SyncResult{}, err, "")
			return
		}
		if err := s.ctrl.SetDraft(req.IP, req.Hostname); err != nil {
			s.ctrl.CancelEdit()
			s.writeSyncResponse(w, session.SyncResult{}, err, "")
			return
		}
		result, err := s.ctrl.CommitEdit()
		s.writeSyncResponse(w, result, err, "Entry updated")
	default:
		s.writeJSONError(w, "Unknown action: "+req.Action, http.StatusBadRequest)
	}
}

// handleProfilesAPI handles the profile listing and profile commands
func (s *Server) handleProfilesAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if r.Method == http.MethodGet {
		s.handleProfilesList(w)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"Method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req ProfileActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, "Invalid JSON data", http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "create":
		profile, err := s.ctrl.CreateProfile(req.Name)
		if err != nil {
			s.writeActionError(w, err)
			return
		}
		s.writeActionSuccess(w, "Created profile "+profile.Name)
	case "select":
		result, err := s.ctrl.SelectProfile(req.ID)
		s.writeSyncResponse(w, result, err, "Profile activated")
	case "delete":
		if err := s.ctrl.DeleteProfile(req.ID); err != nil {
			s.writeActionError(w, err)
			return
		}
		s.writeActionSuccess(w, "Profile deleted")
	case "export":
		if err := s.ctrl.ExportProfile(req.Path); err != nil {
			s.writeActionError(w, err)
			return
		}
		s.writeActionSuccess(w, "Profile exported to "+req.Path)
	case "import":
		profile, err := s.ctrl.ImportProfile(req.Path)
		if err != nil {
			s.writeActionError(w, err)
			return
		}
		s.writeActionSuccess(w, "Imported profile "+profile.Name)
	default:
		s.writeJSONError(w, "Unknown action: "+req.Action, http.StatusBadRequest)
	}
}

func (s *Server) handleProfilesList(w http.ResponseWriter) {
	profiles := s.ctrl.Profiles()
	jsonProfiles := make([]ProfileJSON, len(profiles))
	for i, profile := range profiles {
		entryCount := 0
		for _, line := range profile.Hosts {
			if line.Kind == models.LineEntry {
				entryCount++
			}
		}
		jsonProfiles[i] = ProfileJSON{
			ID:         profile.ID,
			Name:       profile.Name,
			IsActive:   profile.IsActive,
			EntryCount: entryCount,
		}
	}

	selectedID := ""
	if selected := s.ctrl.Selected(); selected != nil {
		selectedID = selected.ID
	}

	response := map[string]interface{}{"data": jsonProfiles, "selected": selectedID}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode profiles JSON: %v", err)
	}
}

// handleStatusAPI returns the transient status of the last operation
func (s *Server) handleStatusAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	lastError, lastStatus := s.ctrl.Status()
	response := map[string]string{"error": lastError, "status": lastStatus}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode status JSON: %v", err)
	}
}

// writeSyncResponse renders a dual-write outcome. Validation and policy
// failures arrive as err; partial persistence failures arrive inside the
// sync result with both halves reported separately.
func (s *Server) writeSyncResponse(w http.ResponseWriter, result session.SyncResult, err error, message string) {
	if err != nil {
		s.writeActionError(w, err)
		return
	}

	response := ActionResponse{Success: result.Ok(), Message: message}
	if result.FileErr != nil {
		response.FileError = result.FileErr.Error()
	}
	if result.StoreErr != nil {
		response.StoreError = result.StoreErr.Error()
	}
	json.NewEncoder(w).Encode(response)
}

func (s *Server) writeActionError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if isClientError(err) {
		status = http.StatusBadRequest
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ActionResponse{Success: false, Error: err.Error()})
}

func (s *Server) writeActionSuccess(w http.ResponseWriter, message string) {
	json.NewEncoder(w).Encode(ActionResponse{Success: true, Message: message})
}

func (s *Server) writeJSONError(w http.ResponseWriter, message string, status int) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ActionResponse{Success: false, Error: message})
}

// isClientError classifies validation and policy failures, which map to
// 400 rather than 500.
func isClientError(err error) bool {
	for _, candidate := range []error{
		session.ErrEmptyField,
		session.ErrEmptyHostname,
		session.ErrNoProfileSelected,
		session.ErrIndexOutOfRange,
		session.ErrNotAnEntry,
		session.ErrNotEditing,
		session.ErrDeleteActive,
		session.ErrDeleteDefault,
		session.ErrProfileNotFound,
		store.ErrEmptyName,
		store.ErrDuplicateName,
		resolve.ErrInvalidServer,
		resolve.ErrNoAddress,
	} {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}
