package webhook

import (
	"net/http"
	"strconv"
)

type groupRegisterRequest struct {
	GroupID int64 `json:"group_id"`
}

type topicNamesRequest struct {
	// Names maps thread IDs (JSON object keys, therefore strings) to titles.
	Names map[string]string `json:"names"`
}

func groupID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return 0, false
	}
	return id, true
}

// handleGroupRegister verifies the bot can see the group and returns its
// metadata so the backend can store the association.
func (s *Server) handleGroupRegister(w http.ResponseWriter, r *http.Request) {
	var req groupRegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.GroupID == 0 {
		writeError(w, http.StatusBadRequest, "group_id is required")
		return
	}

	chat, err := s.notifier.Chat(req.GroupID)
	if err != nil {
		writeError(w, http.StatusForbidden, "bot cannot access this group")
		return
	}
	writeOK(w, envelope{
		"group": envelope{
			"id":       chat.ID,
			"title":    chat.Title,
			"type":     string(chat.Type),
			"username": chat.Username,
		},
	})
}

func (s *Server) handleGroupMetadata(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}
	chat, err := s.notifier.Chat(id)
	if err != nil {
		writeError(w, http.StatusForbidden, "bot cannot access this group")
		return
	}
	writeOK(w, envelope{
		"group": envelope{
			"id":          chat.ID,
			"title":       chat.Title,
			"type":        string(chat.Type),
			"username":    chat.Username,
			"description": chat.Description,
		},
	})
}

func (s *Server) handleGroupBasic(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}
	chat, err := s.notifier.Chat(id)
	if err != nil {
		writeError(w, http.StatusForbidden, "bot cannot access this group")
		return
	}
	writeOK(w, envelope{
		"id":    chat.ID,
		"title": chat.Title,
		"type":  string(chat.Type),
	})
}

// handleGroupTopics runs the best-effort probe. Results are explicitly
// flagged possibly incomplete.
func (s *Server) handleGroupTopics(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}
	result := s.discoverer.Discover(r.Context(), id)
	writeOK(w, envelope{
		"group_id":            result.GroupID,
		"topics":              result.Topics,
		"possibly_incomplete": result.PossiblyIncomplete,
	})
}

// handleTopicNames stores backend-supplied topic titles, the only reliable
// source of names the probe itself cannot learn.
func (s *Server) handleTopicNames(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}
	var req topicNamesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Names) == 0 {
		writeError(w, http.StatusBadRequest, "names is required")
		return
	}

	names := make(map[int]string, len(req.Names))
	for key, title := range req.Names {
		threadID, err := strconv.Atoi(key)
		if err != nil || threadID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid thread id: "+key)
			return
		}
		names[threadID] = title
	}
	s.registry.SetNames(id, names)
	writeOK(w, envelope{
		"group_id": id,
		"stored":   len(names),
	})
}
