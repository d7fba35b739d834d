package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"cached": s.lib.Cached(),
		"stats":  s.lib.Stats().Snapshot(),
	}
	if s.hub != nil {
		resp["reload_clients"] = s.hub.Len()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
