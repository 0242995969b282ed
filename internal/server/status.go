package server

import (
	"encoding/json"
	"net/http"
)

// Status is the body of the status endpoint
type Status struct {
	DeviceConnected bool   `json:"device_connected"`
	ClientAttached  bool   `json:"client_attached"`
	RemoteAddr      string `json:"remote_addr,omitempty"`
	ClientsServed   int    `json:"clients_served"`
	Packets         Stats  `json:"packets"`
}

// Status returns a snapshot of the bridge state
func (s *Server) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		DeviceConnected: s.device.IsConnected(),
		ClientAttached:  s.client != nil,
		ClientsServed:   s.clients,
		Packets:         s.stats,
	}
	if s.client != nil {
		st.RemoteAddr = s.client.RemoteAddr().String()
	}
	return st
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Status())
}
