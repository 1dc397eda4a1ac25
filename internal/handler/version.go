package handler

import (
	"net/http"
	"runtime"
)

// VersionInfo contains version and build information
type VersionInfo struct {
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	TerminalID string `json:"terminal_id"`
	RemoteMode string `json:"remote_mode"`
}

// HandleVersion identifies the build and terminal, so support can tell which till they are looking at
func HandleVersion(version, terminalID, remoteMode string) http.HandlerFunc {
	info := VersionInfo{
		Version:    version,
		GoVersion:  runtime.Version(),
		TerminalID: terminalID,
		RemoteMode: remoteMode,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, info)
	}
}
