package route

import (
	"net/http"

	"schedly/src-server/utils"
)

func Health(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := as.RawDB.PingContext(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Database unreachable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"uptime": as.GetUptime().String(),
		})
	})
}
