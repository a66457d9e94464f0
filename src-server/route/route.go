package route

import (
	"net/http"

	"schedly/src-server/utils"
)

// Register mounts every JSON route on muxer.
func Register(muxer *http.ServeMux, as *utils.AppState) {
	Health(muxer, as)
	Parse(muxer, as)
	Events(muxer, as)
	Series(muxer, as)
}
