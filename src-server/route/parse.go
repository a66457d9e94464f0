package route

import (
	"net/http"
	"strings"
	"time"

	"schedly/src-server/utils"
)

type ParseReqBody struct {
	Text     string     `json:"text"`
	Timezone string     `json:"timezone"`
	Now      *time.Time `json:"now,omitempty"`
}

// hint falls back to the server's zone when the request names none.
func (b ParseReqBody) hint(as *utils.AppState) string {
	if strings.TrimSpace(b.Timezone) != "" {
		return b.Timezone
	}
	return as.Config.GetLocation().String()
}

func (b ParseReqBody) now() time.Time {
	if b.Now != nil {
		return b.Now.UTC()
	}
	return time.Now().UTC()
}

func Parse(muxer *http.ServeMux, as *utils.AppState) {
	// structured fields only, nothing is stored
	muxer.HandleFunc("POST /parse", func(w http.ResponseWriter, r *http.Request) {
		var reqBody ParseReqBody
		if !decode(w, r, &reqBody) {
			return
		}
		f := as.ParseText(reqBody.Text, reqBody.hint(as), reqBody.now())
		writeJSON(w, http.StatusOK, newFieldsRespBody(f))
	})
}
