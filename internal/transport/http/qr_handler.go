package http

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/germain250/quizly/internal/app"
)

// NewQRHandler serves a PNG QR code encoding the join URL for a live room,
// so a host can put the code on a shared screen.
func NewQRHandler(service *app.RoomService, publicURL string) httprouter.Handle {
	publicURL = strings.TrimSuffix(publicURL, "/")
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := strings.ToUpper(ps.ByName("code"))
		if !service.RoomExists(code) {
			http.NotFound(w, r)
			return
		}
		png, err := qrcode.Encode(publicURL+"/?join="+code, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to render qr code", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}
