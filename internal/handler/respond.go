package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// writeBody writes a pre-encoded JSON body with the given status.
func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError writes {"error": msg} with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("error")
	e.Str(msg)
	e.ObjEnd()
	writeBody(w, status, e.Bytes())
}
