package handlers

import (
	"net/http"

	"github.com/sdko-org/content-gateway/internal/cache"
)

func writeObject(w http.ResponseWriter, obj *cache.Object) {
	for _, name := range obj.Headers.Keys() {
		value, _ := obj.Headers.Get(name)
		w.Header().Set(name, value)
	}
	w.WriteHeader(obj.Status)
	w.Write(obj.Body)
}

// The two failure bodies are part of the client contract: origin failures of
// any kind surface as this 404 and unexpected faults as this 500, with the
// real cause visible only in telemetry.

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("Not Found"))
}

func writeInternalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte("Internal Server Error"))
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
