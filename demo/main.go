// The demo application packaged by demobake. A minimal HTTP server
// that reports its own version, enough to verify an image works after
// a local load or a registry pull.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
)

var version = "dev"

func main() {
	addr := ":8080"
	if v := os.Getenv("DEMO_ADDR"); v != "" {
		addr = v
	}

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "demo %s\n", version)
	})
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	log.Printf("demo %s listening on %s", version, addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
