// Standalone viewer for extracted broker summary CSVs. Run it next to the
// analyzer's output directory and open http://localhost:8080.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	outputDir := os.Getenv("OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "../output"
	}

	fs := http.FileServer(http.Dir("static"))
	http.Handle("/static/", http.StripPrefix("/static/", fs))

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.ServeFile(w, r, filepath.Join("static", "index.html"))
			return
		}
		http.NotFound(w, r)
	})

	// List the available broker summary files as JSON so the dashboard
	// can populate its symbol picker.
	http.HandleFunc("/api/files", func(w http.ResponseWriter, r *http.Request) {
		entries, err := os.ReadDir(outputDir)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var files []string
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), "_broker_summary.csv") {
				files = append(files, e.Name())
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(files); err != nil {
			log.Printf("encode file list: %v", err)
		}
	})

	dataFs := http.FileServer(http.Dir(outputDir))
	http.Handle("/data/", http.StripPrefix("/data/", dataFs))

	log.Println("Starting server on :8080")
	if err := http.ListenAndServe(":8080", nil); err != nil {
		log.Fatal(err)
	}
}
