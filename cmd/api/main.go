package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/hkretail/promo-dispatch/internal/config"
	"github.com/hkretail/promo-dispatch/internal/drive"
)

// Standalone Google Drive service: lists the promotion input folder and
// downloads the latest input pair on demand.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	credentials, err := driveCredentials(cfg.Drive)
	if err != nil {
		log.Fatalf("Failed to load Google Drive credentials: %v", err)
	}

	driveService, err := drive.NewService(credentials)
	if err != nil {
		log.Fatalf("Failed to initialize Google Drive service: %v", err)
	}

	fetcher := drive.NewFetcher(driveService)
	handler := drive.NewHandler(driveService, fetcher, drive.FetchOptions{
		FolderID:        cfg.Drive.FolderID,
		DownloadDir:     cfg.App.UploadDir,
		InventoryPrefix: drive.InventoryPrefix,
		PromotionPrefix: drive.PromotionPrefix,
	})

	r := mux.NewRouter()
	handler.RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Drive service starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func driveCredentials(cfg config.DriveConfig) (string, error) {
	if env := os.Getenv("GOOGLE_DRIVE_CREDENTIALS_JSON"); env != "" {
		return env, nil
	}
	if cfg.CredentialsFile == "" {
		return "", fmt.Errorf("set GOOGLE_DRIVE_CREDENTIALS_JSON or DRIVE_CREDENTIALS_FILE")
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
