package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"

	"ssim-converter-service/internal/infrastructure/config"
	"ssim-converter-service/internal/infrastructure/oauth"
	"ssim-converter-service/pkg/logger"
)

// Prints a Gmail refresh token for GMAIL_REFRESH_TOKEN. GMAIL_CLIENT_ID and
// GMAIL_CLIENT_SECRET must be set in the environment or .env.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GmailClientID == "" || cfg.GmailClientSecret == "" {
		log.Fatal("GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET are required")
	}

	gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, "", logger.NewLogger(cfg.LogLevel)).
		WithRedirectURL("http://localhost:8090/oauth2callback")

	// Create a random state
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate state: %v", err)
	}
	state := hex.EncodeToString(buf)

	// Start an HTTP server to handle the OAuth callback
	http.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		// Check state parameter
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		// Exchange the authorization code for a token
		token, err := gmailOAuth.ExchangeCode(context.Background(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		tokenJSON, err := gmailOAuth.TokenToJSON(token)
		if err == nil {
			fmt.Printf("\nToken:\n%s\n", tokenJSON)
		}
		fmt.Printf("\nGMAIL_REFRESH_TOKEN=%s\n\n", token.RefreshToken)

		// Respond to the user
		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		os.Exit(0)
	})

	fmt.Printf("Open this URL in your browser:\n%s\n", gmailOAuth.GenerateAuthURL(state))

	log.Fatal(http.ListenAndServe(":8090", nil))
}
