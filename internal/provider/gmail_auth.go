package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"inboxguardian/internal/store"
)

// tokenCacheIdentity keys the cached OAuth token before we know the
// account's address.
const tokenCacheIdentity = "default"

// ConnectGmail builds an authenticated Gmail service. A cached token from
// the credential store is validated with a lightweight profile call; when it
// is missing or stale the interactive loopback flow runs, publishing the
// auth URL on uiEvents and accepting a pasted code or redirect URL on
// userResponses. Returns the service and the account's email address.
func ConnectGmail(ctx context.Context, configDir string, tokens *store.CredentialStore, uiEvents chan<- interface{}, userResponses <-chan string) (*gmailv1.Service, string, error) {
	credPath := filepath.Join(configDir, "client_secret.json")
	b, err := os.ReadFile(credPath)
	if err != nil {
		return nil, "", fmt.Errorf("read credentials at %s: %w", credPath, err)
	}

	cfg, err := google.ConfigFromJSON(b,
		gmailv1.GmailReadonlyScope,
		gmailv1.GmailModifyScope,
	)
	if err != nil {
		return nil, "", fmt.Errorf("parse oauth config: %w", err)
	}

	tok, err := tokens.LoadToken(ctx, string(KindGmail), tokenCacheIdentity)
	if err == nil && tok != nil {
		// Validate the cached token by making a lightweight API call.
		client := cfg.Client(ctx, tok)
		svc, err := gmailv1.NewService(ctx, option.WithHTTPClient(client))
		if err == nil {
			var profile *gmailv1.Profile
			profile, err = svc.Users.GetProfile("me").Do()
			if err == nil {
				return svc, profile.EmailAddress, nil
			}
		}
		// Token is invalid or expired; drop it and fall through to re-auth.
		_ = tokens.DeleteToken(ctx, string(KindGmail), tokenCacheIdentity)
	}

	tok, err = tokenFromWeb(ctx, cfg, uiEvents, userResponses)
	if err != nil {
		return nil, "", err
	}
	if err := tokens.SaveToken(ctx, string(KindGmail), tokenCacheIdentity, tok); err != nil {
		return nil, "", fmt.Errorf("cache token: %w", err)
	}

	client := cfg.Client(ctx, tok)
	svc, err := gmailv1.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, "", fmt.Errorf("create gmail service: %w", err)
	}
	profile, err := svc.Users.GetProfile("me").Do()
	if err != nil {
		return nil, "", fmt.Errorf("fetch profile: %w", err)
	}
	return svc, profile.EmailAddress, nil
}

// tokenFromWeb runs a loopback HTTP server to capture the auth code, while
// also accepting a manually pasted code or redirect URL from the UI.
func tokenFromWeb(ctx context.Context, cfg *oauth2.Config, uiEvents chan<- interface{}, userResponses <-chan string) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen on loopback: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	redirect := fmt.Sprintf("http://127.0.0.1:%d/", port)

	oldRedirect := cfg.RedirectURL
	cfg.RedirectURL = redirect
	defer func() { cfg.RedirectURL = oldRedirect }()

	type result struct {
		code string
		err  error
	}
	resCh := make(chan result, 1)

	mux := http.NewServeMux()
	srv := &http.Server{
		ReadHeaderTimeout: 5 * time.Second,
		Handler:           mux,
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "Missing 'code' parameter", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authentication complete. You can close this window.")
		select {
		case resCh <- result{code: code}:
		default:
		}
		go func() { _ = srv.Shutdown(context.Background()) }()
	})
	go func() { _ = srv.Serve(ln) }()

	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if uiEvents != nil {
		uiEvents <- authURL
	}

	select {
	case <-ctx.Done():
		_ = srv.Shutdown(context.Background())
		return nil, ctx.Err()
	case r := <-resCh:
		if r.err != nil {
			return nil, r.err
		}
		tok, err := cfg.Exchange(ctx, strings.TrimSpace(r.code))
		if err != nil {
			return nil, fmt.Errorf("token exchange: %w", err)
		}
		return tok, nil
	case input := <-userResponses:
		_ = srv.Shutdown(context.Background())
		code, err := codeFromInput(input)
		if err != nil {
			return nil, err
		}
		tok, err := cfg.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("token exchange: %w", err)
		}
		return tok, nil
	}
}

// codeFromInput accepts either a bare authorization code or the full
// redirect URL the browser landed on.
func codeFromInput(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("empty authorization code")
	}
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		u, err := url.Parse(input)
		if err != nil {
			return "", fmt.Errorf("parse redirect URL: %w", err)
		}
		code := u.Query().Get("code")
		if code == "" {
			return "", errors.New("no 'code' parameter found in pasted URL")
		}
		return code, nil
	}
	return input, nil
}
