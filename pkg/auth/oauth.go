package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	// ClientSecretsFile is the Google API credentials.json, looked up in the config directory.
	ClientSecretsFile = "credentials.json"

	// TokenFile caches the user's OAuth token next to the credentials.
	TokenFile = "token.json"

	// LocalhostAuthPort is where the local redirect listener runs during the consent flow.
	LocalhostAuthPort = "6789"

	xdgAppName = "taskgrid"

	authTimeout = 5 * time.Minute
)

// Scopes are read-only: taskgrid only draws events, it never edits them.
var Scopes = []string{calendar.CalendarReadonlyScope}

// GetConfig creates an oauth2.Config from the client secrets file and specified scopes.
func GetConfig(scopes []string) (*oauth2.Config, error) {
	xdgConfigBase, err := GetXdgHome()
	if err != nil {
		return nil, err
	}

	clientSecretsFile := filepath.Join(xdgConfigBase, ClientSecretsFile)
	b, err := os.ReadFile(clientSecretsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", clientSecretsFile, err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = redirectURL(config.RedirectURL)
	return config, nil
}

// redirectURL pins localhost and out-of-band redirects to LocalhostAuthPort,
// because the consent flow listens there.
func redirectURL(configured string) string {
	fallback := fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
	if configured == "" || configured == "urn:ietf:wg:oauth:2.0:oob" {
		return fallback
	}
	u, err := url.Parse(configured)
	if err != nil {
		slog.Warn("could not parse redirect URL, using it as is", "url", configured, "error", err)
		return configured
	}
	if u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
		slog.Warn("redirect URL is not a localhost callback", "url", configured)
		return configured
	}
	u.Host = net.JoinHostPort(u.Hostname(), LocalhostAuthPort)
	return u.String()
}

// GetClient retrieves an authenticated *http.Client.
// It tries to load an existing token, refreshes it if expired, or
// initiates a new web-based authorization flow if no token exists.
func GetClient(ctx context.Context, scopes []string) (*http.Client, error) {
	config, err := GetConfig(scopes)
	if err != nil {
		return nil, err
	}

	xdgConfigBase, err := GetXdgHome()
	if err != nil {
		return nil, err
	}

	tokenFile := filepath.Join(xdgConfigBase, TokenFile)
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		slog.Info("no cached token, starting web authorization", "path", tokenFile)
		tok, err = getTokenFromWeb(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("failed to get token from web: %w", err)
		}
		if err := saveToken(tokenFile, tok); err != nil {
			return nil, err
		}
	}

	// Refresh now so a rotated token is persisted before the client is used.
	src := config.TokenSource(ctx, tok)
	current, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if current.AccessToken != tok.AccessToken || current.RefreshToken != tok.RefreshToken {
		slog.Debug("token refreshed, saving", "path", tokenFile)
		if err := saveToken(tokenFile, current); err != nil {
			slog.Warn("could not save refreshed token", "error", err)
		}
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(current, src)), nil
}

// getTokenFromWeb runs the authorization code flow through a local redirect listener.
func getTokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", net.JoinHostPort("localhost", LocalhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				select {
				case errCh <- errors.New("authorization code not found in redirect URL"):
				default:
				}
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			select {
			case codeCh <- code:
			default:
			}
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	defer server.Close()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- fmt.Errorf("HTTP server error: %w", err):
			default:
			}
		}
	}()

	// AccessTypeOffline is needed for a refresh token.
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Fprintf(os.Stderr, "Open the following URL in your browser to authorize taskgrid:\n%s\n", authURL)

	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	select {
	case code := <-codeCh:
		tok, err := config.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization timed out: %w", ctx.Err())
	}
}

// tokenFromFile reads an oauth2.Token from a JSON file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

// saveToken saves an oauth2.Token to a JSON file readable only by the owner.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// RemoveToken deletes the cached token so the next run re-authorizes.
func RemoveToken() error {
	xdgConfigBase, err := GetXdgHome()
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(xdgConfigBase, TokenFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// GetCalendarService creates an authenticated Google Calendar service.
func GetCalendarService(ctx context.Context) (*calendar.Service, error) {
	client, err := GetClient(ctx, Scopes)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client for Calendar API: %w", err)
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google Calendar service: %w", err)
	}
	return srv, nil
}

// GetXdgHome returns $XDG_CONFIG_HOME/taskgrid, defaulting to ~/.config/taskgrid.
func GetXdgHome() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, xdgAppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}
