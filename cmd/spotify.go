package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/formatter"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/models"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/server"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/services"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/shared"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/tasks"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// spotifyService returns the Spotify client, building it on first use.
func (r *Runner) spotifyService() (*services.SpotifyService, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}

	svc, err := services.NewSpotifyService(r.config.Credentials.Spotify)
	if err != nil {
		return nil, fmt.Errorf("%w (set credentials.spotify client_id and client_secret in config.toml)", err)
	}
	r.spotify = svc
	return svc, nil
}

// SpotifyAuth performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// exchanges the auth code for tokens.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath != "" && configPath != r.configPath {
		if _, err := os.Stat(configPath); err == nil {
			config, err := shared.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			r.config = config
		}
		r.configPath = configPath
		r.spotify = nil
	}

	if r.config.Credentials.Spotify.ClientID == "" || r.config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set in %s or the environment", shared.ErrMissingCredentials, configPath)
	}

	spotify, err := r.spotifyService()
	if err != nil {
		return err
	}

	token, err := r.doOAuth(ctx, spotify, "authorization")
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	r.writePlain("You can now run: mbli spotify export\n")

	return nil
}

// SpotifyExport writes the union of followed and saved-album artists to a
// list file ready for the resolver.
func (r *Runner) SpotifyExport(ctx context.Context, cmd *cli.Command) error {
	spotify, err := r.spotifyService()
	if err != nil {
		return err
	}

	if err := spotify.Authenticate(ctx, r.config.Credentials.Spotify.Token()); err != nil {
		reauthed, authErr := r.handleSpotifyAuthError(ctx, spotify, err)
		if !reauthed {
			return fmt.Errorf("%w (run mbli spotify auth first)", err)
		}
		if authErr != nil {
			return authErr
		}
	}

	spotify.SetTokenRefreshCallback(func(token *oauth2.Token) {
		if err := r.saveTokens(token); err != nil {
			r.logger.Warnf("failed to persist refreshed tokens %v", err)
		}
	})

	outputPath := cmd.String("output")
	opts := tasks.ExportOpts{SkipAlbums: cmd.Bool("skip-albums")}
	engine := tasks.NewExportEngine(spotify)

	run := r.startRun(models.RunExport, "spotify", outputPath)

	result, runErr := r.runExport(ctx, engine, opts)
	if reauthed, authErr := r.handleSpotifyAuthError(ctx, spotify, runErr); reauthed {
		if authErr != nil {
			return authErr
		}
		result, runErr = r.runExport(ctx, engine, opts)
	}
	if errors.Is(runErr, context.Canceled) {
		r.writePlain("\nExport cancelled.\n")
		return nil
	}
	if runErr != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, runErr)
	}

	r.finishRun(run, len(result.Artists), len(result.Artists), 0)

	if cmd.Bool("dry-run") {
		return r.writePlain("[DRYRUN] Found %d unique artists and %d unique albums.\n", len(result.Artists), result.Albums)
	}

	if err := formatter.WriteArtistList(outputPath, result.Artists); err != nil {
		return fmt.Errorf("failed to write artists file: %w", err)
	}

	return r.writePlain("Wrote %d artists and %d albums to %s\n", len(result.Artists), result.Albums, outputPath)
}

// runExport pages through the Spotify library with a spinner on terminals
// and plain progress lines everywhere else.
func (r *Runner) runExport(ctx context.Context, engine *tasks.ExportEngine, opts tasks.ExportOpts) (*tasks.ExportResult, error) {
	progress := make(chan tasks.ProgressUpdate, 50)

	if !r.isTerminal() {
		drain := r.printProgress(progress)
		result, err := engine.Run(ctx, progress, opts)
		drain()
		return result, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		result *tasks.ExportResult
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, runErr = engine.Run(runCtx, progress, opts)
		close(progress)
	}()

	spin := ui.NewSpinner(progress, cancel)
	if _, err := tea.NewProgram(spin, tea.WithOutput(r.output)).Run(); err != nil {
		r.logger.Warnf("progress display failed %v", err)
	}
	<-done

	return result, runErr
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, spotify *services.SpotifyService, prefix string) (*oauth2.Token, error) {
	state := shared.GenerateID()
	authURL := spotify.GetAuthURL(state)

	oauthHandler := server.NewOAuthHandler(spotify, state)
	router := server.NewBasicRouter()
	router.Use(r.requestLog)
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server for %s at %v", prefix, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

// requestLog traces callback requests while the OAuth server waits.
func (r *Runner) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.logger.Debug("oauth callback request", "method", req.Method, "path", req.URL.Path)
		next.ServeHTTP(w, req)
	})
}

// handleSpotifyAuthError starts reauthorization when err is a token
// expiration. The first return reports whether the caller should retry.
func (r *Runner) handleSpotifyAuthError(ctx context.Context, spotify *services.SpotifyService, err error) (bool, error) {
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, shared.ErrTokenExpired) {
		return false, err
	}

	r.writePlainln("⚠ Authentication token expired. Starting reauthorization...")

	token, oauthErr := r.doOAuth(ctx, spotify, "reauthorization")
	if oauthErr != nil {
		return true, fmt.Errorf("reauthorization failed: %w", oauthErr)
	}

	if saveErr := r.saveTokens(token); saveErr != nil {
		return true, saveErr
	}
	if r.configPath != "" {
		r.writePlain("✓ New tokens saved to %s\n", r.configPath)
	}

	if authErr := spotify.Authenticate(ctx, r.config.Credentials.Spotify.Token()); authErr != nil {
		return true, fmt.Errorf("failed to authenticate with new tokens: %w", authErr)
	}

	r.writePlainln("✓ Successfully reauthenticated. Retrying operation...")

	return true, nil
}
