package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/models"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/repositories"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/services"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/shared"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/tasks"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	musicbrainz *services.MusicBrainzService
	lidarr      *services.LidarrService
	spotify     *services.SpotifyService
	history     *repositories.HistoryRepository
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	MusicBrainz *services.MusicBrainzService
	Lidarr      *services.LidarrService
	Spotify     *services.SpotifyService
	History     *repositories.HistoryRepository
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		musicbrainz: opts.MusicBrainz,
		lidarr:      opts.Lidarr,
		spotify:     opts.Spotify,
		history:     opts.History,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, resolveCommand, lidarrCommand, bulkCommand, spotifyCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// recorder adapts the optional history repository to the engines' interface.
// Returns an untyped nil when no database is attached so the engines skip
// recording instead of calling through a nil repository.
func (r *Runner) recorder() tasks.Recorder {
	if r.history == nil {
		return nil
	}
	return r.history
}

// startRun opens a history run, best-effort. Returns nil when no history
// database is attached or the insert fails.
func (r *Runner) startRun(kind models.RunKind, inputPath, outputPath string) *models.Run {
	if r.history == nil {
		return nil
	}

	run, err := r.history.StartRun(kind, inputPath, outputPath)
	if err != nil {
		r.logger.Warnf("failed to record run start %v", err)
		return nil
	}
	return run
}

// finishRun stamps final counts onto a run opened by startRun, best-effort.
func (r *Runner) finishRun(run *models.Run, total, succeeded, failed int) {
	if run == nil || r.history == nil {
		return
	}

	if err := r.history.FinishRun(run, total, succeeded, failed); err != nil {
		r.logger.Warnf("failed to record run end %v", err)
	}
}

// saveTokens writes refreshed Spotify tokens back to the config file so the
// next run starts with a valid session. With no config path the update stays
// in memory.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrInvalidConfig)
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// printProgress consumes engine updates and prints each message as its own
// line. The returned function closes the channel and waits for the printer
// to drain, so summaries never interleave with progress lines.
func (r *Runner) printProgress(progress chan tasks.ProgressUpdate) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	return func() {
		close(progress)
		<-done
	}
}

// isTerminal reports whether output goes to an interactive terminal.
func (r *Runner) isTerminal() bool {
	f, ok := r.output.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// renderTable draws boxed tables on terminals and CSV everywhere else so
// piped output stays machine readable.
func (r *Runner) renderTable(t table.Writer) {
	t.SetOutputMirror(r.output)
	if r.isTerminal() {
		t.SetStyle(table.StyleLight)
		t.Render()
		return
	}
	t.RenderCSV()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
