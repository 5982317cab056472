package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tunesift/tunesift/internal/cache"
	"github.com/tunesift/tunesift/internal/models"
	"github.com/tunesift/tunesift/internal/recommend"
	"github.com/tunesift/tunesift/internal/repositories"
	"github.com/tunesift/tunesift/internal/services"
	"github.com/tunesift/tunesift/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	cache      *cache.Cache
	similarity services.SimilarityProvider
	resolver   services.IdentityResolver
	enricher   services.Enricher
	engine     *recommend.Engine
	logger     *log.Logger
	output     io.Writer

	db        *sql.DB
	favorites *repositories.FavoriteRepository
	feedback  *repositories.FeedbackRepository
	history   *repositories.HistoryRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Similarity services.SimilarityProvider
	Resolver   services.IdentityResolver
	Enricher   services.Enricher
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
}

// NewRunner creates a new Runner with the provided configuration.
//
// Providers left nil in opts are constructed from the config; a missing
// Last.fm API key leaves the similarity provider nil and surfaces when a
// command needs it.
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

	r := &Runner{
		config:     opts.Config,
		similarity: opts.Similarity,
		resolver:   opts.Resolver,
		enricher:   opts.Enricher,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
	r.cache = cache.New(opts.Config.Cache.MaxEntries)

	lastfmTTL := time.Duration(opts.Config.Cache.LastFMTTLSeconds) * time.Second
	lookupTTL := time.Duration(opts.Config.Cache.LookupTTLSeconds) * time.Second

	if r.similarity == nil {
		if svc, err := services.NewLastFMService(opts.Config.Providers.LastFM, r.cache, lastfmTTL, r.logger); err == nil {
			r.similarity = svc
		} else {
			r.logger.Debug("lastfm service unavailable", "error", err)
		}
	}
	if r.resolver == nil {
		if svc, err := services.NewMusicBrainzService(opts.Config.Providers.MusicBrainz, r.cache, lookupTTL, r.logger); err == nil {
			r.resolver = svc
		} else {
			r.logger.Debug("musicbrainz service unavailable", "error", err)
		}
	}
	if r.enricher == nil {
		r.enricher = services.NewITunesService(opts.Config.Providers.ITunes, r.cache, lookupTTL, r.logger)
	}

	r.engine = recommend.NewEngine(r.similarity, r.resolver, r.enricher, r.logger)

	if r.db != nil {
		r.attachRepositories(r.db)
	}

	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, recommendCommand, favoritesCommand, likeCommand, dislikeCommand, historyCommand, exportCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger and rebuilds the engine around it.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.engine = recommend.NewEngine(r.similarity, r.resolver, r.enricher, logger)
}

// openDatabase opens the configured database and attaches the repositories,
// running pending migrations first. Reuses an existing connection.
func (r *Runner) openDatabase() error {
	if r.db != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.attachRepositories(db)
	return nil
}

func (r *Runner) attachRepositories(db *sql.DB) {
	r.db = db
	r.favorites = repositories.NewFavoriteRepository(db)
	r.feedback = repositories.NewFeedbackRepository(db)
	r.history = repositories.NewHistoryRepository(db)
}

// personalize re-ranks items against stored preferences. Requires an open
// database; snapshot failures keep the base order.
func (r *Runner) personalize(items []models.TrackRecommendation) []models.TrackRecommendation {
	if r.favorites == nil || r.feedback == nil {
		return items
	}

	prefs, err := r.favorites.Snapshot()
	if err != nil {
		r.logger.Warn("failed to snapshot favorites", "error", err)
		return items
	}
	feedback, err := r.feedback.Snapshot()
	if err != nil {
		r.logger.Warn("failed to snapshot feedback", "error", err)
		return items
	}

	return recommend.NewScorer(prefs, feedback).Rank(items)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
