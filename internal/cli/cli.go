package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stamboom/internal/config"
	"github.com/matzehuels/stamboom/pkg/cache"
	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/graph"
	"github.com/matzehuels/stamboom/pkg/observability"
	"github.com/matzehuels/stamboom/pkg/pipeline"
	"github.com/matzehuels/stamboom/pkg/storage"
	"github.com/matzehuels/stamboom/pkg/storage/memory"
	"github.com/matzehuels/stamboom/pkg/storage/mongo"
	"github.com/matzehuels/stamboom/pkg/storage/postgres"
)

// =============================================================================
// Constants
// =============================================================================

const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), cfg: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stamboom lays out and renders family trees",
		Long: `Stamboom turns family records (people, marriages and the children born into
them) into a layered family tree. It lays the tree out, renders it as SVG, PNG
or Graphviz DOT, and serves it over an HTTP API that re-lays the tree after
every edit.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				hooks := observability.NewLogHooks(c.Logger)
				observability.SetPipelineHooks(hooks)
				observability.SetRefreshHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
			}
			if err := c.loadConfig(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(versionTemplate())

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/stamboom/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.mapCommand())
	root.AddCommand(c.familiesCommand())
	root.AddCommand(c.seedCommand())
	root.AddCommand(c.copyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(c.versionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			c.Logger.Debug("no config directory", "err", err)
		}
		path = p
	}
	cfg, err := config.LoadFrom(path, nil)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", path, "backend", cfg.Storage.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, c.Logger), nil
}

// newCache picks Redis when configured, the cache directory otherwise.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if url := c.cfg.Cache.RedisURL; url != "" {
		rc, err := cache.NewRedisCache(ctx, url, appName+":")
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	}
	dir, err := c.cfg.CacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Storage
// =============================================================================

// openRepository connects to the configured backend. Postgres tables are
// created when missing.
func openRepository(ctx context.Context, cfg config.Config, logger *log.Logger) (storage.Repository, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Storage.DSN, logger)
		if err != nil {
			return nil, err
		}
		repo := postgres.New(pool)
		if err := repo.Migrate(ctx, logger); err != nil {
			repo.Close()
			return nil, err
		}
		return repo, nil
	case config.BackendMongo:
		return mongo.Connect(ctx, cfg.Storage.DSN, cfg.Storage.Database)
	default:
		return memory.New(), nil
	}
}

// =============================================================================
// Sources
// =============================================================================

// source selects the records a command works on: a seed file or a stored
// family.
type source struct {
	familyID int64
}

func (s *source) addFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&s.familyID, "family", 0, "read the family with this id from the configured storage")
}

// load returns the records named by args[0] (a seed file) or --family.
func (s *source) load(ctx context.Context, c *CLI, args []string) (family.Family, family.Dataset, error) {
	switch {
	case len(args) > 0 && s.familyID != 0:
		return family.Family{}, family.Dataset{}, fmt.Errorf("pass either a seed file or --family, not both")
	case len(args) > 0:
		seed, err := graph.ReadSeedFile(args[0])
		if err != nil {
			return family.Family{}, family.Dataset{}, err
		}
		return family.Family{Name: seed.Name}, seed.Dataset(), nil
	case s.familyID != 0:
		repo, err := openRepository(ctx, c.cfg, c.Logger)
		if err != nil {
			return family.Family{}, family.Dataset{}, err
		}
		defer repo.Close()
		f, err := repo.GetFamily(ctx, s.familyID)
		if err != nil {
			return family.Family{}, family.Dataset{}, err
		}
		ds, err := repo.FetchFamily(ctx, s.familyID)
		return f, ds, err
	}
	return family.Family{}, family.Dataset{}, fmt.Errorf("pass a seed file or --family")
}

// outputBase derives an output path prefix from the source.
func (s *source) outputBase(f family.Family, args []string) string {
	if len(args) > 0 {
		return strings.TrimSuffix(args[0], ".json")
	}
	name := family.Slug(f.Name)
	if name == "" {
		name = fmt.Sprintf("family-%d", s.familyID)
	}
	return name
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags registers the layout options on cmd.
func layoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Float64Var(&opts.NodeSpacing, "node-spacing", 0, "horizontal gap between nodes")
	cmd.Flags().Float64Var(&opts.RankSpacing, "rank-spacing", 0, "vertical gap between generations")
	cmd.Flags().Float64Var(&opts.ComponentSpacing, "component-spacing", 0, "gap between unrelated branches")
	cmd.Flags().IntVar(&opts.LooseColumns, "loose-columns", 0, "columns in the grid of unconnected people")
	cmd.Flags().StringVar(&opts.Quality, "quality", "", "crossing reduction: fast, balanced")
}

// layoutOptions merges flags with config and fills in the defaults.
func (c *CLI) layoutOptions(opts pipeline.Options) pipeline.Options {
	c.cfg.ApplyLayout(&opts)
	opts.Logger = c.Logger
	opts.SetLayoutDefaults()
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
