package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KirkDiggler/spyround/internal/catalog"
	"github.com/KirkDiggler/spyround/internal/services/round"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SPYROUND"

// Config holds every flag the commands accept
type Config struct {
	locations string
	seed      int64
	verbose   bool

	// Engine limits
	minPlayers   int
	maxPlayers   int
	maxTimer     int
	addSpyChance float64

	// Default round settings
	players  int
	spies    int
	minutes  int
	category string

	// Storage
	redisAddr     string
	redisPassword string
	redisDB       int
	redisTTL      time.Duration

	// play
	noClear   bool
	board     bool
	bind      string
	port      int
	prefix    string
	publicURL string

	// bot
	token         string
	applicationID string
	guildID       string
	refresh       int
}

func (c *Config) validate() error {
	if c.minPlayers < 2 {
		return fmt.Errorf("invalid min players (must be at least 2): %d", c.minPlayers)
	}
	if c.maxPlayers < c.minPlayers {
		return fmt.Errorf("invalid max players (must be at least %d): %d", c.minPlayers, c.maxPlayers)
	}
	if c.maxTimer < 1 {
		return fmt.Errorf("invalid max minutes (must be at least 1): %d", c.maxTimer)
	}
	if c.addSpyChance < 0 || c.addSpyChance > 1 {
		return fmt.Errorf("invalid add spy chance (must be between 0-1 inclusive): %v", c.addSpyChance)
	}
	if c.redisTTL < 0 {
		return errors.New("redis ttl cannot be negative")
	}
	return nil
}

func (c *Config) validatePlay() error {
	if c.board && (c.port < 1 || c.port > 65535) {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	return nil
}

func (c *Config) validateBot() error {
	if c.token == "" {
		return errors.New("--token is required (env: SPYROUND_TOKEN)")
	}
	return nil
}

// settings are the round settings used when none are given
func (c *Config) settings() round.StartInput {
	return round.StartInput{
		NumberOfPlayers: c.players,
		NumberOfSpies:   c.spies,
		TimerMinutes:    c.minutes,
		Category:        c.category,
	}
}

// bindEnv lets SPYROUND_* variables fill any flag not given on the command line
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func newCmd(cfg *Config) *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:           "spyround",
		Short:         "Deal and run rounds of the Spy location-guessing party game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.validate()
		},
	}

	fs := cmd.PersistentFlags()

	fs.StringVar(&cfg.locations, "locations", "", "path to a locations YAML file (env: SPYROUND_LOCATIONS)")
	fs.Int64Var(&cfg.seed, "seed", 0, "seed for the shuffle, 0 picks one from the clock (env: SPYROUND_SEED)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: SPYROUND_VERBOSE)")

	fs.IntVar(&cfg.minPlayers, "min-players", round.DefaultMinPlayers, "smallest table allowed (env: SPYROUND_MIN_PLAYERS)")
	fs.IntVar(&cfg.maxPlayers, "max-players", round.DefaultMaxPlayers, "largest table allowed, late arrivals included (env: SPYROUND_MAX_PLAYERS)")
	fs.IntVar(&cfg.maxTimer, "max-minutes", round.DefaultMaxTimerMinutes, "longest countdown allowed (env: SPYROUND_MAX_MINUTES)")
	fs.Float64Var(&cfg.addSpyChance, "add-spy-chance", round.DefaultAddPlayerSpyChance, "chance a late arrival is a spy (env: SPYROUND_ADD_SPY_CHANCE)")

	fs.IntVarP(&cfg.players, "players", "n", 4, "players in a new round (env: SPYROUND_PLAYERS)")
	fs.IntVarP(&cfg.spies, "spies", "s", 1, "spies in a new round (env: SPYROUND_SPIES)")
	fs.IntVarP(&cfg.minutes, "minutes", "m", 8, "countdown length in minutes (env: SPYROUND_MINUTES)")
	fs.StringVarP(&cfg.category, "category", "c", catalog.AggregateName, "location category (env: SPYROUND_CATEGORY)")

	fs.StringVar(&cfg.redisAddr, "redis-addr", "", "store rounds in redis at this address instead of memory (env: SPYROUND_REDIS_ADDR)")
	fs.StringVar(&cfg.redisPassword, "redis-password", "", "redis password (env: SPYROUND_REDIS_PASSWORD)")
	fs.IntVar(&cfg.redisDB, "redis-db", 0, "redis database (env: SPYROUND_REDIS_DB)")
	fs.DurationVar(&cfg.redisTTL, "redis-ttl", 12*time.Hour, "how long an idle round is kept in redis, 0 keeps it forever (env: SPYROUND_REDIS_TTL)")

	bindEnv(v, fs)

	cmd.AddCommand(newPlayCmd(cfg, v))
	cmd.AddCommand(newBotCmd(cfg, v))
	cmd.AddCommand(newCategoriesCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("spyround v{{.Version}}\n")

	return cmd
}

func newPlayCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play on this terminal, passing the device between players.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validatePlay(); err != nil {
				return err
			}
			return runPlay(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()

	fs.BoolVar(&cfg.noClear, "no-clear", false, "keep earlier cards on screen (env: SPYROUND_NO_CLEAR)")
	fs.BoolVar(&cfg.board, "board", false, "serve a read-only board for a second screen (env: SPYROUND_BOARD)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address the board binds to (env: SPYROUND_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port the board listens on (env: SPYROUND_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to board URLs, for use behind reverse proxy (env: SPYROUND_PREFIX)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "board URL encoded in the QR code (env: SPYROUND_PUBLIC_URL)")

	bindEnv(v, fs)

	return cmd
}

func newBotCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Discord bot, one table per channel.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateBot(); err != nil {
				return err
			}
			return runBot(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.StringVar(&cfg.token, "token", "", "discord bot token (env: SPYROUND_TOKEN)")
	fs.StringVar(&cfg.applicationID, "application-id", "", "discord application ID (env: SPYROUND_APPLICATION_ID)")
	fs.StringVar(&cfg.guildID, "guild-id", "", "register commands in one guild only, for development (env: SPYROUND_GUILD_ID)")
	fs.IntVar(&cfg.refresh, "refresh", 15, "seconds between board edits while the clock runs (env: SPYROUND_REFRESH)")

	bindEnv(v, fs)

	return cmd
}

func newCategoriesCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the location categories.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategories(cfg, cmd.OutOrStdout())
		},
	}
}
