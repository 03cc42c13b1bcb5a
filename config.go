package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	nimPiles       []int
	port           int
	prefix         string
	profile        bool
	roundDelay     time.Duration
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	tttRounds      int
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.tttRounds < 1 {
		return fmt.Errorf("invalid round count (must be at least 1): %d", c.tttRounds)
	}
	if len(c.nimPiles) == 0 {
		return errors.New("at least one nim pile is required")
	}
	for _, p := range c.nimPiles {
		if p < 1 {
			return fmt.Errorf("invalid nim pile size (must be at least 1): %d", p)
		}
	}
	if c.roundDelay < 0 {
		return fmt.Errorf("invalid round delay (must not be negative): %s", c.roundDelay)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("MINIGAMES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "minigames",
		Short:         "A realtime server for three two-player minigames: Tic-Tac-Toe, Nim and Hot Potato.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: MINIGAMES_BIND)")
	fs.IntSliceVar(&cfg.nimPiles, "nim-piles", []int{3, 4, 5}, "default pile sizes for new nim rooms (env: MINIGAMES_NIM_PILES)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: MINIGAMES_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: MINIGAMES_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: MINIGAMES_PROFILE)")
	fs.DurationVar(&cfg.roundDelay, "round-delay", 1800*time.Millisecond, "pause between tic-tac-toe rounds (env: MINIGAMES_ROUND_DELAY)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle rooms are evicted (env: MINIGAMES_IDLE_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: MINIGAMES_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: MINIGAMES_TLS_KEY)")
	fs.IntVar(&cfg.tttRounds, "ttt-rounds", 6, "rounds per tic-tac-toe match (env: MINIGAMES_TTT_ROUNDS)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: MINIGAMES_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: MINIGAMES_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("minigames v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
