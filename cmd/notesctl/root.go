package main

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-notes/web/internal/config"
	"github.com/zhouzirui/z-notes/web/internal/logger"
	"github.com/zhouzirui/z-notes/web/internal/service/api"
)

// cli holds what every subcommand needs once flags are parsed.
type cli struct {
	token   string
	apiURL  string
	verbose bool

	cfg    *config.Config
	log    *logger.Logger
	client *api.Client
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "notesctl",
		Short: "Read and write your notes from the terminal",
		Long: `notesctl talks to the same notes API as the web page.
The bearer token comes from --token or NOTES_TOKEN, the API from --api or API_URI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.token, "token", "", "Bearer token (default $NOTES_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&c.apiURL, "api", "", "Notes API base URL (default $API_URI)")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newVerifyCmd(c),
		newListCmd(c),
		newCreateCmd(c),
		newShowCmd(c),
	)
	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(c.apiURL, "/")
	}
	if err := cfg.API.Validate(); err != nil {
		return err
	}

	if c.token == "" {
		c.token = strings.TrimSpace(os.Getenv("NOTES_TOKEN"))
	}

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	c.log = logger.NewWithOutput("notesctl", level, "text", cmd.ErrOrStderr())
	c.cfg = cfg
	c.client = api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, api.WithLogger(c.log))
	return nil
}

var errNotSignedIn = errors.New("not signed in: pass --token or set NOTES_TOKEN")
