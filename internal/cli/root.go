// Package cli wires the fastats commands together.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/cookiejar"

	"github.com/spf13/cobra"

	"fastats/internal/cookies"
	"fastats/internal/logging"
	"fastats/internal/scraper"
	"fastats/pkg/config"
)

// app carries what every command needs. It is built once per invocation.
type app struct {
	cfg     *config.Config
	stdout  io.Writer
	logger  *slog.Logger
	verbose int
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string, stdout io.Writer) int {
	a := &app{cfg: config.Load(), stdout: stdout}

	if args == nil {
		args = []string{}
	}

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stdout)

	if err := root.ExecuteContext(ctx); err != nil {
		a.log().Error("fatal error, exiting", "err", err)
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	opts := &scrapeOptions{}

	root := &cobra.Command{
		Use:   "fastats [cookies-file] -p <profile>... [--name-file <path>] [-f <out.csv>]",
		Short: "fastats records the public statistics of profiles to a CSV log.",
		Long: `fastats fetches the statistics page of each requested profile, extracts
views, submissions, favourites, comments and watchers, and optionally
appends one timestamped row per profile to a CSV file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = logging.New(a.stdout, a.verbose, a.cfg.LogLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScrape(cmd.Context(), opts, args)
		},
	}

	root.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "Enable debug logging")

	flags := root.Flags()
	flags.StringVar(&opts.cookies, "cookies", "", "Netscape cookie file exported from a logged in browser")
	flags.StringArrayVarP(&opts.profiles, "profile", "p", nil, "Profile to retrieve statistics for (repeatable)")
	flags.StringVar(&opts.nameFile, "name-file", "", "File listing one profile name per line")
	flags.StringVarP(&opts.file, "file", "f", "", "CSV file to append the statistics to")

	root.AddCommand(a.serveCommand(), a.debugCommand(), a.historyCommand())

	return root
}

// log returns the command logger, or a default one when flag parsing
// failed before it was built.
func (a *app) log() *slog.Logger {
	if a.logger == nil {
		a.logger = logging.New(a.stdout, a.verbose, a.cfg.LogLevel)
	}
	return a.logger
}

// loadJar loads the cookie file at path. An empty path means no cookies.
func (a *app) loadJar(path string) (*cookiejar.Jar, error) {
	if path == "" {
		return nil, nil
	}

	jar, count, err := cookies.Load(path)
	if err != nil {
		return nil, err
	}
	a.log().Debug("cookies loaded", "path", path, "count", count)
	return jar, nil
}

func (a *app) newScraper(jar *cookiejar.Jar) *scraper.Scraper {
	opts := scraper.Options{
		BaseURL:   a.cfg.BaseURL,
		UserAgent: a.cfg.UserAgent,
		Timeout:   a.cfg.ScrapeTimeout,
		Logger:    a.log(),
	}
	if jar != nil {
		opts.Jar = jar
	}
	return scraper.NewScraper(opts)
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", config.ErrConfiguration, fmt.Sprintf(format, args...))
}
