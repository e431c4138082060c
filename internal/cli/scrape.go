package cli

import (
	"context"

	"fastats/internal/record"
	"fastats/internal/runner"
)

type scrapeOptions struct {
	cookies  string
	profiles []string
	nameFile string
	file     string
}

// cookiePath picks the cookie file from the positional argument or --cookies
func (o *scrapeOptions) cookiePath(args []string) (string, error) {
	if len(args) == 0 {
		return o.cookies, nil
	}
	if o.cookies != "" && o.cookies != args[0] {
		return "", configErrorf("cookie file given both as argument (%s) and --cookies (%s)", args[0], o.cookies)
	}
	return args[0], nil
}

func (a *app) runScrape(ctx context.Context, opts *scrapeOptions, args []string) error {
	cookiePath, err := opts.cookiePath(args)
	if err != nil {
		return err
	}

	profiles, err := runner.ResolveProfiles(opts.profiles, opts.nameFile)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		return configErrorf("no profiles given, use -p or --name-file")
	}

	jar, err := a.loadJar(cookiePath)
	if err != nil {
		return err
	}

	r := runner.New(a.newScraper(jar), runner.Options{
		Interval: a.cfg.RequestInterval,
		Logger:   a.log(),
	})
	records := r.Run(ctx, profiles)

	if len(records) > 0 {
		record.RenderTable(a.stdout, records)
	}
	a.log().Info("batch finished", "requested", len(profiles), "succeeded", len(records))

	if opts.file == "" {
		return nil
	}
	if err := record.AppendCSV(opts.file, records); err != nil {
		return err
	}
	a.log().Info("wrote profiles to file", "count", len(records), "file", opts.file)
	return nil
}
