package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-encounter/internal/config"
	"github.com/tartampluch/go-encounter/internal/engine"
	"github.com/tartampluch/go-encounter/internal/groupme"
	"github.com/tartampluch/go-encounter/internal/scheduler"
	"github.com/tartampluch/go-encounter/internal/server"
)

// app carries the persistent flags and the resources opened for a command.
type app struct {
	debug   bool
	envFile string

	logging   bool
	logCloser io.Closer
	cleanup   []func() error
}

func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		_ = a.cleanup[i]()
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           config.CommandName,
		Short:         config.CmdDescRoot,
		Version:       config.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.logCloser = setupLogging(cmd.ErrOrStderr(), a.debug)
			a.logging = true
			logStartupInfo()
		},
		RunE: a.runDaily,
	}
	root.SetVersionTemplate(versionString())

	flags := root.PersistentFlags()
	flags.BoolVar(&a.debug, config.FlagDebug, false, config.FlagDescDebug)
	flags.StringVar(&a.envFile, config.FlagEnvFile, config.DefaultEnvFile, config.FlagDescEnvFile)

	daily := &cobra.Command{
		Use:   config.CmdDaily,
		Short: config.CmdDescDaily,
		Args:  cobra.NoArgs,
		RunE:  a.runDaily,
	}

	serve := &cobra.Command{
		Use:   config.CmdServe,
		Short: config.CmdDescServe,
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}

	var sender string
	var dryRun bool
	exec := &cobra.Command{
		Use:   config.CmdExec,
		Short: config.CmdDescExec,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExec(cmd, strings.Join(args, " "), sender, dryRun)
		},
	}
	exec.Flags().StringVar(&sender, config.FlagAs, config.DefaultSender, config.FlagDescAs)
	exec.Flags().BoolVar(&dryRun, config.FlagDryRun, false, config.FlagDescDryRun)

	var user string
	imp := &cobra.Command{
		Use:   config.CmdImport,
		Short: config.CmdDescImport,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd, args[0], user)
		},
	}
	imp.Flags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)

	var output string
	export := &cobra.Command{
		Use:   config.CmdExport,
		Short: config.CmdDescExport,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runExport(cmd, output)
		},
	}
	export.Flags().StringVarP(&output, config.FlagCalendar, "o", "", config.FlagDescCalendar)

	root.AddCommand(daily, serve, exec, imp, export)
	return root
}

// runDaily posts today's birthdays, or nothing when there are none.
func (a *app) runDaily(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := a.settings(config.NeedTransport, config.NeedRegistry)
	if err != nil {
		return err
	}
	bot, err := a.wire(ctx, s, groupme.NewPoster(s.GroupMeURL, s.BotID))
	if err != nil {
		return err
	}
	return bot.dispatcher.DailyCheck(ctx)
}

func (a *app) runExec(cmd *cobra.Command, text, sender string, dryRun bool) error {
	ctx := cmd.Context()
	reqs := []config.Requirement{config.NeedRegistry}
	if !dryRun {
		reqs = append(reqs, config.NeedTransport)
	}
	s, err := a.settings(reqs...)
	if err != nil {
		return err
	}

	var poster engine.Poster = &printPoster{w: cmd.OutOrStdout()}
	if !dryRun {
		poster = groupme.NewPoster(s.GroupMeURL, s.BotID)
	}
	bot, err := a.wire(ctx, s, poster)
	if err != nil {
		return err
	}
	if dryRun {
		bot.dispatcher.Renderer.Delay = 0
	}
	return bot.dispatcher.Dispatch(ctx, text, sender)
}

// runServe runs the webhook server and the scheduled jobs until interrupted.
func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := a.settings(config.NeedTransport, config.NeedCallback, config.NeedRegistry)
	if err != nil {
		return err
	}
	bot, err := a.wire(ctx, s, groupme.NewPoster(s.GroupMeURL, s.BotID))
	if err != nil {
		return err
	}

	srv := server.New(s.ListenAddr, s.AuthToken, bot.dispatcher)
	jobs := scheduler.NewCronEngine(s.Location)

	refresh := func(ctx context.Context) error {
		data, err := bot.feed(ctx)
		if err != nil {
			return err
		}
		srv.UpdateFeed(data)
		return nil
	}
	bot.dispatcher.OnBirthdayAdded = func(context.Context) {
		go jobs.RunNow(config.JobFeed, refresh)
	}

	if err := jobs.AddJob(config.JobDaily, s.DailySchedule, bot.dispatcher.DailyCheck); err != nil {
		return err
	}
	if err := jobs.AddJob(config.JobFeed, s.FeedSchedule, refresh); err != nil {
		return err
	}
	jobs.Start()
	defer jobs.Stop()

	// The feed answers 503 until the first refresh lands.
	go jobs.RunNow(config.JobFeed, refresh)

	return srv.Start(ctx)
}

func (a *app) runImport(cmd *cobra.Command, source, user string) error {
	ctx := cmd.Context()
	s, err := a.settings(config.NeedRegistry)
	if err != nil {
		return err
	}
	bot, err := a.wire(ctx, s, nil)
	if err != nil {
		return err
	}

	r, err := openContacts(ctx, source, user)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	im := &engine.Importer{Registry: bot.registry}
	stats, err := im.Import(ctx, r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), config.MsgImportSummary, stats.Imported, stats.Cards, stats.Skipped)
	return err
}

// openContacts opens a local vCard file, or downloads it when source is a URL.
func openContacts(ctx context.Context, source, user string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, config.SchemeHTTP+"://") && !strings.HasPrefix(source, config.SchemeHTTPS+"://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrImportSource, err)
		}
		return f, nil
	}

	var pass string
	if user != "" {
		p, err := config.Secret(user)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrImportSource, err)
		}
		pass = p
	}
	return engine.NewHTTPFetcher().Fetch(ctx, source, user, pass)
}

func (a *app) runExport(cmd *cobra.Command, output string) error {
	ctx := cmd.Context()
	s, err := a.settings(config.NeedRegistry)
	if err != nil {
		return err
	}
	bot, err := a.wire(ctx, s, nil)
	if err != nil {
		return err
	}

	data, err := bot.feed(ctx)
	if err != nil {
		return err
	}
	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrFeedBuild, err)
	}
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyFile, output,
		config.LogKeySizeBytes, len(data),
	)
	return nil
}
