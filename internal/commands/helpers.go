package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/moasq/promptheus/internal/config"
	"github.com/moasq/promptheus/internal/gistsync"
	"github.com/moasq/promptheus/internal/prompt"
	"github.com/moasq/promptheus/internal/render"
	"github.com/moasq/promptheus/internal/secrets"
	"github.com/moasq/promptheus/internal/storage"
	"github.com/moasq/promptheus/internal/terminal"
)

// app bundles what a command needs once the config is loaded.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *storage.Store
	usage    *storage.UsageStore
	tty      *terminal.TTY
	console  *terminal.Console
	selector *terminal.Selector
	out      *render.Renderer

	secretStore secrets.SecretStore
}

func newLogger(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// loadApp loads the config named by --config and wires the stores and the
// terminal around it.
func loadApp() (*app, error) {
	logger := newLogger(debugFlag)
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	logger.Debug("config loaded", zap.String("path", cfg.Path()), zap.String("prompt_file", cfg.General.PromptFile))

	tty := terminal.NewTTY()
	console := terminal.NewConsole(tty)
	return &app{
		cfg:    cfg,
		logger: logger,
		store: storage.NewStore(cfg.General.PromptFile, storage.Options{
			SortBy:        cfg.General.SortBy,
			CaseSensitive: cfg.General.SearchCaseSensitive,
			Logger:        logger.Named("storage"),
		}),
		usage:   storage.NewUsageStore(filepath.Dir(cfg.Path())),
		tty:     tty,
		console: console,
		selector: &terminal.Selector{
			Console: console,
			Finder:  terminal.NewFinderBridge(terminal.ExecSpawner{}, logger.Named("finder")),
			Command: cfg.General.SelectCmd,
			Logger:  logger.Named("selector"),
		},
		out: render.New(os.Stdout, cfg.General.Color, cfg.General.ContentPreview),
	}, nil
}

// secrets opens the token store next to the config file on first use.
func (a *app) secrets() secrets.SecretStore {
	if a.secretStore == nil {
		a.secretStore = secrets.New(filepath.Dir(a.cfg.Path()))
	}
	return a.secretStore
}

// selectPrompt lets the user pick one of prompts. ok is false when the
// selection came back empty without an error.
func (a *app) selectPrompt(ctx context.Context, title string, prompts []prompt.Prompt, query string) (p prompt.Prompt, ok bool, err error) {
	sel := *a.selector
	sel.Preview = func(i int) string {
		if i < 0 || i >= len(prompts) {
			return ""
		}
		return prompts[i].Content
	}
	i, err := sel.Choose(ctx, title, prompt.SelectionLines(prompts, a.cfg.General.ContentPreview), query)
	if err != nil || i < 0 {
		return prompt.Prompt{}, false, err
	}
	return prompts[i], true, nil
}

// resolvePrompt finds identifier, or asks the user to pick from every
// prompt matching filter when identifier is empty.
func (a *app) resolvePrompt(ctx context.Context, identifier, title string, filter storage.Filter) (prompt.Prompt, bool, error) {
	if identifier != "" {
		p, err := a.store.Find(identifier)
		if err != nil {
			return prompt.Prompt{}, false, err
		}
		return p, true, nil
	}
	prompts, err := a.store.Search(filter)
	if err != nil {
		return prompt.Prompt{}, false, err
	}
	if len(prompts) == 0 {
		a.out.Empty("prompts")
		return prompt.Prompt{}, false, nil
	}
	return a.selectPrompt(ctx, title, prompts, "")
}

// syncer builds a gist syncer from the [gist] section and the stored token.
func (a *app) syncer(ctx context.Context) (*gistsync.Syncer, *gistsync.GistClient, error) {
	if !a.cfg.Gist.Configured() {
		return nil, nil, fmt.Errorf("gist sync is not configured; set [gist] file_name in %s", a.cfg.Path())
	}
	token, source, err := secrets.GitHubToken(a.secrets())
	if secrets.IsNotFound(err) {
		return nil, nil, fmt.Errorf("no GitHub token found; run `promptheus config token set` or export %s", secrets.TokenEnvVars[0])
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read GitHub token: %w", err)
	}
	a.logger.Debug("using GitHub token", zap.String("source", source))

	client, err := gistsync.NewGistClient(ctx, gistsync.GistOptions{
		Token:    token,
		FileName: a.cfg.Gist.FileName,
		GistID:   a.cfg.Gist.GistID,
		Public:   a.cfg.Gist.Public,
		Logger:   a.logger.Named("gist"),
	})
	if err != nil {
		return nil, nil, err
	}
	return gistsync.NewSyncer(a.store, client, a.logger.Named("sync")), client, nil
}

// autoSync runs after commands that change the prompt file. Failures are
// reported but never fail the command.
func (a *app) autoSync(ctx context.Context) {
	if !a.cfg.General.AutoSync && (a.cfg.Gist == nil || !a.cfg.Gist.AutoSync) {
		return
	}
	if !a.cfg.Gist.Configured() {
		a.logger.Debug("auto-sync enabled without a [gist] section")
		return
	}
	syncer, _, err := a.syncer(ctx)
	if err != nil {
		terminal.Warning("Auto-sync skipped: " + err.Error())
		return
	}
	res, err := syncer.AutoSync(ctx)
	if err != nil {
		terminal.Warning("Auto-sync failed: " + err.Error())
		return
	}
	if res.Direction != gistsync.None {
		a.reportSync(res)
	}
}

// reportSync prints what a sync did and records a newly created gist.
func (a *app) reportSync(res gistsync.Result) {
	switch res.Direction {
	case gistsync.Upload:
		terminal.Success(fmt.Sprintf("Uploaded %d prompt(s) to the gist", res.Prompts))
	case gistsync.Download:
		terminal.Success(fmt.Sprintf("Downloaded %d prompt(s) from the gist", res.Prompts))
	default:
		terminal.Info("Local and remote are already in sync.")
	}
	if res.Overridden {
		terminal.Warning("The sync flag overrode the direction chosen by timestamps.")
	}
	if res.CreatedGistID == "" {
		return
	}
	terminal.Detail("Gist ID", res.CreatedGistID)
	a.cfg.Gist.GistID = res.CreatedGistID
	if err := a.cfg.Save(); err != nil {
		terminal.Warning(fmt.Sprintf("Could not save gist_id to %s: %v", a.cfg.Path(), err))
		return
	}
	terminal.Hint("Saved gist_id to " + a.cfg.Path())
}

// finish turns a cancellation into a notice and a clean exit. Every other
// error, SystemError included, is returned unchanged.
func finish(err error, what string) error {
	if terminal.IsCancelled(err) {
		terminal.Cancelled(what)
		return nil
	}
	return err
}

// notFound reports a missing prompt without failing the command.
func notFound(err error, identifier string) error {
	if errors.Is(err, storage.ErrNotFound) {
		terminal.Error(fmt.Sprintf("Prompt %q not found.", identifier))
		terminal.Hint("Run `promptheus list` to see saved prompts.")
		return nil
	}
	return err
}
