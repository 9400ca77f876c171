// mmdl10n — module metadata localization: extracts translatable strings from
// Fedora module builds and turns translated catalogs into
// modulemd-translations documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/minios-linux/mmdl10n/cache"
	"github.com/minios-linux/mmdl10n/config"
	"github.com/minios-linux/mmdl10n/i18n"
	"github.com/minios-linux/mmdl10n/koji"
	"github.com/minios-linux/mmdl10n/lockfile"
	"github.com/minios-linux/mmdl10n/merge"
	"github.com/minios-linux/mmdl10n/modulemd"
	"github.com/minios-linux/mmdl10n/output"
	"github.com/minios-linux/mmdl10n/pipeline"
	"github.com/minios-linux/mmdl10n/reconcile"
	"github.com/minios-linux/mmdl10n/zanata"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ---------------------------------------------------------------------------
// Logging helpers
// ---------------------------------------------------------------------------

func logInfo(format string, args ...any) {
	output.Info(fmt.Sprintf(i18n.T(format), args...))
}

func logSuccess(format string, args ...any) {
	output.Success(fmt.Sprintf(i18n.T(format), args...))
}

func logWarning(format string, args ...any) {
	output.Warn(fmt.Sprintf(i18n.T(format), args...))
}

func logError(format string, args ...any) {
	output.Error(fmt.Sprintf(i18n.T(format), args...))
}

// exitError carries a specific process exit status.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// ---------------------------------------------------------------------------
// Global state
// ---------------------------------------------------------------------------

type app struct {
	configFile string
	lang       string
	loader     *config.Loader
	cfg        *config.Config
}

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"debug":                       "debug",
	"koji-url":                    "koji_url",
	"branch":                      "branch",
	"zanata-url":                  "zanata.url",
	"zanata-project":              "zanata.project",
	"zanata-translation-document": "zanata.document",
	"zanata-user-config":          "zanata.user_config",
	"cache-url":                   "cache.url",
}

func (a *app) load(cmd *cobra.Command) error {
	i18n.Init(a.lang)

	a.loader = config.NewLoader(zanata.DefaultUserConfig())
	for name, key := range flagKeys {
		if err := a.loader.BindFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}
	cfg, err := a.loader.Load(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	output.SetupLogging(cfg.Debug)
	output.Debug("Interface language", "lang", i18n.Language())
	if used := a.loader.ConfigFileUsed(); used != "" {
		output.Debug("Using config file", "path", used)
	}
	return nil
}

func (a *app) kojiClient() (*koji.Client, error) {
	return koji.NewClient(a.cfg.KojiURL, koji.WithLogger(output.Logger))
}

// resolveBranch turns the rawhide alias into a release through koji.
func (a *app) resolveBranch(ctx context.Context) (string, error) {
	if a.cfg.Branch != koji.Rawhide {
		return a.cfg.Branch, nil
	}
	kc, err := a.kojiClient()
	if err != nil {
		return "", err
	}
	return koji.ResolveBranch(ctx, kc, a.cfg.Branch)
}

func (a *app) zanataClient() *zanata.Client {
	var opts []zanata.Option
	creds, err := zanata.LoadUserConfig(a.cfg.Zanata.UserConfig, a.cfg.Zanata.URL)
	switch {
	case err != nil:
		output.Debug("No zanata credentials", "err", err)
	case creds != nil:
		opts = append(opts, zanata.WithCredentials(creds))
	}
	return zanata.NewClient(a.cfg.Zanata.URL, opts...)
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "mmdl10n",
		Short: "Translate Fedora module metadata through Zanata",
		Long: `mmdl10n — module metadata localization.

Extracts the summaries, descriptions and profile descriptions of every module
built for a Fedora or EPEL branch into a gettext template, and turns the
translated catalogs back into modulemd-translations YAML.

Commands:
  extract            Extract translatable strings from koji module builds
  generate-metadata  Build modulemd-translations from translated catalogs
  status             Show translation progress on Zanata
  show               Summarize a modulemd-translations file`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.Bool("debug", false, "Output debugging information")
	pf.StringVar(&a.configFile, "config", "", "Config file (default ./"+config.FileName+")")
	pf.StringP("koji-url", "k", config.DefaultKojiURL, "The URL of the Koji build system")
	pf.StringP("branch", "b", config.DefaultBranch, "The distribution release")
	pf.StringP("zanata-url", "z", config.DefaultZanataURL, "The Zanata URL")
	pf.StringP("zanata-project", "p", config.DefaultProject, "The Zanata project")
	pf.StringP("zanata-translation-document", "f", config.DefaultDocument, "The name of the translated file in Zanata")
	pf.StringP("zanata-user-config", "c", zanata.DefaultUserConfig(), "Path to the Zanata user config INI file")
	pf.String("cache-url", "", "Redis catalog cache shared between runs (redis://host:port/db)")
	pf.StringVar(&a.lang, "lang", "", "Interface language (default from environment)")

	root.AddCommand(
		newExtractCmd(a),
		newGenerateCmd(a),
		newStatusCmd(a),
		newShowCmd(a),
		newVersionCmd(),
	)

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}
	logError("%v", err)

	var ee *exitError
	if errors.As(err, &ee) {
		os.Exit(ee.code)
	}
	os.Exit(1)
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mmdl10n version %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:    %s\n", commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// extract (koji builds -> template)
// ---------------------------------------------------------------------------

type extractArgs struct {
	potFile  string
	upload   bool
	updatePO string
	noLock   bool
}

func newExtractCmd(a *app) *cobra.Command {
	var ea extractArgs

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract translatable strings from koji module builds",
		Long: `Extract translations from all modules included in a particular version of
Fedora or EPEL.

Only the latest build of every module stream in the branch's modular tags is
considered. The template is written to the current directory, or uploaded to
Zanata with --upload.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), a, ea)
		},
	}

	cmd.Flags().StringVar(&ea.potFile, "pot-file", "", "Template path (default <document>.pot)")
	cmd.Flags().BoolVar(&ea.upload, "upload", false, "Upload the template to Zanata instead of writing it")
	cmd.Flags().StringVar(&ea.updatePO, "update-po", "", "Merge the template into the .po files of this directory")
	cmd.Flags().BoolVar(&ea.noLock, "no-lock", false, "Do not compare with or update "+lockfile.LockFileName)

	return cmd
}

func runExtract(ctx context.Context, a *app, ea extractArgs) error {
	kc, err := a.kojiClient()
	if err != nil {
		return err
	}

	res, err := pipeline.Extract(ctx, pipeline.ExtractOptions{
		Session: kc,
		Branch:  a.cfg.Branch,
		Project: a.cfg.Zanata.Project,
		Logger:  output.Logger,
	})
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	logInfo("Extracted %d strings from %d module builds", res.Source.Len(), len(res.Builds))

	var lf *lockfile.LockFile
	if !ea.noLock {
		lf, err = lockfile.Load(".")
		if err != nil {
			return err
		}
		if changes := lf.Diff(res.Branch, res.Snapshot()); !changes.Empty() {
			logInfo("Changes since the last extraction for %s: %s", res.Branch, changes)
		}
	}

	if ea.upload {
		if err := uploadTemplate(ctx, a, res); err != nil {
			return err
		}
		logSuccess("Uploaded translatable strings for %s to Zanata", res.Branch)
	} else {
		potFile := ea.potFile
		if potFile == "" {
			potFile = a.cfg.TemplateFile()
		}
		if err := res.Template.WriteFile(potFile); err != nil {
			return err
		}
		logSuccess("Wrote extracted strings for %s to %s", res.Branch, potFile)
	}

	if ea.updatePO != "" {
		results, err := merge.MergeDir(ea.updatePO, res.Template)
		if err != nil {
			return fmt.Errorf("updating PO files: %w", err)
		}
		for _, r := range results {
			logInfo("Updated %s: %d kept, %d new, %d obsolete", r.Path, r.Kept, r.Added, r.Obsolete)
		}
	}

	if lf != nil {
		lf.Record(res.Branch, res.Snapshot())
		if err := lf.Save(); err != nil {
			return err
		}
	}
	return nil
}

func uploadTemplate(ctx context.Context, a *app, res *pipeline.ExtractResult) error {
	dir, err := os.MkdirTemp("", "mmdl10n-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	if err := res.Template.WriteFile(filepath.Join(dir, a.cfg.TemplateFile())); err != nil {
		return err
	}

	pub := zanata.NewCLIPublisher(a.cfg.Zanata.CLI)
	pub.OnOutput = func(step string, out []byte) {
		output.Debug("zanata-cli "+step, "output", string(out))
	}
	err = publish(ctx, pub, zanata.PublishRequest{
		URL:        a.cfg.Zanata.URL,
		Project:    a.cfg.Zanata.Project,
		Version:    res.Branch,
		SrcDir:     dir,
		UserConfig: a.cfg.Zanata.UserConfig,
	})
	return err
}

// publish maps a failed put-version to exit status 1 and a failed push to 2.
func publish(ctx context.Context, p zanata.Publisher, req zanata.PublishRequest) error {
	err := p.Publish(ctx, req)
	if err == nil {
		return nil
	}
	var pe *zanata.PublishError
	if errors.As(err, &pe) && pe.Step == zanata.StepPush {
		return &exitError{code: 2, err: err}
	}
	return &exitError{code: 1, err: err}
}

// ---------------------------------------------------------------------------
// generate-metadata (translated catalogs -> modulemd-translations)
// ---------------------------------------------------------------------------

type generateArgs struct {
	poDir    string
	yamlFile string
}

func newGenerateCmd(a *app) *cobra.Command {
	var ga generateArgs

	cmd := &cobra.Command{
		Use:   "generate-metadata",
		Short: "Build modulemd-translations from translated catalogs",
		Long: `Download the translated catalogs of the branch from Zanata, or read them
from --pofile-dir, and write the modulemd-translations YAML.

Only locales that translate both the summary and the description of a module
stream are included for it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), a, ga)
		},
	}

	cmd.Flags().StringVar(&ga.poDir, "pofile-dir", "", "Read translated .po files from this directory instead of Zanata")
	cmd.Flags().StringVar(&ga.yamlFile, "yaml-file", "", "Output path (default <document>-<branch>.yaml)")

	return cmd
}

func runGenerate(ctx context.Context, a *app, ga generateArgs) error {
	branch := a.cfg.Branch
	if ga.poDir == "" || ga.yamlFile == "" {
		var err error
		if branch, err = a.resolveBranch(ctx); err != nil {
			return err
		}
	}

	var catalogs map[string]*reconcile.Translated
	var err error
	if ga.poDir != "" {
		catalogs, err = pipeline.LocalCatalogs(ga.poDir, output.Logger)
	} else {
		var c cache.Cache
		c, err = cache.Open(a.cfg.Cache.URL, a.cfg.Cache.TTL)
		if err != nil {
			return err
		}
		catalogs, err = pipeline.RemoteCatalogs(ctx, a.zanataClient(),
			a.cfg.Zanata.Project, branch, a.cfg.Zanata.Document, c, output.Logger)
	}
	if err != nil {
		return err
	}
	logInfo("Loaded %d translated catalogs", len(catalogs))

	yamlFile := ga.yamlFile
	if yamlFile == "" {
		yamlFile = a.cfg.TranslationsFile(branch)
	}
	translations, err := pipeline.Generate(yamlFile, catalogs, reconcile.New(output.Logger))
	if err != nil {
		return err
	}
	logSuccess("Wrote modulemd-translations YAML to %s (%d module streams)", yamlFile, len(translations))
	return nil
}

// ---------------------------------------------------------------------------
// status (read-only: translation progress on Zanata)
// ---------------------------------------------------------------------------

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show translation progress on Zanata",
		Long:  `Show per-locale translation statistics of the branch's Zanata version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			branch, err := a.resolveBranch(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := a.zanataClient().Stats(cmd.Context(), a.cfg.Zanata.Project, branch)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), output.StyleHeading.Render(
				fmt.Sprintf("%s %s:%s", i18n.T("Translation Statistics"), a.cfg.Zanata.Project, branch)))
			fmt.Fprintln(cmd.OutOrStdout(), output.RenderStatusTable(localeStats(stats)))
			return nil
		},
	}
}

func localeStats(stats []zanata.LocaleStats) []output.LocaleStat {
	rows := make([]output.LocaleStat, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, output.LocaleStat{
			Locale:     s.Locale,
			Name:       i18n.LanguageName(s.Locale),
			Translated: s.Translated,
			Total:      s.Total,
		})
	}
	return rows
}

// ---------------------------------------------------------------------------
// show (summarize a modulemd-translations file)
// ---------------------------------------------------------------------------

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Summarize a modulemd-translations file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			translations, err := modulemd.LoadTranslations(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTranslations(translations))
			return nil
		},
	}
}

func renderTranslations(translations []*modulemd.Translation) string {
	t := output.NewTable("MODULE", "STREAM", "LOCALES", "PROFILES", "MODIFIED")
	for _, tr := range translations {
		profiles := 0
		for _, e := range tr.Entries {
			profiles += len(e.ProfileDescriptions)
		}
		t.Row(tr.Module, tr.Stream, fmt.Sprint(len(tr.Entries)), fmt.Sprint(profiles), fmt.Sprint(tr.Modified))
	}
	return t.String()
}
