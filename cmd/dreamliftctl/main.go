package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/dreamlift/admin-gateway/internal/admincache"
	"github.com/dreamlift/admin-gateway/internal/config"
	"github.com/dreamlift/admin-gateway/internal/services"
	"go.uber.org/zap"
)

var version = "dev"

// CLI is the top-level command structure for dreamliftctl.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Config  string           `help:"Config file to read and update." type:"path" env:"DREAMLIFT_CONFIG"`
	Verbose bool             `help:"Log API calls to stderr." short:"v"`

	Login      LoginCmd      `cmd:"" help:"Sign in and store the session token."`
	Logout     LogoutCmd     `cmd:"" help:"Forget the stored session token."`
	Dashboard  DashboardCmd  `cmd:"" help:"Show campaigns, users and analytics."`
	Pending    PendingCmd    `cmd:"" help:"List campaigns awaiting review."`
	Approve    ApproveCmd    `cmd:"" help:"Approve a pending campaign."`
	Reject     RejectCmd     `cmd:"" help:"Reject a pending campaign."`
	Delete     DeleteCmd     `cmd:"" help:"Delete a campaign."`
	Role       RoleCmd       `cmd:"" help:"Change a user's role."`
	Activate   ActivateCmd   `cmd:"" help:"Re-enable a user account."`
	Deactivate DeactivateCmd `cmd:"" help:"Disable a user account."`
	Report     ReportCmd     `cmd:"" help:"Download the financial report PDF."`
}

// App carries what every command needs.
type App struct {
	ConfigPath string
	Config     *config.CLIConfig
	Out        io.Writer
	In         io.Reader
	Log        *zap.Logger

	tokens *services.StaticToken
}

func newApp(cli *CLI, out io.Writer, in io.Reader) (*App, error) {
	path := cli.Config
	if path == "" {
		path = config.DefaultCLIPath()
	}

	cfg, err := config.LoadCLI(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := zap.NewNop()
	if cli.Verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			log = l
		}
	}

	return &App{
		ConfigPath: path,
		Config:     cfg,
		Out:        out,
		In:         in,
		Log:        log,
		tokens:     services.NewStaticToken(cfg.Token),
	}, nil
}

func (a *App) client() *services.DreamLiftClient {
	return services.NewDreamLiftClient(a.Config.BaseURL, a.Config.Timeout, a.tokens, a.Log)
}

func (a *App) store() *admincache.Store {
	return admincache.NewStore(a.client(), admincache.Options{}, a.Log)
}

func (a *App) save() error {
	return config.SaveCLI(a.ConfigPath, a.Config)
}

// expireSession drops a token the API refused so the next run asks for a login.
func (a *App) expireSession(err error) error {
	if !errors.Is(err, services.ErrUnauthorized) {
		return err
	}
	if a.Config.Token != "" {
		a.Config.Token = ""
		if serr := a.save(); serr != nil {
			a.Log.Warn("failed to clear stored token", zap.Error(serr))
		}
	}
	return fmt.Errorf("session expired or missing, run `dreamliftctl login`: %w", err)
}

func run(args []string, out io.Writer, in io.Reader, exit func(int)) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("dreamliftctl"),
		kong.Description("Moderate DreamLift campaigns and users from the terminal."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Writers(out, out),
		kong.Exit(exit),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	app, err := newApp(&cli, out, in)
	if err != nil {
		return err
	}
	defer app.Log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(app); err != nil {
		return app.expireSession(err)
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stdin, os.Exit); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
