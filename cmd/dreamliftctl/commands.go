package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dreamlift/admin-gateway/internal/models"
)

type LoginCmd struct {
	Email    string `help:"Account email. Defaults to the last one used."`
	Password string `help:"Account password. Read from stdin when empty." env:"DREAMLIFT_PASSWORD"`
}

func (c *LoginCmd) Run(ctx context.Context, app *App) error {
	email := c.Email
	if email == "" {
		email = app.Config.Email
	}
	if email == "" {
		return errors.New("login: --email is required")
	}

	password := c.Password
	if password == "" {
		fmt.Fprint(app.Out, "Password: ")
		line, err := bufio.NewReader(app.In).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("login: reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	session, err := app.client().Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if session.User.Role != models.RoleAdmin {
		return fmt.Errorf("login: %s is a %s account, admin required", email, session.User.Role)
	}

	app.Config.Email = email
	app.Config.Token = session.Token
	if err := app.save(); err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Signed in as %s\n", displayName(session.User))
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(app *App) error {
	app.Config.Token = ""
	if err := app.save(); err != nil {
		return err
	}
	fmt.Fprintln(app.Out, "Signed out")
	return nil
}

type DashboardCmd struct {
	Refresh bool `help:"Bypass the freshness window."`
	Width   int  `help:"Description excerpt width." default:"60"`
}

func (c *DashboardCmd) Run(ctx context.Context, app *App) error {
	snap, err := app.store().Load(ctx, c.Refresh)
	if err != nil {
		return err
	}
	renderDashboard(app.Out, snap, c.Width)
	return nil
}

type PendingCmd struct {
	Width int `help:"Description excerpt width." default:"60"`
}

func (c *PendingCmd) Run(ctx context.Context, app *App) error {
	snap, err := app.store().Load(ctx, false)
	if err != nil {
		return err
	}
	if len(snap.Pending) == 0 {
		fmt.Fprintln(app.Out, "No campaigns awaiting review")
		return nil
	}
	renderCampaigns(app.Out, snap.Pending, c.Width)
	return nil
}

type ApproveCmd struct {
	ID string `arg:"" help:"Campaign ID."`
}

func (c *ApproveCmd) Run(ctx context.Context, app *App) error {
	if err := app.store().ApproveCampaign(ctx, c.ID); err != nil {
		return fmt.Errorf("approve %s: %w", c.ID, err)
	}
	fmt.Fprintf(app.Out, "%s campaign %s\n", statusLabel(models.CampaignStatusActive), c.ID)
	return nil
}

type RejectCmd struct {
	ID     string `arg:"" help:"Campaign ID."`
	Reason string `help:"Reason shown to the creator." required:""`
}

func (c *RejectCmd) Run(ctx context.Context, app *App) error {
	reason := strings.TrimSpace(c.Reason)
	if reason == "" {
		return errors.New("reject: --reason cannot be blank")
	}
	if err := app.store().RejectCampaign(ctx, c.ID, reason); err != nil {
		return fmt.Errorf("reject %s: %w", c.ID, err)
	}
	fmt.Fprintf(app.Out, "%s campaign %s\n", statusLabel(models.CampaignStatusRejected), c.ID)
	return nil
}

type DeleteCmd struct {
	ID  string `arg:"" help:"Campaign ID."`
	Yes bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *DeleteCmd) Run(ctx context.Context, app *App) error {
	if !c.Yes && !confirm(app, fmt.Sprintf("Delete campaign %s? [y/N] ", c.ID)) {
		fmt.Fprintln(app.Out, "Aborted")
		return nil
	}
	if err := app.store().DeleteCampaign(ctx, c.ID); err != nil {
		return fmt.Errorf("delete %s: %w", c.ID, err)
	}
	fmt.Fprintf(app.Out, "Deleted campaign %s\n", c.ID)
	return nil
}

type RoleCmd struct {
	UserID string `arg:"" help:"User ID."`
	Role   string `arg:"" help:"New role." enum:"user,creator,admin"`
}

func (c *RoleCmd) Run(ctx context.Context, app *App) error {
	if err := app.store().ChangeUserRole(ctx, c.UserID, c.Role); err != nil {
		return fmt.Errorf("role %s: %w", c.UserID, err)
	}
	fmt.Fprintf(app.Out, "User %s is now %s\n", c.UserID, c.Role)
	return nil
}

type ActivateCmd struct {
	UserID string `arg:"" help:"User ID."`
}

func (c *ActivateCmd) Run(ctx context.Context, app *App) error {
	return setActive(ctx, app, c.UserID, true)
}

type DeactivateCmd struct {
	UserID string `arg:"" help:"User ID."`
}

func (c *DeactivateCmd) Run(ctx context.Context, app *App) error {
	return setActive(ctx, app, c.UserID, false)
}

func setActive(ctx context.Context, app *App, userID string, active bool) error {
	if err := app.store().SetUserActive(ctx, userID, active); err != nil {
		return fmt.Errorf("status %s: %w", userID, err)
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	fmt.Fprintf(app.Out, "User %s %s\n", userID, state)
	return nil
}

type ReportCmd struct {
	Period string `help:"Report period." enum:"week,month,quarter,year" default:"month"`
	Out    string `help:"Output file. Defaults to financial-report-<period>.pdf." type:"path" short:"o"`
}

func (c *ReportCmd) Run(ctx context.Context, app *App) error {
	path := c.Out
	if path == "" {
		path = fmt.Sprintf("financial-report-%s.pdf", c.Period)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	n, err := app.client().DownloadFinancialReport(ctx, c.Period, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("report: %w", err)
	}

	fmt.Fprintf(app.Out, "Saved %s report to %s (%d bytes)\n", c.Period, path, n)
	return nil
}

func confirm(app *App, prompt string) bool {
	fmt.Fprint(app.Out, prompt)
	line, _ := bufio.NewReader(app.In).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
