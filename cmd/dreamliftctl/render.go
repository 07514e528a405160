package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dreamlift/admin-gateway/internal/admincache"
	"github.com/dreamlift/admin-gateway/internal/models"
	"github.com/dreamlift/admin-gateway/internal/richtext"
	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func statusLabel(status string) string {
	switch status {
	case models.CampaignStatusActive:
		return green("approved")
	case models.CampaignStatusRejected:
		return red("rejected")
	}
	return status
}

func campaignStatus(status string) string {
	switch status {
	case models.CampaignStatusActive:
		return green(status)
	case models.CampaignStatusPending:
		return yellow(status)
	case models.CampaignStatusRejected:
		return red(status)
	}
	return faint(status)
}

func stateLabel(s admincache.State) string {
	switch s {
	case admincache.StateFresh:
		return green(string(s))
	case admincache.StateRefreshing:
		return yellow(string(s))
	}
	return red(string(s))
}

func displayName(u models.User) string {
	if u.Name != "" {
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	}
	return u.Email
}

func renderDashboard(w io.Writer, snap admincache.Snapshot, width int) {
	fetched := "never"
	if snap.FetchedAt != nil {
		fetched = snap.FetchedAt.Local().Format(time.RFC1123)
	}
	fmt.Fprintf(w, "Cache %s, fetched %s\n", stateLabel(snap.State), fetched)

	if a := snap.Analytics; a != nil {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Campaigns\t%d\n", a.TotalCampaigns)
		fmt.Fprintf(tw, "Pending\t%d\n", a.PendingApprovals)
		fmt.Fprintf(tw, "Active\t%d\n", a.ActiveCampaigns)
		fmt.Fprintf(tw, "Users\t%d\n", a.TotalUsers)
		fmt.Fprintf(tw, "Donations\t%d\n", a.TotalDonations)
		fmt.Fprintf(tw, "Revenue\t%.2f\n", a.TotalRevenue)
		tw.Flush()
	}

	if len(snap.Pending) > 0 {
		fmt.Fprintf(w, "\nAwaiting review (%d)\n", len(snap.Pending))
		renderCampaigns(w, snap.Pending, width)
	}

	if len(snap.Users) > 0 {
		fmt.Fprintf(w, "\nUsers (%d)\n", len(snap.Users))
		renderUsers(w, snap.Users)
	}

	if len(snap.Unconfirmed) > 0 {
		fmt.Fprintf(w, "\n%d change(s) not yet confirmed by the server\n", len(snap.Unconfirmed))
	}
}

func renderCampaigns(w io.Writer, campaigns []models.Campaign, width int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tRAISED\tCREATOR")
	for _, c := range campaigns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f/%.0f (%.0f%%)\t%s\n",
			c.ID, c.Title, campaignStatus(c.Status),
			c.CurrentAmount, c.GoalAmount, c.FundedPercent(), c.Creator.Name)
		if width > 0 {
			if ex := richtext.Excerpt(c.Description, width); ex != "" {
				fmt.Fprintf(tw, "\t%s\t\t\t\n", faint(ex))
			}
		}
	}
	tw.Flush()
}

func renderUsers(w io.Writer, users []models.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tROLE\tACTIVE")
	for _, u := range users {
		active := green("yes")
		if !u.IsActive {
			active = red("no")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, active)
	}
	tw.Flush()
}
