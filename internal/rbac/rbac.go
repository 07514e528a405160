package rbac

import "github.com/dreamlift/admin-gateway/internal/models"

// Permission constants
const (
	PermViewDashboard     = "view_dashboard"
	PermModerateCampaigns = "moderate_campaigns"
	PermEditCampaigns     = "edit_campaigns"
	PermDeleteCampaigns   = "delete_campaigns"
	PermManageUsers       = "manage_users"
	PermViewReports       = "view_reports"
	PermDonate            = "donate"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	models.RoleAdmin: {
		PermViewDashboard, PermModerateCampaigns, PermEditCampaigns,
		PermDeleteCampaigns, PermManageUsers, PermViewReports, PermDonate,
	},
	models.RoleCreator: {
		PermDonate,
		// Creators manage their own campaigns upstream, never through the admin surface
	},
	models.RoleUser: {
		PermDonate,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// IsFinancialOperation checks if permission exposes platform revenue.
func IsFinancialOperation(permission string) bool {
	return permission == PermViewReports
}
