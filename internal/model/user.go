package model

import "time"

// Action names a tracked user action. Every action owns one usage counter.
type Action string

const (
	ActionLogin        Action = "login"
	ActionLogout       Action = "logout"
	ActionSignup       Action = "signup"
	ActionMembersView  Action = "members_view"
	ActionAdminView    Action = "admin_view"
	ActionAPICall      Action = "api_call"
	ActionRoleUpdate   Action = "role_update"
	ActionUserDeletion Action = "user_deletion"
)

// Actions lists every tracked action.
var Actions = []Action{
	ActionLogin, ActionLogout, ActionSignup, ActionMembersView,
	ActionAdminView, ActionAPICall, ActionRoleUpdate, ActionUserDeletion,
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// UsageCounters holds the per-action request counters of a user
type UsageCounters struct {
	Logins       int64 `json:"logins"`
	Logouts      int64 `json:"logouts"`
	Signups      int64 `json:"signups"`
	MembersViews int64 `json:"members_views"`
	AdminViews   int64 `json:"admin_views"`
	APICalls     int64 `json:"api_calls"`
	RoleUpdates  int64 `json:"role_updates"`
	Deletions    int64 `json:"deletions"`
}

// Get returns the counter tracked for action.
func (u UsageCounters) Get(action Action) int64 {
	switch action {
	case ActionLogin:
		return u.Logins
	case ActionLogout:
		return u.Logouts
	case ActionSignup:
		return u.Signups
	case ActionMembersView:
		return u.MembersViews
	case ActionAdminView:
		return u.AdminViews
	case ActionAPICall:
		return u.APICalls
	case ActionRoleUpdate:
		return u.RoleUpdates
	case ActionUserDeletion:
		return u.Deletions
	}
	return 0
}

// Inc increments the counter tracked for action.
func (u *UsageCounters) Inc(action Action) int64 {
	var c *int64
	switch action {
	case ActionLogin:
		c = &u.Logins
	case ActionLogout:
		c = &u.Logouts
	case ActionSignup:
		c = &u.Signups
	case ActionMembersView:
		c = &u.MembersViews
	case ActionAdminView:
		c = &u.AdminViews
	case ActionAPICall:
		c = &u.APICalls
	case ActionRoleUpdate:
		c = &u.RoleUpdates
	case ActionUserDeletion:
		c = &u.Deletions
	default:
		return 0
	}
	*c++
	return *c
}

// User represents a registered member
type User struct {
	ID           int           `json:"id"`
	Username     string        `json:"username"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"` // Do not expose password hash in JSON responses
	IsAdmin      bool          `json:"is_admin"`
	Usage        UsageCounters `json:"usage"`
	CreatedAt    time.Time     `json:"created_at"`
}
