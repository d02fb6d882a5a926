package domain

// Role tags the resident profile with its portal persona.
type Role string

const (
	RoleCollaborator Role = "COLLABORATOR"
	RoleManager      Role = "MANAGER"
)

// Placeholder values applied when the directory record omits a display field.
// Defaulting happens once, at the identity boundary, so every downstream
// consumer sees a fully populated profile.
const (
	DefaultCollaboratorDepartment = "Safety"
	DefaultCollaboratorJobTitle   = "Collaborator"
	DefaultManagerDepartment      = "Management"
	DefaultManagerJobTitle        = "Manager"
)

// Profile is the normalized, role-tagged identity record for the active
// session. At most one Profile is resident at a time.
type Profile struct {
	Role        Role
	BadgeNumber string // collaborators only, uppercase
	Email       string // managers only
	ManagerID   string // managers only, authentication identity id
	DisplayName string
	JobTitle    string
	Department  string
}

// AudienceScope returns the announcement filter key for this profile.
func (p Profile) AudienceScope() string {
	return p.Department
}

// IsManager reports whether the profile carries manager privileges.
func (p Profile) IsManager() bool {
	return p.Role == RoleManager
}
