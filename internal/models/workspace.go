package models

// Workspace is a tenant. Name is the unique URL slug, DisplayName is what users typed.
type Workspace struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	DisplayName string `gorm:"not null" json:"display_name"`
	OwnerID     string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner       *User  `gorm:"foreignKey:OwnerID" json:"-"`

	Memberships []WorkspaceMembership `gorm:"foreignKey:WorkspaceID" json:"memberships,omitempty"`
}

// WorkspaceRole enumerates membership roles.
type WorkspaceRole string

const (
	WorkspaceRoleOwner  WorkspaceRole = "OWNER"
	WorkspaceRoleMember WorkspaceRole = "MEMBER"
)

// WorkspaceMembership links a user to a workspace.
type WorkspaceMembership struct {
	BaseModel

	WorkspaceID string        `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_member" json:"workspace_id"`
	UserID      string        `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_member" json:"user_id"`
	Role        WorkspaceRole `gorm:"size:16;not null" json:"role"`
}
