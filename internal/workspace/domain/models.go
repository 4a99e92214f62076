package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Workspace is the tenant-level grouping of applications and users.
type Workspace struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	Name       string       `gorm:"type:text;not null"`
	IsTemplate bool         `gorm:"not null;default:false"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Workspace) TableName() string { return "workspaces" }

type User struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Username  string       `gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string { return "users" }

// Member links a user to a workspace.
type Member struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	WorkspaceID snowflake.ID `gorm:"not null;uniqueIndex:idx_workspace_members_pair"`
	UserID      snowflake.ID `gorm:"not null;uniqueIndex:idx_workspace_members_pair"`
	Role        string       `gorm:"type:text;not null;default:'MEMBER'"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Member) TableName() string { return "workspace_members" }
