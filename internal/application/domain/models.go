package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	workspacedomain "github.com/gridbase/gridbase/internal/workspace/domain"
	"gorm.io/datatypes"
)

// Application is a top-level resource inside a workspace. A nil
// WorkspaceID detaches the application from every workspace; detached
// applications hold snapshot data and never show up in user-facing
// listings.
type Application struct {
	ID          snowflake.ID               `gorm:"primaryKey"`
	WorkspaceID *snowflake.ID              `gorm:"index"`
	Workspace   *workspacedomain.Workspace `gorm:"foreignKey:WorkspaceID"`
	Type        string                     `gorm:"type:text;not null"`
	Name        string                     `gorm:"type:text;not null"`
	CreatedAt   time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Application) TableName() string { return "applications" }

// Table is a data table inside a grid application.
type Table struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	ApplicationID snowflake.ID `gorm:"not null;index"`
	Name          string       `gorm:"type:text;not null"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Table) TableName() string { return "application_tables" }

// Field describes one column of a table.
type Field struct {
	ID      snowflake.ID `gorm:"primaryKey"`
	TableID snowflake.ID `gorm:"not null;index"`
	Name    string       `gorm:"type:text;not null"`
	Type    string       `gorm:"type:text;not null"`
}

func (Field) TableName() string { return "application_fields" }

// Row stores one record of a table as a field-name keyed document.
type Row struct {
	ID      snowflake.ID      `gorm:"primaryKey"`
	TableID snowflake.ID      `gorm:"not null;index"`
	Values  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
}

func (Row) TableName() string { return "application_rows" }
