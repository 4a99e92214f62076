package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/gridbase/gridbase/internal/application/domain"
	"gorm.io/gorm"
)

type Repository struct{}

func Provide() applicationdomain.Repository {
	return &Repository{}
}

func (r *Repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*applicationdomain.Application, error) {
	var app applicationdomain.Application
	err := db.WithContext(ctx).
		Preload("Workspace").
		First(&app, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, applicationdomain.ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *Repository) NamesInWorkspace(ctx context.Context, db *gorm.DB, workspaceID snowflake.ID) ([]string, error) {
	var names []string
	err := db.WithContext(ctx).
		Model(&applicationdomain.Application{}).
		Where("workspace_id = ?", workspaceID).
		Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *Repository) Update(ctx context.Context, db *gorm.DB, app *applicationdomain.Application) error {
	return db.WithContext(ctx).Save(app).Error
}

func (r *Repository) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	queries := []string{
		`DELETE FROM application_rows WHERE table_id IN
			(SELECT id FROM application_tables WHERE application_id = ?)`,
		`DELETE FROM application_fields WHERE table_id IN
			(SELECT id FROM application_tables WHERE application_id = ?)`,
		`DELETE FROM application_tables WHERE application_id = ?`,
		`DELETE FROM applications WHERE id = ?`,
	}
	for _, query := range queries {
		if err := db.WithContext(ctx).Exec(query, id).Error; err != nil {
			return err
		}
	}
	return nil
}
