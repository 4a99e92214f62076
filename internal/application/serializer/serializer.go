// Package serializer implements the export/import contract for the
// built-in grid application type. An export is a single JSON document
// in the blob bucket holding the application's tables, fields and
// rows; an import replays that document into fresh records.
package serializer

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/gridbase/gridbase/internal/application/domain"
	"github.com/gridbase/gridbase/internal/progress"
	jsoniter "github.com/json-iterator/go"
	"gocloud.dev/blob"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TypeGrid is the registry name of the built-in grid application type.
const TypeGrid = "grid"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type exportedApplication struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Tables []exportedTable `json:"tables"`
}

type exportedTable struct {
	Name   string           `json:"name"`
	Fields []exportedField  `json:"fields"`
	Rows   []map[string]any `json:"rows"`
}

type exportedField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// GridType is the application type descriptor for grid applications.
type GridType struct {
	genID *snowflake.Node
}

func NewGridType(genID *snowflake.Node) *GridType {
	return &GridType{genID: genID}
}

func (t *GridType) Name() string { return TypeGrid }

func (t *GridType) SupportsSnapshots() bool { return true }

func (t *GridType) ExportSerialized(ctx context.Context, db *gorm.DB, app *applicationdomain.Application, bucket *blob.Bucket) (*applicationdomain.Serialized, error) {
	var tables []applicationdomain.Table
	if err := db.WithContext(ctx).
		Where("application_id = ?", app.ID).
		Order("id").
		Find(&tables).Error; err != nil {
		return nil, err
	}

	export := exportedApplication{
		Name:   app.Name,
		Type:   app.Type,
		Tables: make([]exportedTable, 0, len(tables)),
	}
	for _, table := range tables {
		exported, err := t.exportTable(ctx, db, table)
		if err != nil {
			return nil, err
		}
		export.Tables = append(export.Tables, exported)
	}

	payload, err := json.Marshal(export)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("exports/%s.json", t.genID.Generate())
	if err := bucket.WriteAll(ctx, key, payload, nil); err != nil {
		return nil, err
	}
	return &applicationdomain.Serialized{Key: key}, nil
}

func (t *GridType) exportTable(ctx context.Context, db *gorm.DB, table applicationdomain.Table) (exportedTable, error) {
	exported := exportedTable{Name: table.Name}

	var fields []applicationdomain.Field
	if err := db.WithContext(ctx).
		Where("table_id = ?", table.ID).
		Order("id").
		Find(&fields).Error; err != nil {
		return exported, err
	}
	for _, field := range fields {
		exported.Fields = append(exported.Fields, exportedField{Name: field.Name, Type: field.Type})
	}

	var rows []applicationdomain.Row
	if err := db.WithContext(ctx).
		Where("table_id = ?", table.ID).
		Order("id").
		Find(&rows).Error; err != nil {
		return exported, err
	}
	for _, row := range rows {
		exported.Rows = append(exported.Rows, map[string]any(row.Values))
	}
	return exported, nil
}

func (t *GridType) ImportSerialized(ctx context.Context, db *gorm.DB, workspaceID *snowflake.ID, serialized *applicationdomain.Serialized, bucket *blob.Bucket, p *progress.Progress) (*applicationdomain.Application, error) {
	payload, err := bucket.ReadAll(ctx, serialized.Key)
	if err != nil {
		return nil, err
	}
	var export exportedApplication
	if err := json.Unmarshal(payload, &export); err != nil {
		return nil, err
	}

	app := &applicationdomain.Application{
		ID:          t.genID.Generate(),
		WorkspaceID: workspaceID,
		Type:        export.Type,
		Name:        export.Name,
	}
	if err := db.WithContext(ctx).Create(app).Error; err != nil {
		return nil, err
	}

	// One unit per table plus a final unit, so empty applications still
	// consume the whole scope.
	scope := p.Child(p.Total()-p.Done(), len(export.Tables)+1)
	for _, exported := range export.Tables {
		if err := t.importTable(ctx, db, app.ID, exported); err != nil {
			return nil, err
		}
		scope.Increment(1)
	}
	scope.Increment(1)
	return app, nil
}

func (t *GridType) importTable(ctx context.Context, db *gorm.DB, appID snowflake.ID, exported exportedTable) error {
	table := &applicationdomain.Table{
		ID:            t.genID.Generate(),
		ApplicationID: appID,
		Name:          exported.Name,
	}
	if err := db.WithContext(ctx).Create(table).Error; err != nil {
		return err
	}

	for _, field := range exported.Fields {
		record := &applicationdomain.Field{
			ID:      t.genID.Generate(),
			TableID: table.ID,
			Name:    field.Name,
			Type:    field.Type,
		}
		if err := db.WithContext(ctx).Create(record).Error; err != nil {
			return err
		}
	}

	for _, values := range exported.Rows {
		record := &applicationdomain.Row{
			ID:      t.genID.Generate(),
			TableID: table.ID,
			Values:  datatypes.JSONMap(values),
		}
		if err := db.WithContext(ctx).Create(record).Error; err != nil {
			return err
		}
	}
	return nil
}
