package admin

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"rocket-admin/internal/metadata"
	"rocket-admin/internal/views"
)

// Handler names usable in resource definition files.
const (
	ActionExportCSV  = "export_csv"
	ActionExportJSON = "export_json"
	ActionDuplicate  = "duplicate"
)

const exportBatchSize = 500

// RegisterBuiltinActions adds the stock export and duplicate handlers.
func RegisterBuiltinActions(reg *metadata.ActionRegistry) {
	reg.RegisterCollection(ActionExportCSV, ExportCSV)
	reg.RegisterCollection(ActionExportJSON, ExportJSON)
	reg.RegisterMember(ActionDuplicate, Duplicate)
}

// ExportCSV downloads every record with the show view's columns.
func ExportCSV(req *metadata.ActionRequest, db metadata.Database) (*metadata.ActionResponse, error) {
	res := req.Resource
	cols := res.ShowColumns()
	records, err := selectAll(req.Context, db, res)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(cols.Names()); err != nil {
		return nil, err
	}
	line := make([]string, len(cols))
	for _, rec := range records {
		for i, col := range cols {
			line[i] = views.FormatCell(col, rec[col.Name])
		}
		if err := w.Write(line); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}

	return &metadata.ActionResponse{
		ContentType: "text/csv; charset=utf-8",
		Filename:    res.RoutePath + ".csv",
		Body:        buf.Bytes(),
	}, nil
}

// ExportJSON downloads every record as a JSON array keyed by column name.
func ExportJSON(req *metadata.ActionRequest, db metadata.Database) (*metadata.ActionResponse, error) {
	res := req.Resource
	cols := res.ShowColumns()
	records, err := selectAll(req.Context, db, res)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, len(records))
	for i, rec := range records {
		m := make(map[string]any, len(cols))
		for _, col := range cols {
			m[col.Name] = rec[col.Name]
		}
		out[i] = m
	}
	body, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	return &metadata.ActionResponse{
		ContentType: "application/json",
		Filename:    res.RoutePath + ".json",
		Body:        body,
	}, nil
}

// Duplicate inserts a copy of a record without its auto-managed columns.
func Duplicate(ctx context.Context, id string, db metadata.Database) error {
	res, ok := metadata.ResourceFromContext(ctx)
	if !ok {
		return fmt.Errorf("duplicate: no resource in context")
	}
	pk, err := res.ParseID(id)
	if err != nil {
		return err
	}
	rows, err := db.Select(ctx, res.TableName, metadata.Query{
		Filters: []metadata.Filter{{Column: res.PrimaryKey().SQLName, Value: pk}},
		Limit:   1,
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return metadata.NotFoundError(res.DisplayName, id)
	}

	source := res.Columns.FromRow(rows[0])
	copied := make(metadata.Record, len(source))
	for _, col := range res.Columns {
		if metadata.IsAutoManaged(col) {
			continue
		}
		if v, ok := source[col.Name]; ok {
			copied[col.Name] = v
		}
	}
	_, err = db.Insert(ctx, res.TableName, res.Columns.ToRow(copied))
	return err
}

func selectAll(ctx context.Context, db metadata.Database, res *metadata.ResourceDefinition) ([]metadata.Record, error) {
	var out []metadata.Record
	order := []metadata.Order{{Column: res.PrimaryKey().SQLName}}
	for offset := 0; ; offset += exportBatchSize {
		rows, err := db.Select(ctx, res.TableName, metadata.Query{OrderBy: order, Limit: exportBatchSize, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", res.TableName, err)
		}
		out = append(out, res.Columns.FromRows(rows)...)
		if len(rows) < exportBatchSize {
			return out, nil
		}
	}
}
