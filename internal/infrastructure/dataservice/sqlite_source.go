package dataservice

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/rfq-portal/internal/application/port"
	"github.com/garyjia/rfq-portal/internal/domain/entity"
	"github.com/garyjia/rfq-portal/pkg/database"
	"github.com/garyjia/rfq-portal/pkg/utils"
)

var _ port.DataService = (*SQLiteSource)(nil)

// ErrInvalidModel is returned for data model or column names that are not plain identifiers
var ErrInvalidModel = errors.New("invalid data model name")

// SQLiteSource serves data models from local tables named after them
type SQLiteSource struct {
	db     *database.DB
	logger *zap.Logger
}

// NewSQLiteSource creates a data service backed by the local database
func NewSQLiteSource(db *database.DB, logger *zap.Logger) *SQLiteSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteSource{db: db, logger: logger}
}

// GetData implements port.DataService. where and orderBy are SQL fragments
// produced by the portal service.
func (s *SQLiteSource) GetData(ctx context.Context, model, where, orderBy string) ([]entity.Record, error) {
	if utils.ValidateIdentifier(model) != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModel, model)
	}

	query := fmt.Sprintf(`SELECT * FROM "%s"`, model)
	if strings.TrimSpace(where) != "" {
		query += " WHERE " + where
	}
	if strings.TrimSpace(orderBy) != "" {
		query += " ORDER BY " + orderBy
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Error("Data model query failed", zap.String("model", model), zap.Error(err))
		return nil, fmt.Errorf("failed to query %s: %w", model, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", model, err)
	}

	s.logger.Debug("Data model query completed", zap.String("model", model), zap.Int("records", len(records)))
	return records, nil
}

func scanRecords(rows *sql.Rows) ([]entity.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := []entity.Record{}
	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(entity.Record, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
			} else {
				rec[col] = values[i]
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ImportRecords inserts records into the model's table in one transaction
func (s *SQLiteSource) ImportRecords(ctx context.Context, model string, records []entity.Record) (int, error) {
	if utils.ValidateIdentifier(model) != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidModel, model)
	}

	inserted := 0
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, rec := range records {
			columns := make([]string, 0, len(rec))
			for col := range rec {
				if utils.ValidateIdentifier(col) != nil {
					return fmt.Errorf("%w: column %q", ErrInvalidModel, col)
				}
				columns = append(columns, col)
			}
			if len(columns) == 0 {
				continue
			}
			sort.Strings(columns)

			args := make([]interface{}, len(columns))
			quoted := make([]string, len(columns))
			for i, col := range columns {
				quoted[i] = `"` + col + `"`
				args[i] = sqlValue(rec[col])
			}
			stmt := fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES (%s)`,
				model, strings.Join(quoted, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "))
			if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
				return fmt.Errorf("failed to insert into %s: %w", model, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Records imported", zap.String("model", model), zap.Int("count", inserted))
	return inserted, nil
}

// LoadFixtures imports a JSON file shaped as {"MODEL": [ {...}, ... ]}
func (s *SQLiteSource) LoadFixtures(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fixtures: %w", err)
	}

	var fixtures map[string][]map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fixtures); err != nil {
		return fmt.Errorf("failed to parse fixtures: %w", err)
	}

	models := make([]string, 0, len(fixtures))
	for model := range fixtures {
		models = append(models, model)
	}
	sort.Strings(models)

	for _, model := range models {
		records, _ := entity.RecordsFrom(fixtures[model])
		if _, err := s.ImportRecords(ctx, model, records); err != nil {
			return err
		}
	}
	return nil
}

func sqlValue(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]interface{}, []interface{}:
		b, _ := json.Marshal(val)
		return string(b)
	default:
		return val
	}
}
