package dataservice

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/rfq-portal/internal/domain/entity"
	"github.com/garyjia/rfq-portal/pkg/database"
)

func newTestSource(t *testing.T) *SQLiteSource {
	t.Helper()
	ctx := context.Background()

	db, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "rfq.db"), MaxOpenConns: 1}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, zap.NewNop()).RunMigrations(ctx, ""))
	return NewSQLiteSource(db, zap.NewNop())
}

func TestSQLiteSource_GetData(t *testing.T) {
	src := newTestSource(t)
	ctx := context.Background()

	n, err := src.ImportRecords(ctx, entity.ModelQuotationMaster, []entity.Record{
		{entity.FieldReferenceNo: "Q1", entity.FieldSerialNo: "1", "SELECTED_VENDOR": "42", "QUANTITY": 5.5},
		{entity.FieldReferenceNo: "Q1", entity.FieldSerialNo: nil, "SELECTED_VENDOR": "42"},
		{entity.FieldReferenceNo: "Q9", entity.FieldSerialNo: "1", "SELECTED_VENDOR": "7"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	records, err := src.GetData(ctx, entity.ModelQuotationMaster, "SELECTED_VENDOR = '42'", "ID")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Q1", records[0][entity.FieldReferenceNo])
	assert.Equal(t, 5.5, records[0]["QUANTITY"])
	assert.Nil(t, records[1][entity.FieldSerialNo])
	assert.Contains(t, records[0], "ITEM_CODE", "every column is returned")
}

func TestSQLiteSource_EmptyResult(t *testing.T) {
	src := newTestSource(t)

	records, err := src.GetData(context.Background(), entity.ModelQuotationMaster, "SELECTED_VENDOR = 'none'", "")

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestSQLiteSource_InvalidModel(t *testing.T) {
	src := newTestSource(t)
	ctx := context.Background()

	for _, model := range []string{"", "VENDOR_MASTER; DROP TABLE x", `a"b`, "1ABC"} {
		_, err := src.GetData(ctx, model, "", "")
		assert.ErrorIs(t, err, ErrInvalidModel, model)
	}

	_, err := src.ImportRecords(ctx, entity.ModelSupplierMaster, []entity.Record{{"BAD COLUMN": 1}})
	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestSQLiteSource_UnknownTable(t *testing.T) {
	src := newTestSource(t)

	_, err := src.GetData(context.Background(), "MISSING_MODEL", "", "")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidModel)
}

func TestSQLiteSource_LoadFixtures(t *testing.T) {
	src := newTestSource(t)
	ctx := context.Background()

	fixtures := map[string]interface{}{
		entity.ModelSupplierMaster: []map[string]interface{}{
			{"VENDOR_ID": "42", "VENDOR_NAME": "Acme Metals"},
			{"VENDOR_ID": "7", "VENDOR_NAME": "Birch Supplies"},
		},
		entity.ModelQuotationMaster: []map[string]interface{}{
			{"QUOTATION_REF_NO": "Q1", "SERIAL_NO": "1", "SELECTED_VENDOR": "42", "QUANTITY": 10},
		},
	}
	raw, err := json.Marshal(fixtures)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "fixtures.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	require.NoError(t, src.LoadFixtures(ctx, path))

	suppliers, err := src.GetData(ctx, entity.ModelSupplierMaster, "", "VENDOR_NAME")
	require.NoError(t, err)
	require.Len(t, suppliers, 2)
	assert.Equal(t, "Acme Metals", suppliers[0].Text(entity.FieldVendorName))

	quotes, err := src.GetData(ctx, entity.ModelQuotationMaster, "SELECTED_VENDOR = '42'", "")
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "10", quotes[0].Text("QUANTITY"))
}
