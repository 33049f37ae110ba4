package quotation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/rfq-portal/internal/domain/entity"
)

func line(ref string, serial interface{}) entity.Record {
	r := entity.Record{entity.FieldReferenceNo: ref}
	if serial != nil {
		r[entity.FieldSerialNo] = serial
	}
	return r
}

func TestGroup_ReferenceScenario(t *testing.T) {
	records := []entity.Record{
		{entity.FieldReferenceNo: "Q1", entity.FieldSerialNo: nil},
		{entity.FieldReferenceNo: "Q1", entity.FieldSerialNo: "2"},
		{entity.FieldReferenceNo: "Q2", entity.FieldSerialNo: "1"},
	}

	groups := Group(records)

	require.Len(t, groups, 2)
	assert.Equal(t, "Q1", groups[0].ReferenceNo())
	assert.Equal(t, 2, groups[0].ItemCount)
	assert.Equal(t, "", groups[0].Items[0][entity.FieldSerialNo])
	assert.Equal(t, "2", groups[0].Items[1][entity.FieldSerialNo])

	assert.Equal(t, "Q2", groups[1].ReferenceNo())
	assert.Equal(t, 1, groups[1].ItemCount)
	assert.Equal(t, "1", groups[1].Items[0][entity.FieldSerialNo])
}

func TestGroup_EmptyInput(t *testing.T) {
	t.Run("nil slice", func(t *testing.T) {
		groups := Group(nil)
		assert.NotNil(t, groups)
		assert.Empty(t, groups)
	})

	t.Run("empty slice", func(t *testing.T) {
		assert.Empty(t, Group([]entity.Record{}))
	})
}

func TestGroup_PreservesEveryRecord(t *testing.T) {
	records := []entity.Record{
		line("A", "1"), line("B", "1"), line("A", "2"),
		line("C", nil), line("B", "2"), line("A", "3"),
	}

	groups := Group(records)

	assert.Equal(t, len(records), TotalItems(groups))
	for _, g := range groups {
		assert.Equal(t, len(g.Items), g.ItemCount)
	}

	var serialsA []interface{}
	for _, item := range groups[0].Items {
		serialsA = append(serialsA, item[entity.FieldSerialNo])
	}
	assert.Equal(t, []interface{}{"1", "2", "3"}, serialsA)
}

func TestGroup_FirstOccurrenceOrder(t *testing.T) {
	base := []entity.Record{line("Z", "1"), line("A", "1"), line("M", "1")}
	later1 := []entity.Record{line("A", "2"), line("Z", "2"), line("M", "2")}
	later2 := []entity.Record{line("M", "2"), line("A", "2"), line("Z", "2")}

	order := func(groups []entity.QuotationGroup) []string {
		var refs []string
		for _, g := range groups {
			refs = append(refs, g.ReferenceNo())
		}
		return refs
	}

	first := Group(append(append([]entity.Record{}, base...), later1...))
	second := Group(append(append([]entity.Record{}, base...), later2...))

	assert.Equal(t, []string{"Z", "A", "M"}, order(first))
	assert.Equal(t, order(first), order(second))
}

func TestGroup_KeyTakenVerbatim(t *testing.T) {
	records := []entity.Record{
		line("", "1"),
		line(" Q1", "1"),
		line("Q1", "1"),
		{entity.FieldReferenceNo: float64(7)},
		{entity.FieldReferenceNo: "7"},
	}

	groups := Group(records)

	require.Len(t, groups, 4)
	assert.Equal(t, "", groups[0].ReferenceNo())
	assert.Equal(t, " Q1", groups[1].ReferenceNo())
	assert.Equal(t, "Q1", groups[2].ReferenceNo())
	assert.Equal(t, 2, groups[3].ItemCount)
}

func TestGroup_IndependentCopies(t *testing.T) {
	src := entity.Record{
		entity.FieldReferenceNo: "Q1",
		entity.FieldExpectedDate: "2026-10-20",
		"ITEM_CODE":             "X-1",
	}

	groups := Group([]entity.Record{src})
	require.Len(t, groups, 1)
	g := groups[0]

	t.Run("source mutation does not leak", func(t *testing.T) {
		src["ITEM_CODE"] = "changed"
		assert.Equal(t, "X-1", g.Header["ITEM_CODE"])
		assert.Equal(t, "X-1", g.Items[0]["ITEM_CODE"])
	})

	t.Run("header and item are separate", func(t *testing.T) {
		g.Items[0]["ITEM_CODE"] = "item-only"
		assert.Equal(t, "X-1", g.Header["ITEM_CODE"])
	})

	t.Run("both normalize serial", func(t *testing.T) {
		assert.Equal(t, "", g.Header[entity.FieldSerialNo])
		_, ok := src[entity.FieldSerialNo]
		assert.False(t, ok, "source record must not be normalized in place")
	})
}

func TestGroup_KeepsOpaqueFields(t *testing.T) {
	records := []entity.Record{
		{entity.FieldReferenceNo: "Q1", "QTY": json.Number("12.5"), "UOM": "KG", entity.FieldSerialNo: "0"},
	}

	groups := Group(records)

	require.Len(t, groups, 1)
	item := groups[0].Items[0]
	assert.Equal(t, json.Number("12.5"), item["QTY"])
	assert.Equal(t, "KG", item["UOM"])
	assert.Equal(t, "0", item[entity.FieldSerialNo])
}

func TestGroup_NilRecord(t *testing.T) {
	records := []entity.Record{line("Q1", "1"), nil, line("Q1", "2")}

	groups := Group(records)

	require.Len(t, groups, 2)
	assert.Equal(t, len(records), TotalItems(groups))
	assert.Equal(t, "", groups[1].ReferenceNo())
	assert.Equal(t, entity.Record{entity.FieldSerialNo: ""}, groups[1].Items[0])
}

func TestQuotationGroup_MarshalJSON(t *testing.T) {
	groups := Group([]entity.Record{line("Q1", nil), line("Q1", "2")})

	raw, err := json.Marshal(groups[0])
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Q1", decoded["QUOTATION_REF_NO"])
	assert.Equal(t, float64(2), decoded["itemCount"])
	assert.Len(t, decoded["items"], 2)
}
