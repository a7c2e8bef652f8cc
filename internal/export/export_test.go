package export

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
)

func colorResearch() *models.Research {
	return &models.Research{
		ID:     "R1",
		Title:  "Colors",
		Detail: []models.FieldDescriptor{{FieldID: "q1", Label: "Favorite color"}},
	}
}

func aliceData() models.ResearchData {
	return models.ResearchData{
		ID:           "S1",
		ResearchID:   "R1",
		User:         map[string]any{"username": "alice"},
		Detail:       map[string]any{"q1": "blue"},
		ModifiedTime: "t1",
		CreatedTime:  "t0",
	}
}

// readBack writes the sheet and parses it again the way a spreadsheet
// consumer would.
func readBack(t *testing.T, sheet Sheet) [][]string {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, sheet); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	return rows
}

func TestExportWithLabels(t *testing.T) {
	sheet := Build(TitlesFrom(colorResearch()), []models.ResearchData{aliceData()})
	rows := readBack(t, sheet)

	want := [][]string{
		{"id", "username", "Favorite color", "research_id", "modified_time", "created_time"},
		{"S1", "alice", "blue", "R1", "t1", "t0"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %v\nwant %v", rows, want)
	}
}

func TestExportDefinitionNotFound(t *testing.T) {
	titles := TitlesFrom(nil)
	if titles.Found {
		t.Fatal("nil definition must not be reported as found")
	}
	sheet := Build(titles, []models.ResearchData{aliceData()})

	want := []string{"id", "username", "q1", "research_id", "modified_time", "created_time"}
	if !reflect.DeepEqual(sheet.Header, want) {
		t.Fatalf("header = %v, want %v", sheet.Header, want)
	}
}

func TestExportEmpty(t *testing.T) {
	sheet := Build(TitlesFrom(colorResearch()), nil)
	if sheet.Header != nil || sheet.Rows != nil {
		t.Fatalf("expected empty sheet, got %+v", sheet)
	}
	if rows := readBack(t, sheet); len(rows) != 0 {
		t.Fatalf("expected no rows, got %v", rows)
	}
}

func TestExportUniformShape(t *testing.T) {
	research := &models.Research{
		ID: "R2",
		Detail: []models.FieldDescriptor{
			{FieldID: "q2", Label: "Second"},
			{FieldID: "q1", Label: "First"},
			{FieldID: "q3", Label: "Third"},
		},
	}
	var data []models.ResearchData
	for _, id := range []string{"S1", "S2", "S3"} {
		data = append(data, models.ResearchData{
			ID:         id,
			ResearchID: "R2",
			User:       map[string]any{"username": "u" + id, "name": "N" + id},
			Detail:     map[string]any{"q1": "a", "q2": "b", "q3": "c"},
		})
	}

	sheet := Build(TitlesFrom(research), data)
	if len(sheet.Rows) != len(data) {
		t.Fatalf("rows = %d, want %d", len(sheet.Rows), len(data))
	}
	wantWidth := 1 + 2 + 3 + 3
	if len(sheet.Header) != wantWidth {
		t.Fatalf("header width = %d, want %d", len(sheet.Header), wantWidth)
	}
	for i, row := range sheet.Rows {
		if len(row) != wantWidth {
			t.Fatalf("row %d width = %d, want %d", i, len(row), wantWidth)
		}
	}
	wantHeader := []string{"id", "name", "username", "Second", "First", "Third", "research_id", "modified_time", "created_time"}
	if !reflect.DeepEqual(sheet.Header, wantHeader) {
		t.Fatalf("header = %v, want %v", sheet.Header, wantHeader)
	}
}

func TestExportHeterogeneousRowsStayAligned(t *testing.T) {
	research := &models.Research{
		Detail: []models.FieldDescriptor{
			{FieldID: "q1", Label: "One"},
			{FieldID: "q2", Label: "Two"},
		},
	}
	data := []models.ResearchData{
		{ID: "S1", ResearchID: "R", User: map[string]any{"username": "a"}, Detail: map[string]any{"q1": "x"}, ModifiedTime: "m1", CreatedTime: "c1"},
		{ID: "S2", ResearchID: "R", User: map[string]any{"username": "b"}, Detail: map[string]any{"q2": "y", "extra": "z"}, ModifiedTime: "m2", CreatedTime: "c2"},
	}

	rows := readBack(t, Build(TitlesFrom(research), data))
	want := [][]string{
		{"id", "username", "One", "Two", "extra", "research_id", "modified_time", "created_time"},
		{"S1", "a", "x", "", "", "R", "m1", "c1"},
		{"S2", "b", "", "y", "z", "R", "m2", "c2"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %v\nwant %v", rows, want)
	}
}

func TestCollidingKeysShareOneColumn(t *testing.T) {
	d := aliceData()
	d.User = map[string]any{"username": "alice", "created_time": "user-ct"}
	d.Detail = map[string]any{"username": "bob", "id": "X", "q1": "blue", "research_id": "spoofed"}

	sheet := Build(TitlesFrom(nil), []models.ResearchData{d})

	wantHeader := []string{"id", "username", "q1", "research_id", "modified_time", "created_time"}
	if !reflect.DeepEqual(sheet.Header, wantHeader) {
		t.Fatalf("header = %v, want %v", sheet.Header, wantHeader)
	}
	wantRow := []any{"X", "bob", "blue", "R1", "t1", "t0"}
	if got := sheet.Rows[0].Values(); !reflect.DeepEqual(got, wantRow) {
		t.Fatalf("row = %v, want %v", got, wantRow)
	}
}

func TestCollidingKeysAcrossRows(t *testing.T) {
	// A key that is a user key in one row and a detail key in another
	// still gets a single column.
	data := []models.ResearchData{
		{ID: "S1", User: map[string]any{"name": "Alice"}, Detail: map[string]any{"q1": "x"}},
		{ID: "S2", User: map[string]any{}, Detail: map[string]any{"name": "Bob"}},
	}
	sheet := Build(TitlesFrom(nil), data)

	wantHeader := []string{"id", "name", "q1", "research_id", "modified_time", "created_time"}
	if !reflect.DeepEqual(sheet.Header, wantHeader) {
		t.Fatalf("header = %v, want %v", sheet.Header, wantHeader)
	}
	if got := sheet.Rows[1].Values()[1]; got != "Bob" {
		t.Fatalf("S2 name = %v", got)
	}
}

func TestFlattenNestedValues(t *testing.T) {
	d := models.ResearchData{
		ID: "S1",
		Detail: map[string]any{
			"multi":  []any{"red", "green"},
			"nested": map[string]any{"k": "v"},
			"num":    float64(3),
			"flag":   true,
		},
	}
	schema := BuildSchema(Titles{}, []models.ResearchData{d})
	row := Flatten(d, schema)

	got := map[string]any{}
	for _, c := range row {
		got[c.Key] = c.Value
	}
	if got["multi"] != `["red","green"]` {
		t.Errorf("multi = %#v", got["multi"])
	}
	if got["nested"] != `{"k":"v"}` {
		t.Errorf("nested = %#v", got["nested"])
	}
	if got["num"] != float64(3) {
		t.Errorf("num = %#v", got["num"])
	}
	if got["flag"] != true {
		t.Errorf("flag = %#v", got["flag"])
	}
}

func TestTitlesFromKeepsDescriptorOrder(t *testing.T) {
	titles := TitlesFrom(&models.Research{Detail: []models.FieldDescriptor{
		{FieldID: "b", Label: "B"},
		{FieldID: "a", Label: "A"},
		{FieldID: "b", Label: "B2"},
	}})
	if !reflect.DeepEqual(titles.Order, []string{"b", "a"}) {
		t.Fatalf("order = %v", titles.Order)
	}
	if titles.Label("b") != "B2" {
		t.Fatalf("later descriptor should win, got %q", titles.Label("b"))
	}
	if titles.Label("zzz") != "zzz" {
		t.Fatalf("unmapped key should be returned verbatim")
	}
}
