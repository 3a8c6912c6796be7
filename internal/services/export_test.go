package services

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"
)

func TestExportResultsCSV(t *testing.T) {
	store := newMemStore()
	seedTaken(store)
	svc := newResults(store, &clock{t: t0.Add(time.Hour)})
	data, err := svc.ExportResultsCSV(professor, "e1")
	if err != nil {
		t.Fatalf("ExportResultsCSV: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "exam_id" || rows[0][7] != "score" {
		t.Fatalf("header = %v", rows[0])
	}
	want := []string{"e1", "Go basics", "stu", "Sam Stu", "1", "0", "1", "100.00", "1"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Fatalf("row 1 = %v, want %v", rows[1], want)
		}
	}
	if rows[2][2] != "ann" || rows[2][7] != "0.00" {
		t.Fatalf("row 2 = %v", rows[2])
	}
}

func TestExportResultsCSVFollowsResultAccess(t *testing.T) {
	store := newMemStore()
	seedTaken(store)
	svc := newResults(store, &clock{t: t0})
	if _, err := svc.ExportResultsCSV(professor, "e1"); !IsKind(err, ErrorTiming) {
		t.Fatalf("before end: err = %v", err)
	}
	if _, err := svc.ExportResultsCSV(student, "e1"); !IsKind(err, ErrorForbidden) {
		t.Fatalf("student: err = %v", err)
	}
}
