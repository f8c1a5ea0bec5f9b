package main

import (
	"database/sql"
	"testing"
)

func TestSQLiteHistory_AddAndFind(t *testing.T) {
	r := &PatchRecord{
		InputName:    "Resources.mpk",
		InputMD5:     "in-md5",
		OutputMD5:    "out-md5-history",
		FontName:     "normal.ttf",
		Status:       "success",
		Replacements: 3,
	}
	must(t, getHistory().AddPatchRecord(r))
	if r.ID == 0 {
		t.Fatal("ID not assigned")
	}

	got, err := getHistory().FindPatchRecordByOutput("out-md5-history")
	must(t, err)
	assertEq(t, r.ID, got.ID)
	assertEq(t, "Resources.mpk", got.InputName)
	assertEq(t, 3, got.Replacements)
}

func TestSQLiteHistory_FindIgnoresFailures(t *testing.T) {
	must(t, getHistory().AddPatchRecord(&PatchRecord{
		InputMD5:  "x",
		OutputMD5: "out-md5-failed",
		Status:    "no-op-applied",
	}))
	_, err := getHistory().FindPatchRecordByOutput("out-md5-failed")
	assertEq(t, sql.ErrNoRows, err)
}

func TestSQLiteHistory_Recent(t *testing.T) {
	for i := 0; i < 3; i++ {
		must(t, getHistory().AddPatchRecord(&PatchRecord{InputName: "recent", Status: "success"}))
	}
	records, err := getHistory().GetRecentPatchRecords(2)
	must(t, err)
	assertEq(t, 2, len(records))
	if records[0].ID < records[1].ID {
		t.Errorf("not newest first: %d, %d", records[0].ID, records[1].ID)
	}
}
