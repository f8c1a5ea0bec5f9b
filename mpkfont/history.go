package main

import (
	"time"
)

// PatchRecord is one patch invocation.
type PatchRecord struct {
	ID           int64     `db:"id" json:"id,omitempty"`
	InputName    string    `db:"input_name" json:"input_name,omitempty"`
	InputMD5     string    `db:"input_md5" json:"input_md5,omitempty"`
	OutputMD5    string    `db:"output_md5" json:"output_md5,omitempty"`
	FontName     string    `db:"font_name" json:"font_name,omitempty"`
	Status       string    `db:"status" json:"status,omitempty"`
	Replacements int       `db:"replacements" json:"replacements,omitempty"`
	Skipped      int       `db:"skipped" json:"skipped,omitempty"`
	Message      string    `db:"message" json:"message,omitempty"`
	Created      time.Time `db:"created" json:"created,omitempty"`
}

// History is an interface of patch history operation.
type History interface {
	// Init initializes the database.
	Init() error

	// AddPatchRecord saves a patch record.
	AddPatchRecord(record *PatchRecord) error

	// FindPatchRecordByOutput retrieves the newest successful record that produced
	// a file with the md5. It returns sql.ErrNoRows if there is none.
	FindPatchRecordByOutput(outputMD5 string) (*PatchRecord, error)

	// GetRecentPatchRecords returns the newest records first.
	GetRecentPatchRecords(limit int) ([]*PatchRecord, error)
}
