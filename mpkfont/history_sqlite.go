package main

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

type SQLiteHistory struct {
	*sqlx.DB
}

const historySchema = `CREATE TABLE IF NOT EXISTS patch_record
(
    id           integer PRIMARY KEY AUTOINCREMENT,
    input_name   text    default '',
    input_md5    text    default '',
    output_md5   text    default '',
    font_name    text    default '',
    status       text    default '',
    replacements integer default 0,
    skipped      integer default 0,
    message      text    default '',
    created      timestamp
);
`

const historyIndexes = `
CREATE INDEX IF NOT EXISTS PATCH_RECORD_OUTPUT_MD5 ON patch_record(output_md5);
CREATE INDEX IF NOT EXISTS PATCH_RECORD_CREATED ON patch_record(created);
`

func (db SQLiteHistory) Init() error {
	_, err := db.Exec(historySchema + historyIndexes)
	return errors.Wrap(err, "failed to create tables")
}

func (db SQLiteHistory) AddPatchRecord(record *PatchRecord) error {
	record.Created = time.Now()
	res, err := db.NamedExec(`
INSERT INTO patch_record
	(input_name, input_md5, output_md5, font_name, status, replacements, skipped, message, created)
VALUES
	(:input_name, :input_md5, :output_md5, :font_name, :status, :replacements, :skipped, :message, :created)`,
		record)
	if err != nil {
		return errors.Wrap(err, "INSERT failed")
	}
	record.ID, err = res.LastInsertId()
	return err
}

func (db SQLiteHistory) FindPatchRecordByOutput(outputMD5 string) (*PatchRecord, error) {
	r := &PatchRecord{}
	err := db.QueryRowx(`SELECT * FROM patch_record WHERE output_md5 = ? AND status = 'success'
ORDER BY created DESC, id DESC LIMIT 1`, outputMD5).StructScan(r)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (db SQLiteHistory) GetRecentPatchRecords(limit int) ([]*PatchRecord, error) {
	var records []*PatchRecord
	err := db.Select(&records, `SELECT * FROM patch_record ORDER BY created DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "SELECT failed")
	}
	return records, nil
}
