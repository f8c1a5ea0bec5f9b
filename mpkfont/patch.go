package main

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"mpkfont/pkg/fontpatch"
)

type patchResult struct {
	Input     string
	InputMD5  string
	OutputMD5 string
	FontName  string
	Outcome   fontpatch.Outcome
	Patched   []byte
}

func md5Hex(b []byte) string {
	h := md5.Sum(b)
	return hex.EncodeToString(h[:])
}

func validateFontName(name string) error {
	if name == "" {
		return errors.New("font name is empty")
	}
	if strings.ContainsAny(name, "<>\x00") {
		return errors.Errorf("font name %q contains a reserved character", name)
	}
	return nil
}

// patchPackage reads src and patches it in memory.
// The error is nil only when the outcome is Success.
func patchPackage(src, fontName string) (*patchResult, error) {
	if err := validateFontName(fontName); err != nil {
		return nil, err
	}

	bin, err := os.ReadFile(src)
	if err != nil {
		return nil, &fontpatch.Error{
			Status: fontpatch.InputUnreadable,
			Msg:    "failed to read " + src,
			Err:    errors.WithStack(err),
		}
	}

	res := &patchResult{
		Input:    src,
		InputMD5: md5Hex(bin),
		FontName: fontName,
	}
	logger.Info("package loaded",
		zap.String("path", src),
		zap.String("md5", res.InputMD5),
		zap.String("size", fmt.Sprintf("%.2fMB", float64(len(bin))/1024/1024)))

	if h := getHistory(); h != nil {
		prev, err := h.FindPatchRecordByOutput(res.InputMD5)
		if err == nil {
			res.Outcome = fontpatch.Outcome{
				Status: fontpatch.AlreadyPatched,
				Message: fmt.Sprintf("this file was produced by mpkfont at %s from %s; use an unmodified original",
					prev.Created.Format("2006-01-02 15:04:05"), prev.InputName),
			}
			return res, res.Outcome.Err()
		}
		if err != sql.ErrNoRows {
			logger.Warn("history lookup failed", zap.Error(err))
		}
	}

	res.Outcome, res.Patched = fontpatch.Patch(bin, fontName)
	if res.Outcome.Status == fontpatch.Success {
		res.OutputMD5 = md5Hex(res.Patched)
	} else {
		res.Patched = nil
	}
	logger.Info("patch finished",
		zap.String("path", src),
		zap.Stringer("status", res.Outcome.Status),
		zap.Int("replacements", res.Outcome.Replacements),
		zap.Int("skipped", res.Outcome.Skipped))

	recordHistory(res)
	return res, res.Outcome.Err()
}

func recordHistory(res *patchResult) {
	h := getHistory()
	if h == nil {
		return
	}
	err := h.AddPatchRecord(&PatchRecord{
		InputName:    filepath.Base(res.Input),
		InputMD5:     res.InputMD5,
		OutputMD5:    res.OutputMD5,
		FontName:     res.FontName,
		Status:       res.Outcome.Status.String(),
		Replacements: res.Outcome.Replacements,
		Skipped:      res.Outcome.Skipped,
		Message:      res.Outcome.Message,
	})
	if err != nil {
		logger.Warn("failed to record history", zap.Error(err))
	}
}

// patchFile patches src into dst. dst is written only on Success.
func patchFile(src, dst, fontName string) (*patchResult, error) {
	if sameFile(src, dst) {
		return nil, errors.New("input and output are the same file")
	}
	res, err := patchPackage(src, fontName)
	if err != nil {
		return res, err
	}
	if err := writeFileAtomic(dst, res.Patched); err != nil {
		return res, &fontpatch.Error{Status: fontpatch.OutputWriteFailed, Msg: "failed to write " + dst, Err: err}
	}
	logger.Info("package written", zap.String("path", dst), zap.String("md5", res.OutputMD5))
	return res, nil
}

func sameFile(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}

// writeFileAtomic writes through a temp file in the same directory so that a
// failed write never leaves a partial dst behind.
func writeFileAtomic(dst string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(dst), ".mpkfont-*")
	if err != nil {
		return errors.Wrap(err, "CreateTemp failed")
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(data); err != nil {
		return errors.Wrap(err, "Write failed")
	}
	if err = f.Chmod(0644); err != nil {
		return errors.Wrap(err, "Chmod failed")
	}
	if err = f.Sync(); err != nil {
		return errors.Wrap(err, "Sync failed")
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "Close failed")
	}
	if err = os.Rename(f.Name(), dst); err != nil {
		return errors.Wrap(err, "Rename failed")
	}
	return nil
}
