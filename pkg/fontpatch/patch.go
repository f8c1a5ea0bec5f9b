// Package fontpatch rewrites the font references inside a resource package
// without changing the size of any region it touches.
package fontpatch

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var (
	fontElemRegexp = regexp.MustCompile(`<Font>[\s\S]*?</Font>`)
	fileElemRegexp = regexp.MustCompile(`<File>[^<]+</File>`)
	nameElemRegexp = regexp.MustCompile(`<Name>[^<]+</Name>`)
)

// Patch rewrites every font reference in buf to newFont.
//
// buf is not modified. The returned buffer is a copy that differs from buf
// only when the outcome is Success; callers should persist it only then.
// A site whose rewrite would not fit in its original region is skipped.
func Patch(buf []byte, newFont string) (Outcome, []byte) {
	sites := Scan(buf)
	out := bytes.Clone(buf)
	if len(sites) == 0 {
		if hasPatchedMarker(buf, newFont) {
			return outcome(AlreadyPatched, 0, 0), out
		}
		return outcome(NoDataFound, 0, 0), out
	}

	name := []byte(newFont)
	replaced, skipped := 0, 0
	for _, s := range sites {
		var ok, changed bool
		switch s.Kind {
		case XMLBlock:
			ok, changed = patchXMLBlock(out, s, newFont)
		case RawString:
			ok, changed = patchRawString(out, s, name), true
		}
		if !changed {
			continue
		}
		if ok {
			replaced++
		} else {
			skipped++
		}
	}

	if 0 < replaced {
		return outcome(Success, replaced, skipped), out
	}
	// Nothing was written, so out is still equal to buf.
	if hasPatchedMarker(buf, newFont) {
		return outcome(AlreadyPatched, 0, skipped), out
	}
	return outcome(NoOpApplied, 0, skipped), out
}

// patchXMLBlock overwrites the block in out with its rewritten text padded
// with spaces. changed is false when the block has no target element to
// rewrite; ok is false when the rewritten text is longer than the block.
func patchXMLBlock(out []byte, s Site, newFont string) (ok bool, changed bool) {
	b, changed := rewriteXMLBlock(s.Content, newFont)
	if !changed {
		return false, false
	}
	if s.Length < len(b) {
		return false, true
	}
	region := out[s.Offset : s.Offset+s.Length]
	n := copy(region, b)
	for i := n; i < len(region); i++ {
		region[i] = ' '
	}
	return true, true
}

func rewriteXMLBlock(content []byte, newFont string) ([]byte, bool) {
	text := decodeLossy(content)
	rewrote := false
	text = fontElemRegexp.ReplaceAllStringFunc(text, func(elem string) string {
		if !isTargetFontElem(elem) {
			return elem
		}
		ret := fileElemRegexp.ReplaceAllLiteralString(elem, "<File>"+newFont+"</File>")
		ret = nameElemRegexp.ReplaceAllLiteralString(ret, "<Name>"+CanonicalName+"</Name>")
		if ret != elem {
			rewrote = true
		}
		return ret
	})
	if !rewrote {
		return content, false
	}
	return []byte(text), true
}

func isTargetFontElem(elem string) bool {
	lower := strings.ToLower(elem)
	for _, k := range roleKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	for _, name := range legacyFonts {
		if strings.Contains(elem, string(name)) {
			return true
		}
	}
	return false
}

// decodeLossy decodes b as UTF-8, dropping invalid byte sequences.
func decodeLossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	dropInvalid := runes.Remove(runes.Predicate(func(r rune) bool { return r == utf8.RuneError }))
	ret, _, err := transform.Bytes(dropInvalid, b)
	if err != nil {
		// Remove does not fail on complete input.
		return string(b)
	}
	return string(ret)
}

// patchRawString overwrites the zero padded name field at s.Offset.
// The field ends at the first non-zero byte after the legacy name.
func patchRawString(out []byte, s Site, name []byte) bool {
	end := s.Offset + len(s.LegacyName)
	for end < len(out) && out[end] == 0 {
		end++
	}
	if end-s.Offset < len(name) {
		return false
	}
	field := out[s.Offset:end]
	n := copy(field, name)
	for i := n; i < len(field); i++ {
		field[i] = 0
	}
	return true
}

func hasPatchedMarker(buf []byte, newFont string) bool {
	if newFont != "" && bytes.Contains(buf, []byte(newFont)) {
		return true
	}
	for _, m := range patchedMarkers {
		if bytes.Contains(buf, m) {
			return true
		}
	}
	return false
}
