package fontpatch

import (
	"bytes"
	"strings"
	"testing"
)

func field(name string, size int) []byte {
	b := make([]byte, size)
	copy(b, name)
	return b
}

func TestPatch_xmlBlock(t *testing.T) {
	block := []byte("<Root><Font><Name>Old</Name><File>HanYiQuanTangShiS.ttf</File></Font></Root>")
	head := bytes.Repeat([]byte{0xAB}, 16)
	tail := bytes.Repeat([]byte{0xCD}, 16)
	buf := bytes.Join([][]byte{head, block, tail}, nil)

	o, out := Patch(buf, "normal.ttf")
	if o.Status != Success || o.Replacements != 1 {
		t.Fatalf("Patch() = %+v", o)
	}
	if len(out) != len(buf) {
		t.Fatalf("length changed: %d -> %d", len(buf), len(out))
	}
	want := "<Root><Font><Name>NormalFont</Name><File>normal.ttf</File></Font></Root>"
	want += strings.Repeat(" ", len(block)-len(want))
	if got := string(out[16 : 16+len(block)]); got != want {
		t.Errorf("block = %q, want %q", got, want)
	}
	if !bytes.Equal(out[:16], head) || !bytes.Equal(out[16+len(block):], tail) {
		t.Error("bytes outside the block changed")
	}
	if !bytes.Contains(buf, []byte("HanYiQuanTangShiS.ttf")) {
		t.Error("input buffer was modified")
	}
}

func TestPatch_rawString(t *testing.T) {
	slot := field("AlegreyaSans-Medium.ttf", 32)
	buf := bytes.Join([][]byte{{1, 2, 3, 4}, slot, {9, 9}}, nil)

	o, out := Patch(buf, "normal.ttf")
	if o.Status != Success || o.Replacements != 1 || o.Skipped != 0 {
		t.Fatalf("Patch() = %+v", o)
	}
	if !bytes.Equal(out[4:14], []byte("normal.ttf")) {
		t.Errorf("name = %q", out[4:14])
	}
	if !bytes.Equal(out[14:36], make([]byte, 22)) {
		t.Errorf("padding = %v", out[14:36])
	}
	if !bytes.Equal(out[:4], []byte{1, 2, 3, 4}) || !bytes.Equal(out[36:], []byte{9, 9}) {
		t.Error("bytes outside the slot changed")
	}
}

func TestPatch_rawStringOverflow(t *testing.T) {
	slot := field("AlegreyaSans-Medium.ttf", 32)
	buf := bytes.Join([][]byte{{1, 2, 3, 4}, slot, {9, 9}}, nil)
	long := strings.Repeat("f", 36) + ".ttf"

	o, out := Patch(buf, long)
	if o.Status != NoOpApplied || o.Replacements != 0 || o.Skipped != 1 {
		t.Fatalf("Patch() = %+v", o)
	}
	if !bytes.Equal(out, buf) {
		t.Error("output differs from input")
	}
	if o.Err() == nil || StatusOf(o.Err()) != NoOpApplied {
		t.Errorf("Err() = %v", o.Err())
	}
}

func TestPatch_skipSafety(t *testing.T) {
	block := []byte("<Root><Font><Name>Normal Text</Name><File>MrsEavSmaCap.ttf</File></Font></Root>")
	sep := bytes.Repeat([]byte{7}, 64)
	buf := bytes.Join([][]byte{
		field("ZHJB-Xiangjiahong_fanti.TTF", 30), sep,
		block, sep,
		field("AaShiSongTi-2.ttf", 20), sep,
	}, nil)
	long := strings.Repeat("a", 60) + ".ttf"

	o, out := Patch(buf, long)
	if o.Status != NoOpApplied || o.Replacements != 0 || o.Skipped != 3 {
		t.Fatalf("Patch() = %+v", o)
	}
	if !bytes.Equal(out, buf) {
		t.Error("output differs from input")
	}
}

func TestPatch_noData(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"random", bytes.Repeat([]byte{0, 1, 2, 3, 'x'}, 200)},
		{"xml without font", []byte("<Root><Image><File>a.png</File></Image></Root>")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, out := Patch(tt.buf, "normal.ttf")
			if o.Status != NoDataFound || o.Replacements != 0 {
				t.Errorf("Patch() = %+v", o)
			}
			if !bytes.Equal(out, tt.buf) {
				t.Error("output differs from input")
			}
		})
	}
}

func TestPatch_alreadyPatched(t *testing.T) {
	tests := []struct {
		name    string
		buf     []byte
		newFont string
	}{
		{"canonical name", []byte("xxNormalFontxx"), "normal.ttf"},
		{"new font name", []byte("\x00\x00my-font.ttf\x00"), "my-font.ttf"},
		{"default name", []byte("\x00normal.ttf\x00"), "other.ttf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _ := Patch(tt.buf, tt.newFont)
			if o.Status != AlreadyPatched {
				t.Errorf("Patch() = %+v", o)
			}
		})
	}
}

func TestPatch_rerunIsNotSuccess(t *testing.T) {
	sep := bytes.Repeat([]byte{0xEE}, 64)
	buf := bytes.Join([][]byte{
		sep,
		[]byte("<Root><Font><Name>Body</Name><Desc>Normal Text</Desc><File>AlegreyaSans-Regular.ttf</File></Font>" +
			"<Font><Name>Icons</Name><File>icons.ttf</File></Font></Root>"),
		sep,
		field("HanYiQuanTangShiS.ttf", 28),
		sep,
	}, nil)

	o, once := Patch(buf, "normal.ttf")
	if o.Status != Success || o.Replacements != 2 {
		t.Fatalf("first Patch() = %+v", o)
	}
	o, twice := Patch(once, "normal.ttf")
	if o.Status != AlreadyPatched {
		t.Fatalf("second Patch() = %+v", o)
	}
	if !bytes.Equal(once, twice) {
		t.Error("second run changed the buffer")
	}
	if !bytes.Contains(once, []byte("<Name>Icons</Name><File>icons.ttf</File>")) {
		t.Error("non-target font element was rewritten")
	}
}

func TestPatch_lengthInvariant(t *testing.T) {
	blocks := []string{
		"<Root><Font><Name>A</Name><File>HanYiQuanTangShiS.ttf</File></Font></Root>",
		"<Root><Font><Name>Title Text</Name><File>t.ttf</File></Font><Font><Name>Europe</Name><File>e.ttf</File></Font></Root>",
		"<Root><Font><Name>zh_TW</Name><File>MrsEavSmaCap.ttf</File></Font></Root>",
	}
	for _, b := range blocks {
		buf := append([]byte("\x01\x02"), b...)
		buf = append(buf, 0x03)
		o, out := Patch(buf, "n.ttf")
		if len(out) != len(buf) {
			t.Fatalf("length changed for %q", b)
		}
		if o.Status != Success && o.Status != NoOpApplied {
			t.Errorf("Patch(%q) = %+v", b, o)
		}
		if out[0] != 0x01 || out[1] != 0x02 || out[len(out)-1] != 0x03 {
			t.Errorf("surrounding bytes changed for %q", b)
		}
		if o.Status == Success && !bytes.HasSuffix(bytes.TrimRight(out[2:len(out)-1], " "), []byte("</Root>")) {
			t.Errorf("block not padded with spaces: %q", out)
		}
	}
}

func TestPatch_xmlBlockGrowsIsSkipped(t *testing.T) {
	block := []byte("<Root><Font><Name>X</Name><File>a.ttf</File><Role>art text</Role></Font></Root>")
	buf := append([]byte{0xFF}, block...)
	o, out := Patch(buf, "a-very-long-replacement-font-name.ttf")
	if o.Status != NoOpApplied || o.Skipped != 1 {
		t.Fatalf("Patch() = %+v", o)
	}
	if !bytes.Equal(out, buf) {
		t.Error("output differs from input")
	}
}

func TestPatch_partialSuccess(t *testing.T) {
	buf := bytes.Join([][]byte{
		field("MrsEavSmaCap.ttf", 16), {5},
		field("AlegreyaSans-Medium.ttf", 40), {5},
	}, nil)
	o, out := Patch(buf, "twenty-byte-name.ttf")
	if o.Status != Success || o.Replacements != 1 || o.Skipped != 1 {
		t.Fatalf("Patch() = %+v", o)
	}
	if !bytes.Equal(out[:17], buf[:17]) {
		t.Error("short slot was modified")
	}
	if !bytes.HasPrefix(out[17:], []byte("twenty-byte-name.ttf\x00")) {
		t.Errorf("long slot = %q", out[17:58])
	}
}

func TestDecodeLossy(t *testing.T) {
	got := decodeLossy([]byte("<Name>a\xff\xfeb</Name>"))
	if got != "<Name>ab</Name>" {
		t.Errorf("decodeLossy() = %q", got)
	}
	got = decodeLossy([]byte("日本語"))
	if got != "日本語" {
		t.Errorf("decodeLossy() = %q", got)
	}
}

func TestPatch_xmlBlockWithEncodingNoise(t *testing.T) {
	block := []byte("<Root>\xff\xff<Font><Name>Old</Name><File>AaShiSongTi-2.ttf</File></Font></Root>")
	o, out := Patch(block, "n.ttf")
	if o.Status != Success {
		t.Fatalf("Patch() = %+v", o)
	}
	if len(out) != len(block) || !bytes.HasPrefix(out, []byte("<Root><Font><Name>NormalFont</Name><File>n.ttf</File>")) {
		t.Errorf("out = %q", out)
	}
}

func TestStatusOf(t *testing.T) {
	if StatusOf(nil) != Success {
		t.Error("nil")
	}
	o := Outcome{Status: NoDataFound, Message: "x"}
	if StatusOf(o.Err()) != NoDataFound {
		t.Error("NoDataFound")
	}
	if (Outcome{Status: Success}).Err() != nil {
		t.Error("Success has an error")
	}
}
