package fontpatch

// CanonicalName is written into the <Name> tag of every rewritten font entry.
const CanonicalName = "NormalFont"

// Fonts shipped with the Chinese client.
var zhFonts = [][]byte{
	[]byte("HanYiQuanTangShiS.ttf"),
	[]byte("ZHJB-Xiangjiahong_fanti.TTF"),
	[]byte("AaShiSongTi-2.ttf"),
}

// Fonts shipped with the European client.
var europeanFonts = [][]byte{
	[]byte("AlegreyaSans-Medium.ttf"),
	[]byte("AlegreyaSans-Regular.ttf"),
	[]byte("MrsEavSmaCap.ttf"),
}

// legacyFonts is zhFonts followed by europeanFonts. Never modified.
var legacyFonts = append(append([][]byte{}, zhFonts...), europeanFonts...)

// roleKeywords mark a <Font> element as one the client uses for body text.
// Matched against lower-cased element content.
var roleKeywords = []string{
	"normal text",
	"title text",
	"art text",
	"europe",
	"zh_tw",
}

// Tokens that only appear in a package after it has been rewritten.
var patchedMarkers = [][]byte{
	[]byte(CanonicalName),
	[]byte("normal.ttf"),
	[]byte("custom.ttf"),
}

// LegacyFontNames returns the font file names the scanner looks for.
func LegacyFontNames() []string {
	ret := make([]string, 0, len(legacyFonts))
	for _, b := range legacyFonts {
		ret = append(ret, string(b))
	}
	return ret
}

// RoleKeywords returns the keywords that select a <Font> element for rewriting.
func RoleKeywords() []string {
	return append([]string(nil), roleKeywords...)
}
