package bundle

import (
	"encoding/xml"

	"github.com/pkg/errors"

	"mpkfont/pkg/fontpatch"
)

type manifestRoot struct {
	XMLName xml.Name       `xml:"Root"`
	Fonts   []manifestFont `xml:"Font"`
}

type manifestFont struct {
	Name string `xml:"Name"`
	File string `xml:"File"`
	Role string `xml:"Role"`
}

// Manifest returns the Fonts.xml used when the assets directory has none.
func Manifest() ([]byte, error) {
	m := manifestRoot{
		Fonts: []manifestFont{
			{Name: fontpatch.CanonicalName, File: NormalFontFile, Role: "Normal Text"},
			{Name: "TitleFont", File: TitleFontFile, Role: "Title Text"},
			{Name: "ArtFont", File: ArtFontFile, Role: "Art Text"},
		},
	}
	b, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal manifest")
	}
	return append([]byte(xml.Header), append(b, '\n')...), nil
}
