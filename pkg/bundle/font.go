package bundle

import (
	"github.com/pkg/errors"
	"golang.org/x/image/font/sfnt"
)

// ValidateFont checks that b is a TrueType or OpenType font and returns its
// full name, which may be empty.
func ValidateFont(b []byte) (string, error) {
	if len(b) == 0 {
		return "", errors.New("empty font file")
	}
	f, err := sfnt.Parse(b)
	if err != nil {
		return "", errors.Wrap(err, "not a TrueType/OpenType font")
	}
	name, err := f.Name(nil, sfnt.NameIDFull)
	if err != nil {
		return "", nil
	}
	return name, nil
}
