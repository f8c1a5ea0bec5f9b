package fontpatch

import (
	"bytes"
	"fmt"
)

// SiteKind tells which fields of a Site are meaningful.
type SiteKind int

const (
	RawString SiteKind = iota
	XMLBlock
)

func (k SiteKind) String() string {
	switch k {
	case RawString:
		return "raw-string"
	case XMLBlock:
		return "xml-block"
	}
	return fmt.Sprintf("SiteKind(%d)", int(k))
}

// Site is a font reference found in a resource package.
//
// RawString sites use LegacyName and Offset.
// XMLBlock sites use Offset, Length and Content.
type Site struct {
	Kind   SiteKind
	Offset int

	LegacyName []byte

	Length  int
	Content []byte
}

// contextWindow is how far around a raw match the scanner looks for <File> tags.
const contextWindow = 50

var (
	tagFileOpen  = []byte("<File>")
	tagFileClose = []byte("</File>")
	tagRootOpen  = []byte("<Root>")
	tagRootClose = []byte("</Root>")
	tagFontOpen  = []byte("<Font>")
)

// Scan returns every reference site in buf. Raw-string sites come first in
// name list order, then XML blocks in file order.
// Content of XML sites aliases buf.
func Scan(buf []byte) []Site {
	var sites []Site
	for _, name := range legacyFonts {
		sites = appendRawSites(sites, buf, name)
	}
	return appendXMLSites(sites, buf)
}

func appendRawSites(sites []Site, buf, name []byte) []Site {
	pos := 0
	for {
		i := bytes.Index(buf[pos:], name)
		if i < 0 {
			return sites
		}
		at := pos + i
		pos = at + len(name)

		start := at - contextWindow
		if start < 0 {
			start = 0
		}
		end := pos + contextWindow
		if end > len(buf) {
			end = len(buf)
		}
		ctx := buf[start:end]
		if bytes.Contains(ctx, tagFileOpen) && bytes.Contains(ctx, tagFileClose) {
			continue
		}
		sites = append(sites, Site{Kind: RawString, Offset: at, LegacyName: name})
	}
}

func appendXMLSites(sites []Site, buf []byte) []Site {
	pos := 0
	for {
		i := bytes.Index(buf[pos:], tagRootOpen)
		if i < 0 {
			return sites
		}
		start := pos + i
		j := bytes.Index(buf[start+len(tagRootOpen):], tagRootClose)
		if j < 0 {
			return sites
		}
		end := start + len(tagRootOpen) + j + len(tagRootClose)
		span := buf[start:end:end]
		if bytes.Contains(span, tagFontOpen) {
			sites = append(sites, Site{Kind: XMLBlock, Offset: start, Length: len(span), Content: span})
		}
		pos = end
	}
}
