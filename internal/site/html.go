package site

import (
	"io"

	"github.com/dgallion1/sidetoc/internal/doctree"
	"github.com/dgallion1/sidetoc/internal/htmldoc"
	"github.com/dgallion1/sidetoc/internal/toc"
	"github.com/dgallion1/sidetoc/internal/widget"
)

// PageOutline reads a rendered HTML page and builds the outline the widget
// would build for it. Headings outside the scopeClass container are
// ignored; an empty scopeClass uses the whole body. Missing ids are
// backfilled in the parsed document, which is returned for callers that
// want to write it back out.
func PageOutline(r io.Reader, scopeClass string) (*doctree.Outline, *htmldoc.Document, error) {
	doc, err := htmldoc.Parse(r)
	if err != nil {
		return nil, nil, err
	}

	headings := widget.ReadHeadings(doc.Headings(scopeClass))
	return toc.Build(headings), doc, nil
}
