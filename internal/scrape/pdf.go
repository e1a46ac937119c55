package scrape

import (
	"bytes"
	"fmt"
	"strings"

	rpdf "rsc.io/pdf"
)

// ExtractPDFText pulls plain text out of a PDF notice. District offices
// publish contact sheets and service notices as PDF; their text feeds the
// same extraction pass as HTML pages. The parser panics on malformed files,
// so recover and report an error instead.
func ExtractPDFText(content []byte) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		for _, fragment := range page.Content().Text {
			builder.WriteString(fragment.S)
			builder.WriteString(" ")
		}
		builder.WriteString("\n")
	}

	return builder.String(), nil
}
