package loader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDocx pulls paragraph text out of word/document.xml. Runs of
// <w:t> inside one <w:p> join into a single block.
func extractDocx(content []byte) ([]string, error) {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}

	var docXML io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("open document.xml: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("docx archive has no word/document.xml")
	}
	defer docXML.Close()

	decoder := xml.NewDecoder(docXML)
	var blocks []string
	var paragraph strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(paragraph.String()); text != "" {
					blocks = append(blocks, text)
				}
				paragraph.Reset()
			}
		case xml.CharData:
			if inText {
				paragraph.Write(el)
			}
		}
	}
	if text := strings.TrimSpace(paragraph.String()); text != "" {
		blocks = append(blocks, text)
	}

	if len(blocks) == 0 {
		return nil, fmt.Errorf("docx contains no extractable text")
	}
	return blocks, nil
}
