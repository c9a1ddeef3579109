package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// DOCXExtractor extracts text from .docx files by walking
// word/document.xml, falling back to a regex scan of run text nodes if
// strict XML unmarshaling fails (e.g. a malformed or unusually-produced
// document).
type DOCXExtractor struct{}

func NewDOCXExtractor() *DOCXExtractor { return &DOCXExtractor{} }

func (e *DOCXExtractor) Name() string         { return "docx" }
func (e *DOCXExtractor) Extensions() []string { return []string{"docx"} }

func (e *DOCXExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var docFile *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	xmlContent, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read document.xml: %w", err)
	}

	return e.parseDocumentXML(xmlContent)
}

type document struct {
	Body body `xml:"body"`
}

type body struct {
	Paragraphs []paragraph `xml:"p"`
	Tables     []table     `xml:"tbl"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []text `xml:"t"`
}

type text struct {
	Content string `xml:",chardata"`
}

type table struct {
	Rows []tableRow `xml:"tr"`
}

type tableRow struct {
	Cells []tableCell `xml:"tc"`
}

type tableCell struct {
	Paragraphs []paragraph `xml:"p"`
}

func (e *DOCXExtractor) parseDocumentXML(xmlContent []byte) (string, error) {
	cleaned := e.cleanNamespaces(xmlContent)

	var doc document
	if err := xml.Unmarshal(cleaned, &doc); err != nil {
		return e.fallbackExtract(xmlContent)
	}
	return e.convertToText(&doc), nil
}

func (e *DOCXExtractor) cleanNamespaces(content []byte) []byte {
	s := string(content)
	s = regexp.MustCompile(`<w:`).ReplaceAllString(s, `<`)
	s = regexp.MustCompile(`</w:`).ReplaceAllString(s, `</`)
	s = regexp.MustCompile(`\s*xmlns:w="[^"]*"`).ReplaceAllString(s, ``)
	return []byte(s)
}

func (e *DOCXExtractor) convertToText(doc *document) string {
	var b strings.Builder
	for _, p := range doc.Body.Paragraphs {
		t := e.extractParagraphText(&p)
		if strings.TrimSpace(t) == "" {
			continue
		}
		b.WriteString(t)
		b.WriteString("\n")
	}
	for _, tbl := range doc.Body.Tables {
		t := e.extractTableText(&tbl)
		if strings.TrimSpace(t) == "" {
			continue
		}
		b.WriteString(t)
		b.WriteString("\n")
	}
	return b.String()
}

func (e *DOCXExtractor) extractParagraphText(p *paragraph) string {
	var b strings.Builder
	for _, run := range p.Runs {
		for _, t := range run.Text {
			b.WriteString(t.Content)
		}
	}
	return b.String()
}

func (e *DOCXExtractor) extractTableText(tbl *table) string {
	var rows []string
	for _, row := range tbl.Rows {
		var cells []string
		for _, cell := range row.Cells {
			var cellText []string
			for _, p := range cell.Paragraphs {
				t := e.extractParagraphText(&p)
				if t != "" {
					cellText = append(cellText, t)
				}
			}
			cells = append(cells, strings.Join(cellText, " "))
		}
		rows = append(rows, strings.Join(cells, " | "))
	}
	return strings.Join(rows, "\n")
}

var docxTextNodeRe = regexp.MustCompile(`<w:t[^>]*>([^<]+)</w:t>`)

func (e *DOCXExtractor) fallbackExtract(content []byte) (string, error) {
	matches := docxTextNodeRe.FindAllSubmatch(content, -1)

	var b strings.Builder
	for _, match := range matches {
		if len(match) > 1 {
			b.Write(match[1])
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String()), nil
}
