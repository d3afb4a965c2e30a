package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
)

const (
	margin     = 15.0
	lineHeight = 5.5
	coreFamily = "Helvetica"
	ttfFamily  = "body"
)

// PDFRenderer lays out a document on A4 pages, one outline bookmark per
// section.
type PDFRenderer struct {
	// FontPath is an optional TrueType font. Without it the core Helvetica
	// font is used and text outside cp1252 is lost.
	FontPath string
}

func NewPDFRenderer(fontPath string) *PDFRenderer {
	return &PDFRenderer{FontPath: fontPath}
}

func (p *PDFRenderer) Render(doc Document, w io.Writer) error {
	// fpdf resolves font files against its font directory.
	fontDir, fontFile := "", ""
	if p.FontPath != "" {
		fontDir, fontFile = filepath.Split(p.FontPath)
	}
	pdf := fpdf.New("P", "mm", "A4", fontDir)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AliasNbPages("")
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("newsdesk", true)

	family := coreFamily
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	mark := outlineText
	if p.FontPath != "" {
		pdf.AddUTF8Font(ttfFamily, "", fontFile)
		pdf.AddUTF8Font(ttfFamily, "B", fontFile)
		pdf.AddUTF8Font(ttfFamily, "I", fontFile)
		family = ttfFamily
		tr = func(s string) string { return s }
		// With a UTF-8 font current, fpdf converts bookmark text itself.
		mark = tr
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("loading font %s: %w", p.FontPath, err)
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-margin + 3)
		pdf.SetFont(family, "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 8, fmt.Sprintf("page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	writeHeader(pdf, doc, family, tr)

	for i, s := range doc.Sections {
		if i > 0 {
			pdf.Ln(4)
			x, y := pdf.GetXY()
			pdf.SetDrawColor(210, 210, 210)
			pdf.Line(x, y, x+contentWidth(pdf), y)
			pdf.Ln(4)
		}
		writeSection(pdf, s, i+1, family, tr, mark)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func contentWidth(pdf *fpdf.Fpdf) float64 {
	w, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	return w - left - right
}

func writeHeader(pdf *fpdf.Fpdf, doc Document, family string, tr func(string) string) {
	pdf.SetFont(family, "B", 18)
	pdf.SetTextColor(20, 20, 20)
	pdf.MultiCell(0, 9, tr(doc.Title), "", "L", false)

	pdf.SetFont(family, "", 9)
	pdf.SetTextColor(110, 110, 110)
	info := fmt.Sprintf("Generated %s · %d items", doc.Generated.Format("2006-01-02 15:04"), len(doc.Sections))
	pdf.CellFormat(0, lineHeight, tr(info), "", 1, "L", false, 0, "")
	if doc.Subtitle != "" {
		pdf.CellFormat(0, lineHeight, tr(doc.Subtitle), "", 1, "L", false, 0, "")
	}
	if len(doc.Themes) > 0 {
		pdf.CellFormat(0, lineHeight, tr("Themes: "+strings.Join(doc.Themes, ", ")), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func writeSection(pdf *fpdf.Fpdf, s Section, n int, family string, tr, mark func(string) string) {
	// Keep a heading off the last lines of a page so its bookmark lands
	// where the section starts.
	_, h := pdf.GetPageSize()
	if pdf.GetY() > h-margin-25 {
		pdf.AddPage()
	}
	pdf.Bookmark(mark(s.Heading), 0, -1)

	pdf.SetFont(family, "B", 13)
	pdf.SetTextColor(20, 20, 20)
	pdf.MultiCell(0, 6.5, tr(fmt.Sprintf("%d. %s", n, s.Heading)), "", "L", false)

	pdf.SetFont(family, "", 9)
	pdf.SetTextColor(110, 110, 110)
	meta := fmt.Sprintf("%s · %d min read", s.Meta, s.ReadingTime)
	pdf.MultiCell(0, lineHeight, tr(meta), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont(family, "", 11)
	pdf.SetTextColor(30, 30, 30)
	pdf.MultiCell(0, lineHeight+0.5, tr(s.Body), "", "J", false)

	if s.URL != "" {
		pdf.Ln(1)
		pdf.SetFont(family, "U", 9)
		pdf.SetTextColor(30, 90, 180)
		pdf.WriteLinkString(lineHeight, s.URL, s.URL)
		pdf.Ln(lineHeight)
	}
}

// outlineText encodes s for the document outline when a core font is
// current. fpdf copies those bytes verbatim, so anything beyond ASCII goes
// out as UTF-16BE with a byte order mark.
func outlineText(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}
	var b strings.Builder
	b.WriteString("\xfe\xff")
	for _, u := range utf16.Encode([]rune(s)) {
		b.WriteByte(byte(u >> 8))
		b.WriteByte(byte(u))
	}
	return b.String()
}
