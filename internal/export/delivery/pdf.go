// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package delivery

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tomtom215/auditorium/internal/models"
)

// PDF layout constants. A4 portrait, monospaced rows.
const (
	pdfPageWidth  = 595
	pdfPageHeight = 842
	pdfMargin     = 40
	pdfFontSize   = 8
	pdfTitleSize  = 12
	pdfLineHeight = 11
	pdfRowsPage   = 66
	pdfMaxCell    = 28
)

// renderPDF emits a minimal PDF 1.4 document: a title line, the column
// headers, then one monospaced text row per event, paginated. The writer
// is hand-rolled because the export only needs flat text tables; the xref
// table is built from the actual byte offsets, so any conforming reader
// accepts the output.
func renderPDF(job *models.ExportJob, events []models.AuditEvent) (Document, error) {
	lines := pdfLines(job, events)
	pages := paginate(lines, pdfRowsPage)
	if len(pages) == 0 {
		pages = [][]string{{}}
	}

	w := newPDFWriter()

	// Object 1: catalog. Object 2: page tree. Object 3: font. Pages and
	// their content streams follow pairwise.
	pageRefs := make([]string, len(pages))
	firstPageObj := 4
	for i := range pages {
		pageRefs[i] = fmt.Sprintf("%d 0 R", firstPageObj+i*2)
	}

	w.addObject("<< /Type /Catalog /Pages 2 0 R >>")
	w.addObject(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(pageRefs, " "), len(pages)))
	w.addObject("<< /Type /Font /Subtype /Type1 /BaseFont /Courier >>")

	for i, page := range pages {
		contentObj := firstPageObj + i*2 + 1
		w.addObject(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			pdfPageWidth, pdfPageHeight, contentObj))

		stream := pageContent(job, page, i == 0)
		w.addObject(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream))
	}

	return Document{
		ContentType: "application/pdf",
		Filename:    filename(job, "pdf"),
		Data:        w.finish(),
	}, nil
}

// pdfLines flattens the events into fixed-width text rows, header first.
func pdfLines(job *models.ExportJob, events []models.AuditEvent) []string {
	fields := effectiveFields(job)
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = padCell(columnTitle(f))
	}
	lines := make([]string, 0, len(events)+1)
	lines = append(lines, strings.Join(header, " "))

	cells := make([]string, len(fields))
	for i := range events {
		for j, f := range fields {
			cells[j] = padCell(cellValue(f, &events[i]))
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return lines
}

// padCell truncates or pads a value to the fixed column width.
func padCell(s string) string {
	if len(s) > pdfMaxCell {
		return s[:pdfMaxCell-2] + ".."
	}
	return s + strings.Repeat(" ", pdfMaxCell-len(s))
}

func paginate(lines []string, perPage int) [][]string {
	var pages [][]string
	for len(lines) > 0 {
		n := perPage
		if n > len(lines) {
			n = len(lines)
		}
		pages = append(pages, lines[:n])
		lines = lines[n:]
	}
	return pages
}

// pageContent builds the content stream for one page.
func pageContent(job *models.ExportJob, lines []string, first bool) string {
	var b strings.Builder
	y := pdfPageHeight - pdfMargin

	if first {
		title := fmt.Sprintf("Audit Event Export - %s", job.GeneratedAt.Format("2006-01-02 15:04 MST"))
		fmt.Fprintf(&b, "BT /F1 %d Tf %d %d Td (%s) Tj ET\n",
			pdfTitleSize, pdfMargin, y, escapePDF(title))
		y -= 2 * pdfLineHeight
	}

	for _, line := range lines {
		fmt.Fprintf(&b, "BT /F1 %d Tf %d %d Td (%s) Tj ET\n",
			pdfFontSize, pdfMargin, y, escapePDF(line))
		y -= pdfLineHeight
	}
	return b.String()
}

// escapePDF escapes the characters PDF string literals reserve.
func escapePDF(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")
	return r.Replace(s)
}

// pdfWriter accumulates numbered objects and builds the xref table from
// their real byte offsets.
type pdfWriter struct {
	buf     bytes.Buffer
	offsets []int
}

func newPDFWriter() *pdfWriter {
	w := &pdfWriter{}
	w.buf.WriteString("%PDF-1.4\n")
	return w
}

func (w *pdfWriter) addObject(body string) {
	w.offsets = append(w.offsets, w.buf.Len())
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", len(w.offsets), body)
}

func (w *pdfWriter) finish() []byte {
	xrefStart := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n", len(w.offsets)+1)
	w.buf.WriteString("0000000000 65535 f \n")
	for _, off := range w.offsets {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(w.offsets)+1, xrefStart)
	return w.buf.Bytes()
}
