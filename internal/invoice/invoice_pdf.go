package invoice

import (
	"bytes"
	"fmt"
	"strings"
)

// buildInvoicePDF renders lines as a single page of Helvetica text.
func buildInvoicePDF(lines []string) ([]byte, error) {
	if len(lines) == 0 {
		lines = []string{"Invoice"}
	}

	var content strings.Builder
	content.WriteString("BT\n/F1 11 Tf\n14 TL\n50 800 Td\n")
	for i, line := range lines {
		if i == 0 {
			fmt.Fprintf(&content, "(%s) Tj\n", pdfEscape(line))
			continue
		}
		fmt.Fprintf(&content, "T* (%s) Tj\n", pdfEscape(line))
	}
	content.WriteString("ET")

	stream := content.String()
	objects := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>\nendobj\n",
		"4 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n",
		fmt.Sprintf("5 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, len(objects))
	for _, obj := range objects {
		offsets = append(offsets, out.Len())
		out.WriteString(obj)
	}

	xrefStart := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(objects)+1, xrefStart)

	return out.Bytes(), nil
}

func pdfEscape(v string) string {
	replacer := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)", "\r", " ", "\n", " ")
	return replacer.Replace(v)
}

func invoicePDFLines(d InvoiceDetailResponse) []string {
	no := d.InvoiceNo
	if no == "" {
		no = "-"
	}
	set := d.SetNumber
	if set == "" {
		set = NoSet
	}

	lines := []string{
		"INVOICE " + no,
		"",
		"Customer:   " + d.CustomerName,
		"Set:        " + set,
		"Date:       " + d.Date,
		"Status:     " + string(d.Status),
		"Created by: " + d.CreatedBy,
		"",
		"#  Product                        Qty   Rate        Discount    Amount",
	}
	for i, p := range d.Products {
		name := p.Name
		if p.Serial != "" {
			name += " (" + p.Serial + ")"
		}
		lines = append(lines, fmt.Sprintf("%-2d %-30.30s %-5d %-11s %-11s %s",
			i+1, name, p.Qty, p.Rate.StringFixed(2), p.Discount.StringFixed(2), p.Amount.StringFixed(2)))
	}
	lines = append(lines,
		"",
		"Subtotal: "+d.Subtotal.StringFixed(2),
		"Discount: "+d.Discount.StringFixed(2),
		"Total:    "+d.Total.StringFixed(2),
	)
	return lines
}
