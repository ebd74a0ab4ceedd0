package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Certificate describes a volunteer participation certificate.
type Certificate struct {
	Reference     string
	VolunteerName string
	EventTitle    string
	EventDate     time.Time
	Location      string
	Organisation  string
	Issuer        string
	IssuedAt      time.Time
}

// CertificateRenderer draws participation certificates as single-page PDFs.
type CertificateRenderer struct{}

// NewCertificateRenderer constructs a renderer.
func NewCertificateRenderer() *CertificateRenderer {
	return &CertificateRenderer{}
}

// Render returns the PDF bytes for the certificate.
func (r *CertificateRenderer) Render(cert Certificate) ([]byte, error) {
	if cert.VolunteerName == "" || cert.EventTitle == "" {
		return nil, fmt.Errorf("certificate requires volunteer name and event title")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Certificate of Participation", true)
	pdf.SetAuthor(cert.Issuer, true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, 277, 190, "D")

	pdf.SetY(35)
	pdf.SetFont("Arial", "B", 28)
	pdf.CellFormat(0, 14, "Certificate of Participation", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 14)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(0, 12, tr(cert.VolunteerName), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 14)
	pdf.CellFormat(0, 8, "volunteered at", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, tr(cert.EventTitle), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	where := cert.EventDate.Format("2 January 2006")
	if cert.Location != "" {
		where += " - " + cert.Location
	}
	pdf.CellFormat(0, 8, tr(where), "", 1, "C", false, 0, "")
	if cert.Organisation != "" {
		pdf.CellFormat(0, 8, tr("organised by "+cert.Organisation), "", 1, "C", false, 0, "")
	}

	pdf.SetY(170)
	pdf.SetFont("Arial", "I", 10)
	footer := fmt.Sprintf("Issued %s by %s - ref %s", cert.IssuedAt.Format("2006-01-02"), cert.Issuer, cert.Reference)
	pdf.CellFormat(0, 6, tr(footer), "", 1, "C", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
