// Package receipt renders booking receipts as PDF files. Receipts are
// written into a public directory served under /comprovantes and are
// cleaned up by the retention sweeper once they age out.
package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/ruanfs/agenda-posto/internal/model"
)

// Generator writes receipt PDFs into Dir.
type Generator struct {
	Dir string
}

// NewGenerator creates the receipt directory if needed and returns a
// generator bound to it.
func NewGenerator(dir string) (*Generator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Generator{Dir: dir}, nil
}

// Booking renders the receipt for a confirmed booking and returns the file
// name (relative to Dir) for the caller to hand back as a download link.
func (g *Generator) Booking(b *model.Booking) (string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; the translator keeps the accented text intact.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Comprovante de Agendamento"))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, tr("Posto de Identificação"))
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Protocolo: %d", b.ID))
	pdf.Ln(8)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Nome: %s", b.Name)))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("CPF: %s", FormatCPF(b.CPF)))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Data: %s", formatDate(b.Date)))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Hora: %s", b.Time))
	pdf.Ln(14)

	pdf.SetFont("Arial", "I", 10)
	pdf.MultiCell(0, 6, tr("Apresente este comprovante e um documento com foto no dia do atendimento. Em caso de desistência, procure o posto para liberar o horário."), "", "L", false)

	name := fmt.Sprintf("comprovante-%d.pdf", b.ID)
	if err := pdf.OutputFileAndClose(filepath.Join(g.Dir, name)); err != nil {
		return "", err
	}
	return name, nil
}

// RemoveOlderThan deletes receipt files whose modification time is before
// the cutoff and returns how many were removed. Unreadable entries are
// skipped; the next sweep retries them.
func (g *Generator) RemoveOlderThan(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(g.Dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(g.Dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// FormatCPF renders the 11 digits of a CPF in the usual
// 000.000.000-00 punctuation. Inputs of unexpected length are returned
// unchanged.
func FormatCPF(cpf string) string {
	if len(cpf) != 11 {
		return cpf
	}
	return cpf[0:3] + "." + cpf[3:6] + "." + cpf[6:9] + "-" + cpf[9:11]
}

// formatDate converts YYYY-MM-DD to the Brazilian DD/MM/YYYY display form.
func formatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}
