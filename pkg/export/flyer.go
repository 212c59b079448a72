package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// FlyerData carries the fields rendered onto a printable flyer.
type FlyerData struct {
	Title         string
	Name          string
	StatusLabel   string
	PersonType    string
	Brigade       string
	Region        string
	Settlement    string
	DateOfBirth   string
	Circumstances string
	Appearance    string
	ContactName   string
	ContactEmail  string
	LastUpdate    string
}

// FlyerRenderer renders a single-record flyer PDF.
type FlyerRenderer struct{}

// NewFlyerRenderer constructs a flyer renderer.
func NewFlyerRenderer() *FlyerRenderer {
	return &FlyerRenderer{}
}

// Render creates an A4 flyer document for one record.
func (r *FlyerRenderer) Render(data FlyerData) ([]byte, error) {
	if data.Title == "" {
		return nil, fmt.Errorf("flyer requires a title")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1251")

	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(0, 12, tr(strings.ToUpper(data.Title)), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	if data.Name != "" {
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, tr(data.Name), "", 1, "C", false, 0, "")
		pdf.Ln(2)
	}

	pdf.SetFont("Arial", "", 11)
	rows := [][2]string{
		{"Статус", data.StatusLabel},
		{"Тип особи", data.PersonType},
		{"Бригада", data.Brigade},
		{"Область", data.Region},
		{"Населений пункт", data.Settlement},
		{"Дата народження", data.DateOfBirth},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(55, 8, tr(row[0]), "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(125, 8, tr(row[1]), "1", 1, "", false, 0, "")
	}
	pdf.Ln(4)

	for _, block := range []struct {
		label string
		value string
	}{
		{"Зовнішність", data.Appearance},
		{"Обставини", data.Circumstances},
	} {
		if block.value == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, tr(block.label), "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 6, tr(block.value), "", "", false)
		pdf.Ln(2)
	}

	if data.ContactName != "" || data.ContactEmail != "" {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, tr("Контакт"), "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		contact := strings.TrimSpace(strings.Join([]string{data.ContactName, data.ContactEmail}, " "))
		pdf.MultiCell(0, 6, tr(contact), "", "", false)
	}

	if data.LastUpdate != "" {
		pdf.SetY(-25)
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, tr("Оновлено: "+data.LastUpdate), "", 1, "R", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render flyer: %w", err)
	}
	return buf.Bytes(), nil
}
