// Package pdf renders printable billing documents.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/transform"
)

type Company struct {
	Name    string
	Email   string
	Phone   string
	Website string
	Address string
}

type InvoiceDoc struct {
	Company      Company
	Currency     string
	Number       string
	Status       string
	IssuedAt     time.Time
	DueDate      time.Time
	CustomerName string
	CustomerAddr string
	CustomerTel  string
	PackageName  string
	PackageSpeed string
	Amount       decimal.Decimal
	Notes        string
}

// FormatMoney groups digits for the currency's locale, e.g. "IDR 150.000" or "USD 1,250.50".
func FormatMoney(currency string, amount decimal.Decimal) string {
	tag := language.English
	if strings.EqualFold(currency, "IDR") || currency == "" {
		tag = language.Indonesian
	}
	p := message.NewPrinter(tag)

	places := int32(2)
	if amount.Equal(amount.Truncate(0)) {
		places = 0
	}
	f, _ := amount.Round(places).Float64()
	code := strings.ToUpper(currency)
	if code == "" {
		code = "IDR"
	}
	if places == 0 {
		return p.Sprintf("%s %d", code, int64(f))
	}
	return p.Sprintf("%s %.2f", code, f)
}

// latin converts UTF-8 to the cp1252 bytes the core PDF fonts expect.
func latin(s string) string {
	out, _, err := transform.String(charmap.Windows1252.NewEncoder(), s)
	if err != nil {
		return s
	}
	return out
}

// RenderInvoice lays out a single A4 invoice.
func RenderInvoice(doc *InvoiceDoc) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(latin("Invoice "+doc.Number), false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(110, 10, latin(doc.Company.Name), "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(70, 10, "INVOICE", "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, line := range []string{doc.Company.Address, doc.Company.Phone, doc.Company.Email, doc.Company.Website} {
		if line != "" {
			pdf.CellFormat(180, 5, latin(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(6)

	// Bill to / invoice meta
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Bill To", "1", 0, "L", true, 0, "")
	pdf.CellFormat(90, 8, "Invoice Details", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	left := []string{doc.CustomerName, doc.CustomerAddr, doc.CustomerTel}
	right := []string{
		"Number: " + doc.Number,
		"Issued: " + doc.IssuedAt.Format("02 Jan 2006"),
		"Due: " + doc.DueDate.Format("02 Jan 2006"),
		"Status: " + strings.ToUpper(doc.Status),
	}
	for i := 0; i < len(right); i++ {
		var l string
		if i < len(left) {
			l = left[i]
		}
		pdf.CellFormat(90, 6, latin(l), "LR", 0, "L", false, 0, "")
		pdf.CellFormat(90, 6, latin(right[i]), "LR", 1, "L", false, 0, "")
	}
	pdf.CellFormat(180, 0, "", "T", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Line item
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(100, 7, "Description", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Speed", "1", 0, "C", true, 0, "")
	pdf.CellFormat(50, 7, "Amount", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	desc := "Internet subscription"
	if doc.PackageName != "" {
		desc = fmt.Sprintf("Internet subscription - %s", doc.PackageName)
	}
	pdf.CellFormat(100, 7, latin(desc), "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, latin(doc.PackageSpeed), "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 7, latin(FormatMoney(doc.Currency, doc.Amount)), "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	if doc.Status == "paid" {
		pdf.SetFillColor(200, 255, 200)
	} else {
		pdf.SetFillColor(255, 235, 200)
	}
	pdf.CellFormat(130, 9, "Total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(50, 9, latin(FormatMoney(doc.Currency, doc.Amount)), "1", 1, "R", true, 0, "")

	if doc.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(180, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(180, 5, latin(doc.Notes), "", "L", false)
	}

	pdf.SetY(-30)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(180, 5, latin(fmt.Sprintf("Generated %s", time.Now().Format("02 Jan 2006 15:04"))), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
