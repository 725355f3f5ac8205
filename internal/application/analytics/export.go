package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mayasquare/sales-analytics/internal/domain/report"
	"github.com/mayasquare/sales-analytics/internal/domain/shared"
)

// Export types accepted by ExportCSV.
const (
	ExportProducts = "products"
	ExportStores   = "stores"
	ExportMatrix   = "matrix"
)

// ExportFilename returns the download filename for an export type.
func ExportFilename(exportType string) string {
	switch exportType {
	case ExportProducts, ExportStores, ExportMatrix:
		return exportType + "-export.csv"
	default:
		return "export.csv"
	}
}

// ExportCSV writes one section of the report as CSV, one row per
// record.
func ExportCSV(w io.Writer, rep *report.Report, exportType string) error {
	switch exportType {
	case ExportProducts:
		return exportProductsCSV(w, rep)
	case ExportStores:
		return exportStoresCSV(w, rep)
	case ExportMatrix:
		return exportMatrixCSV(w, rep)
	default:
		return fmt.Errorf("%w: unknown export type %q", shared.ErrInvalidInput, exportType)
	}
}

func exportProductsCSV(w io.Writer, rep *report.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Product ID", "Product Name", "Quantity", "Revenue"}); err != nil {
		return err
	}
	for _, p := range rep.SalesByProduct.All {
		row := []string{
			strconv.FormatInt(p.ProductID, 10),
			p.Name,
			strconv.FormatInt(p.Total.Quantity, 10),
			formatAmount(p.Total.Revenue),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportStoresCSV(w io.Writer, rep *report.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Store Name", "Orders", "Revenue"}); err != nil {
		return err
	}
	for _, s := range rep.SalesByStore.All {
		row := []string{
			s.StoreName,
			strconv.FormatInt(s.Total.Orders, 10),
			formatAmount(s.Total.Revenue),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportMatrixCSV(w io.Writer, rep *report.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Product Name", "Store Name", "Quantity", "Revenue"}); err != nil {
		return err
	}
	for _, m := range rep.ProductStoreMatrix.All {
		row := []string{
			m.ProductName,
			m.StoreName,
			strconv.FormatInt(m.Quantity, 10),
			formatAmount(m.Revenue),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
