package application

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/transport-ledger/service-transport/internal/common/domain"
)

// ExportSheet is the worksheet name of the records export.
const ExportSheet = "Transport Records"

var exportHeaders = []string{
	"ID", "Date", "Vehicle No", "DC GP No", "From", "To",
	"Qty (Qtls)", "No of Bags", "Distance (KM)", "Rate/KM", "Amount", "Outward LF No",
}

// Export renders every record, in list order, as an xlsx workbook followed
// by a totals row.
func (s *TransportService) Export(ctx context.Context) (*bytes.Buffer, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	f, err := buildWorkbook(records)
	if err != nil {
		s.logger.Error("failed to build export workbook", zap.Error(err))
		return nil, domain.NewInfrastructureError("build export workbook", err)
	}
	defer func() { _ = f.Close() }()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, domain.NewInfrastructureError("write export workbook", err)
	}
	s.logger.Info("transport records exported", zap.Int("rows", len(records)))
	return buf, nil
}

// ExportFilename returns the download name for an export taken at t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("transport_records_%s.xlsx", t.Format("20060102_150405"))
}

type columnWidth struct {
	first, last string
	width       float64
}

var exportColumnWidths = []columnWidth{
	{"A", "A", 8},
	{"B", "D", 14},
	{"E", "F", 36},
	{"G", "L", 14},
}

func buildWorkbook(records []TransportDTO) (f *excelize.File, err error) {
	f = excelize.NewFile()
	defer func() {
		if err != nil {
			_ = f.Close()
			f = nil
		}
	}()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(ExportSheet, cell, h); err != nil {
			return nil, err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(ExportSheet, "A1", last, headerStyle); err != nil {
		return nil, err
	}
	for _, c := range exportColumnWidths {
		if err := f.SetColWidth(ExportSheet, c.first, c.last, c.width); err != nil {
			return nil, err
		}
	}

	var qty, amount float64
	var bags int
	for i, r := range records {
		row := []interface{}{
			r.ID, r.DateOfTransport.String(), r.VehicleNo, r.DCGPNo,
			r.StartingPoint, r.DestinationPoint, r.QuantityQtls, r.NoOfBags,
			r.DistanceKm, r.RatePerKm, r.Amount, r.OutwardLFNo,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return nil, err
		}
		qty += r.QuantityQtls
		bags += r.NoOfBags
		amount += r.Amount
	}

	totals := []interface{}{"Total", "", "", "", "", "", qty, bags, "", "", amount, ""}
	cell, err := excelize.CoordinatesToCellName(1, len(records)+2)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(ExportSheet, cell, &totals); err != nil {
		return nil, err
	}
	return f, nil
}
