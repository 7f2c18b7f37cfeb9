package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage/mysql"
)

type ReportStorage interface {
	ListOrders(ctx context.Context, filter mysql.OrderFilter) ([]storage.OrderSummary, int64, error)
	WorkUnitTotals(ctx context.Context, from, to time.Time) (map[string]storage.WorkTotal, error)
}

type ReportService struct {
	storage ReportStorage
}

func NewReportService(storage ReportStorage) *ReportService {
	return &ReportService{storage: storage}
}

const reportPageSize = 10000

// GenerateExcel builds the order report sheet for orders created in
// [from, to): one row per order with its derived weights and summed labor.
func (g *ReportService) GenerateExcel(ctx context.Context, from, to time.Time) ([]byte, error) {
	const op = "service.export.GenerateExcel"

	var (
		orders []storage.OrderSummary
		totals map[string]storage.WorkTotal
	)

	grp, gCtx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		var err error
		orders, _, err = g.storage.ListOrders(gCtx, mysql.OrderFilter{From: from, To: to, Limit: reportPageSize})
		if err != nil {
			return fmt.Errorf("orders: %w", err)
		}
		return nil
	})
	grp.Go(func() error {
		var err error
		totals, err = g.storage.WorkUnitTotals(gCtx, from, to)
		if err != nil {
			return fmt.Errorf("work totals: %w", err)
		}
		return nil
	})
	if err := grp.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "生產訂單報表"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	headers := []string{"訂單編號", "客戶名稱", "產品名稱", "生產數量", "單粒總重 (mg)",
		"批次總重 (mg)", "完工日期", "總工時 (分鐘)", "工時單位", "建立日期"}

	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, name)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", lastCol, headerStyle)

	for rowIdx, o := range orders {
		rowNum := rowIdx + 2

		completion := ""
		if o.CompletionDate != nil {
			completion = o.CompletionDate.In(storage.BusinessZone).Format("2006-01-02")
		}

		total := totals[o.ID]

		f.SetCellValue(sheet, cellName(1, rowNum), o.ID)
		f.SetCellValue(sheet, cellName(2, rowNum), o.CustomerName)
		f.SetCellValue(sheet, cellName(3, rowNum), o.ProductName)
		f.SetCellValue(sheet, cellName(4, rowNum), o.ProductionQuantity)
		f.SetCellValue(sheet, cellName(5, rowNum), o.UnitWeightMg.InexactFloat64())
		f.SetCellValue(sheet, cellName(6, rowNum), o.BatchTotalWeightMg.InexactFloat64())
		f.SetCellValue(sheet, cellName(7, rowNum), completion)
		f.SetCellValue(sheet, cellName(8, rowNum), total.EffectiveMinutes)
		f.SetCellValue(sheet, cellName(9, rowNum), total.WorkUnits.InexactFloat64())
		f.SetCellValue(sheet, cellName(10, rowNum), o.CreatedAt.In(storage.BusinessZone).Format("2006-01-02"))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write buffer: %w", op, err)
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	return cell
}
