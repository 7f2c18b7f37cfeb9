package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
)

type ExcelGenerator interface {
	GenerateExcel(ctx context.Context, from, to time.Time) ([]byte, error)
}

// GenerateReportExcel streams the xlsx order report. Range defaults to the
// current business-zone month when from/to are absent.
func GenerateReportExcel(log *slog.Logger, gen ExcelGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GenerateReportExcel"

		now := time.Now().In(storage.BusinessZone)
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, storage.BusinessZone)
		to := now

		if fromStr := r.URL.Query().Get("from"); fromStr != "" {
			parsed, err := time.ParseInLocation("2006-01-02", fromStr, storage.BusinessZone)
			if err != nil {
				http.Error(w, "invalid from date", http.StatusBadRequest)
				return
			}
			from = parsed
		}
		if toStr := r.URL.Query().Get("to"); toStr != "" {
			parsed, err := time.ParseInLocation("2006-01-02", toStr, storage.BusinessZone)
			if err != nil {
				http.Error(w, "invalid to date", http.StatusBadRequest)
				return
			}
			// inclusive end day
			to = parsed.AddDate(0, 0, 1)
		}

		// Excel generation gets extra headroom over the 5s data routes.
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, err := gen.GenerateExcel(ctx, from, to)
		if err != nil {
			log.Error("failed to generate excel", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		fileName := fmt.Sprintf("orders_%s.xlsx", time.Now().In(storage.BusinessZone).Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Write(excelBytes)
	}
}
