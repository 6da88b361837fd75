package handler

import (
	"context"
	"net/http"

	logger "github.com/sirupsen/logrus"
)

type reportGenerator interface {
	FormattedReport(ctx context.Context, recommenderID string) string
}

// PortfolioReportHandler renders the plain-text portfolio report, optionally
// filtered by the recommenderId query parameter. The generator never fails;
// an empty portfolio renders its own message.
func PortfolioReportHandler(generator reportGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := generator.FormattedReport(r.Context(), r.URL.Query().Get("recommenderId"))

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write([]byte(report)); err != nil {
			logger.WithError(err).Error("failed to write report response")
		}
	}
}
