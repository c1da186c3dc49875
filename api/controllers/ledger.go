package controllers

import (
	"net/http"

	"github.com/yniverz/erp-rent-backend/api/responses"
	"github.com/yniverz/erp-rent-backend/internal/ledger"
	"github.com/yniverz/erp-rent-backend/pkg/logger"
)

// QuoteRevenueEvents returns the append-only revenue ledger for one quote.
func QuoteRevenueEvents(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		events, err := svc.ListByQuote(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, events)
	}
}
