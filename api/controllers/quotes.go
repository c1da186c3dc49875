package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yniverz/erp-rent-backend/api/responses"
	"github.com/yniverz/erp-rent-backend/api/validators"
	"github.com/yniverz/erp-rent-backend/internal/quotes"
	"github.com/yniverz/erp-rent-backend/pkg/enums"
	pkgerrors "github.com/yniverz/erp-rent-backend/pkg/errors"
	"github.com/yniverz/erp-rent-backend/pkg/logger"
	"github.com/yniverz/erp-rent-backend/pkg/metrics"
	"github.com/yniverz/erp-rent-backend/pkg/pagination"
)

func QuoteList(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListQuotes(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func QuoteDetail(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.GetQuote(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

type createQuoteRequest struct {
	CustomerName       string           `json:"customer_name" validate:"required"`
	RecipientLines     string           `json:"recipient_lines,omitempty"`
	StartDate          *string          `json:"start_date,omitempty"`
	EndDate            *string          `json:"end_date,omitempty"`
	RentalDaysOverride *int             `json:"rental_days_override,omitempty" validate:"omitempty,min=1"`
	TaxMode            *string          `json:"tax_mode,omitempty"`
	TaxRate            *decimal.Decimal `json:"tax_rate,omitempty"`
	Notes              string           `json:"notes,omitempty"`
}

func QuoteCreate(svc quotes.Service, logg *logger.Logger, m *metrics.QuoteMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := quotes.CreateQuoteInput{
			CustomerName:       validators.SanitizeString(payload.CustomerName, 255),
			RecipientLines:     payload.RecipientLines,
			RentalDaysOverride: payload.RentalDaysOverride,
			TaxRate:            payload.TaxRate,
			Notes:              payload.Notes,
		}
		var err error
		if input.StartDate, err = parseDatePtr(payload.StartDate, "start_date"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.EndDate, err = parseDatePtr(payload.EndDate, "end_date"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.TaxMode != nil {
			input.TaxMode = enums.TaxMode(*payload.TaxMode)
		}

		quote, err := svc.CreateQuote(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		m.IncTransition("created")
		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

type updateQuoteRequest struct {
	CustomerName            *string          `json:"customer_name,omitempty"`
	RecipientLines          *string          `json:"recipient_lines,omitempty"`
	StartDate               *string          `json:"start_date,omitempty"`
	EndDate                 *string          `json:"end_date,omitempty"`
	ClearDates              bool             `json:"clear_dates,omitempty"`
	RentalDaysOverride      *int             `json:"rental_days_override,omitempty" validate:"omitempty,min=1"`
	ClearRentalDaysOverride bool             `json:"clear_rental_days_override,omitempty"`
	DiscountPercent         *decimal.Decimal `json:"discount_percent,omitempty"`
	DiscountLabel           *string          `json:"discount_label,omitempty"`
	TaxMode                 *string          `json:"tax_mode,omitempty"`
	TaxRate                 *decimal.Decimal `json:"tax_rate,omitempty"`
	Notes                   *string          `json:"notes,omitempty"`
}

func QuoteUpdate(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := quotes.UpdateQuoteInput{
			CustomerName:            payload.CustomerName,
			RecipientLines:          payload.RecipientLines,
			ClearDates:              payload.ClearDates,
			RentalDaysOverride:      payload.RentalDaysOverride,
			ClearRentalDaysOverride: payload.ClearRentalDaysOverride,
			DiscountPercent:         payload.DiscountPercent,
			DiscountLabel:           payload.DiscountLabel,
			TaxRate:                 payload.TaxRate,
			Notes:                   payload.Notes,
		}
		if input.StartDate, err = parseDatePtr(payload.StartDate, "start_date"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.EndDate, err = parseDatePtr(payload.EndDate, "end_date"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.TaxMode != nil {
			mode := enums.TaxMode(*payload.TaxMode)
			input.TaxMode = &mode
		}

		quote, err := svc.UpdateQuote(r.Context(), quoteID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

func QuoteDelete(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteQuote(r.Context(), quoteID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type addItemLineRequest struct {
	ItemID         string           `json:"item_id" validate:"required"`
	Quantity       int              `json:"quantity" validate:"required,min=1"`
	PricePerDay    *decimal.Decimal `json:"price_per_day,omitempty"`
	DiscountExempt bool             `json:"discount_exempt,omitempty"`
}

func QuoteAddItemLine(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := parseUUIDField(payload.ItemID, "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.AddItemLine(r.Context(), quoteID, quotes.AddItemLineInput{
			ItemID:         itemID,
			Quantity:       payload.Quantity,
			PricePerDay:    payload.PricePerDay,
			DiscountExempt: payload.DiscountExempt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

type addCustomLineRequest struct {
	Name           string          `json:"name" validate:"required"`
	Quantity       int             `json:"quantity" validate:"required,min=1"`
	PricePerDay    decimal.Decimal `json:"price_per_day"`
	DiscountExempt bool            `json:"discount_exempt,omitempty"`
}

func QuoteAddCustomLine(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCustomLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.AddCustomLine(r.Context(), quoteID, quotes.AddCustomLineInput{
			Name:           validators.SanitizeString(payload.Name, 255),
			Quantity:       payload.Quantity,
			PricePerDay:    payload.PricePerDay,
			DiscountExempt: payload.DiscountExempt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

type updateLineRequest struct {
	Quantity       *int             `json:"quantity,omitempty" validate:"omitempty,min=1"`
	PricePerDay    *decimal.Decimal `json:"price_per_day,omitempty"`
	DiscountExempt *bool            `json:"discount_exempt,omitempty"`
	CustomName     *string          `json:"custom_name,omitempty"`
}

func QuoteUpdateLine(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.UpdateLine(r.Context(), quoteID, lineID, quotes.UpdateLineInput{
			Quantity:       payload.Quantity,
			PricePerDay:    payload.PricePerDay,
			DiscountExempt: payload.DiscountExempt,
			CustomName:     payload.CustomName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

func QuoteRemoveLine(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.RemoveLine(r.Context(), quoteID, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

func QuoteTotals(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		totals, err := svc.Totals(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, totals)
	}
}

func QuoteFinalize(svc quotes.Service, logg *logger.Logger, m *metrics.QuoteMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Finalize(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		m.IncTransition("finalized")
		m.AddOverbookWarnings(len(result.Warnings))
		responses.WriteSuccess(w, result)
	}
}

func QuoteUnfinalize(svc quotes.Service, logg *logger.Logger, m *metrics.QuoteMetrics) http.HandlerFunc {
	return quoteTransition(svc.Unfinalize, logg, m, "unfinalized")
}

func QuoteMarkPerformed(svc quotes.Service, logg *logger.Logger, m *metrics.QuoteMetrics) http.HandlerFunc {
	return quoteTransition(svc.MarkPerformed, logg, m, "performed")
}

func QuotePay(svc quotes.Service, logg *logger.Logger, m *metrics.QuoteMetrics) http.HandlerFunc {
	return quoteTransition(svc.Pay, logg, m, "paid")
}

func QuoteUnpay(svc quotes.Service, logg *logger.Logger, m *metrics.QuoteMetrics) http.HandlerFunc {
	return quoteTransition(svc.Unpay, logg, m, "unpaid")
}

func quoteTransition(fn func(ctx context.Context, quoteID uuid.UUID) (*quotes.QuoteDTO, error), logg *logger.Logger, m *metrics.QuoteMetrics, transition string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := fn(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		m.IncTransition(transition)
		responses.WriteSuccess(w, quote)
	}
}

func parseDatePtr(value *string, field string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date").WithDetails(map[string]any{"field": field})
	}
	return &parsed, nil
}

func parseUUIDField(value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"field": field})
	}
	return id, nil
}
