package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yniverz/erp-rent-backend/api/responses"
	"github.com/yniverz/erp-rent-backend/api/validators"
	"github.com/yniverz/erp-rent-backend/internal/inventory"
	pkgerrors "github.com/yniverz/erp-rent-backend/pkg/errors"
	"github.com/yniverz/erp-rent-backend/pkg/logger"
)

// ItemList returns the full catalog with ownership and component preloads.
func ItemList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListItems(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func ItemDetail(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetItem(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type createItemRequest struct {
	Name               string          `json:"name" validate:"required"`
	IsPackage          bool            `json:"is_package"`
	DefaultPricePerDay decimal.Decimal `json:"default_price_per_day"`
	RentalStep         int             `json:"rental_step" validate:"omitempty,min=1"`
}

func ItemCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), inventory.CreateItemInput{
			Name:               validators.SanitizeString(payload.Name, 255),
			IsPackage:          payload.IsPackage,
			DefaultPricePerDay: payload.DefaultPricePerDay,
			RentalStep:         payload.RentalStep,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

type updateItemRequest struct {
	Name               *string          `json:"name,omitempty"`
	DefaultPricePerDay *decimal.Decimal `json:"default_price_per_day,omitempty"`
	RentalStep         *int             `json:"rental_step,omitempty" validate:"omitempty,min=1"`
}

func ItemUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), itemID, inventory.UpdateItemInput{
			Name:               payload.Name,
			DefaultPricePerDay: payload.DefaultPricePerDay,
			RentalStep:         payload.RentalStep,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ItemDelete(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteItem(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type ownershipRecordRequest struct {
	Stakeholder         string           `json:"stakeholder" validate:"required"`
	Quantity            int              `json:"quantity"`
	ExternalPricePerDay *decimal.Decimal `json:"external_price_per_day,omitempty"`
	PurchaseCost        decimal.Decimal  `json:"purchase_cost"`
}

func ItemAddOwnershipRecord(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ownershipRecordRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AddOwnershipRecord(r.Context(), itemID, inventory.OwnershipRecordInput{
			Stakeholder:         validators.SanitizeString(payload.Stakeholder, 255),
			Quantity:            payload.Quantity,
			ExternalPricePerDay: payload.ExternalPricePerDay,
			PurchaseCost:        payload.PurchaseCost,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func ItemRemoveOwnershipRecord(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recordID, err := pathUUID(r, "recordId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.RemoveOwnershipRecord(r.Context(), itemID, recordID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type setComponentsRequest struct {
	Components []componentRequest `json:"components" validate:"required,dive"`
}

type componentRequest struct {
	ComponentItemID    uuid.UUID `json:"component_item_id" validate:"required"`
	QuantityPerPackage int       `json:"quantity_per_package" validate:"required,min=1"`
}

// ItemSetComponents replaces a package's component list in one shot.
func ItemSetComponents(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setComponentsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inputs := make([]inventory.ComponentInput, len(payload.Components))
		for i, comp := range payload.Components {
			inputs[i] = inventory.ComponentInput{
				ComponentItemID:    comp.ComponentItemID,
				QuantityPerPackage: comp.QuantityPerPackage,
			}
		}

		item, err := svc.SetComponents(r.Context(), itemID, inputs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemAvailability answers how many units are free in an inclusive date range.
func ItemAvailability(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		start, err := validators.ParseQueryDate(r, "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if end.Before(start) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "end must not precede start"))
			return
		}

		available, err := svc.AvailableQuantity(r.Context(), nil, itemID, start, end, uuid.Nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"item_id":   itemID,
			"start":     start.Format("2006-01-02"),
			"end":       end.Format("2006-01-02"),
			"available": available,
		})
	}
}

// ItemPayoffReport compares acquisition costs against recognized revenue.
func ItemPayoffReport(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.PayoffReport(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
