package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wayofglory/shop/internal/domain/models"
	"github.com/wayofglory/shop/internal/service"
	"github.com/wayofglory/shop/internal/storage"
)

// CheckoutItemRequest is one cart line in the checkout payload.
type CheckoutItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// CheckoutRequest is the storefront checkout payload.
type CheckoutRequest struct {
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required"`
	Organization string `json:"organization"`

	ShippingAddress      string `json:"shipping_address" validate:"required"`
	ShippingCity         string `json:"shipping_city" validate:"required"`
	ShippingState        string `json:"shipping_state" validate:"required"`
	ShippingZip          string `json:"shipping_zip" validate:"required"`
	ShippingInstructions string `json:"shipping_instructions"`

	InstallationAddress string `json:"installation_address"`
	InstallationCity    string `json:"installation_city"`
	InstallationState   string `json:"installation_state"`
	InstallationZip     string `json:"installation_zip"`
	InstallationDate    string `json:"installation_date"`
	InstallationTime    string `json:"installation_time"`
	AccessInstructions  string `json:"access_instructions"`
	ContactOnsite       string `json:"contact_onsite"`
	ContactOnsitePhone  string `json:"contact_onsite_phone"`

	PaymentMethod     string                `json:"payment_method" validate:"required,oneof=direct_deposit check cash"`
	InstallationPrice models.Money          `json:"installation_price"`
	Items             []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CheckoutHandler handles POST /api/checkout.
func CheckoutHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		var req CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		items := make([]service.CheckoutItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, service.CheckoutItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		result, err := checkoutService.PlaceOrder(r.Context(), service.CheckoutRequest{
			FirstName:            req.FirstName,
			LastName:             req.LastName,
			Email:                req.Email,
			Phone:                req.Phone,
			Organization:         req.Organization,
			ShippingAddress:      req.ShippingAddress,
			ShippingCity:         req.ShippingCity,
			ShippingState:        req.ShippingState,
			ShippingZip:          req.ShippingZip,
			ShippingInstructions: req.ShippingInstructions,
			InstallationAddress:  req.InstallationAddress,
			InstallationCity:     req.InstallationCity,
			InstallationState:    req.InstallationState,
			InstallationZip:      req.InstallationZip,
			InstallationDate:     req.InstallationDate,
			InstallationTime:     req.InstallationTime,
			AccessInstructions:   req.AccessInstructions,
			ContactOnsite:        req.ContactOnsite,
			ContactOnsitePhone:   req.ContactOnsitePhone,
			PaymentMethod:        req.PaymentMethod,
			InstallationPrice:    req.InstallationPrice,
			Items:                items,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrInvalidQuantity):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, storage.ErrProductNotFound):
				http.Error(w, "unknown product in cart", http.StatusBadRequest)
			default:
				logger.Error("checkout failed", slog.Any("error", err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// ListProductsHandler handles GET /api/products, the storefront
// catalog.
func ListProductsHandler(log *slog.Logger, productRepo storage.ProductStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := productRepo.ListActiveProducts(r.Context())
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if products == nil {
			products = []models.Product{}
		}

		writeJSON(w, logger, products)
	}
}
