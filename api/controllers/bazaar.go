package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lsalmeida/ecoeletronico-backend/api/responses"
	"github.com/lsalmeida/ecoeletronico-backend/api/validators"
	"github.com/lsalmeida/ecoeletronico-backend/internal/bazaar"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/logger"
)

// BazaarWindow reports whether voucher sales are open.
func BazaarWindow(svc bazaar.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := svc.Window(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, window)
	}
}

func AdminBazaarOpen(svc bazaar.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := svc.OpenWindow(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, window)
	}
}

func AdminBazaarClose(svc bazaar.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := svc.CloseWindow(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, window)
	}
}

// BazaarVoucherPurchase sells one entry voucher to the caller.
func BazaarVoucherPurchase(svc bazaar.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := accountIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucher, err := svc.Purchase(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, voucher)
	}
}

func BazaarMyVouchers(svc bazaar.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := accountIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vouchers, err := svc.MyVouchers(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vouchers)
	}
}

// AdminVoucherVerify looks a voucher up without burning it.
func AdminVoucherVerify(svc bazaar.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		voucher, err := svc.Verify(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, voucher)
	}
}

type voucherUseRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// AdminVoucherUse burns a voucher at the door. Notes are optional.
func AdminVoucherUse(svc bazaar.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body voucherUseRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		voucher, err := svc.Use(r.Context(), bazaar.UseRequest{
			Code:  chi.URLParam(r, "code"),
			Notes: body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, voucher)
	}
}

func AdminBazaarStats(svc bazaar.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
