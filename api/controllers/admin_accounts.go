package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lsalmeida/ecoeletronico-backend/api/responses"
	"github.com/lsalmeida/ecoeletronico-backend/api/validators"
	"github.com/lsalmeida/ecoeletronico-backend/internal/accounts"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/logger"
)

type adjustBalanceRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier")
	}
	return id, nil
}

// AdminAccountsRanking lists accounts in ranking order.
func AdminAccountsRanking(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ranking, err := svc.Ranking(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ranking)
	}
}

func AdminAccountActivate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return setActiveHandler(svc, logg, true)
}

func AdminAccountDeactivate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return setActiveHandler(svc, logg, false)
}

func setActiveHandler(svc accounts.Service, logg *logger.Logger, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := pathID(r, "accountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetActive(r.Context(), accountID, active); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": accountID, "is_active": active})
	}
}

// AdminAccountAdjustBalance applies a manual point correction.
func AdminAccountAdjustBalance(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := pathID(r, "accountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adjustBalanceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.AdjustBalance(r.Context(), accountID, body.Delta); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": accountID, "delta": body.Delta})
	}
}
