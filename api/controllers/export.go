package controllers

import (
	"net/http"

	"github.com/lsalmeida/ecoeletronico-backend/api/responses"
	"github.com/lsalmeida/ecoeletronico-backend/internal/export"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/logger"
)

// AdminExport streams the JSON backup the school keeps offline.
func AdminExport(svc export.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backup, err := svc.Export(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Disposition", `attachment; filename="ecoeletronico-backup.json"`)
		responses.WriteSuccess(w, backup)
	}
}
