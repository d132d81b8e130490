package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/idgate/internal/gateway/store"
	"github.com/aussiebroadwan/idgate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/idgate/pkg/httpx"
	"github.com/aussiebroadwan/idgate/pkg/jwtx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and status of the database and the token verifier key set
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	gatewaysdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	gatewaysdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	keys *jwtx.KeySet,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &gatewaysdk.HealthChecks{
			Database: "ok",
			Verifier: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		// Check database connectivity
		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// The verifier is unusable until the provider's JWKS has been fetched
		if !keys.IsReady() {
			checks.Verifier = "error: no keys loaded"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := gatewaysdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
