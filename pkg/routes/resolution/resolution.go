package resolution

import (
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/resolution"
)

var validate = validator.New()

// Register registers resolution routes
func Register(g *echo.Group) {
	g.POST("/resync", Resync)
}

// ResyncRequest is a manual resolution request for a batch of raw orders
type ResyncRequest struct {
	Source  string            `json:"source"`
	BatchID string            `json:"batch_id"`
	Channel string            `json:"channel"`
	Orders  []models.RawOrder `json:"orders" validate:"required,min=1,dive"`
}

// Resync resolves a batch of raw orders synchronously. Used to re-run batches
// that failed on the Kafka path or to backfill historical orders.
func Resync(c echo.Context) error {
	ctx := c.Request().Context()

	var req ResyncRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, cfg, err := ectoinject.GetContext[config.Config](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if cfg.ResyncMaxBatchSize > 0 && len(req.Orders) > cfg.ResyncMaxBatchSize {
		return httperror.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("batch exceeds max size of %d orders", cfg.ResyncMaxBatchSize))
	}

	// Apply the batch-level channel to orders that carry none
	if req.Channel != "" {
		for i := range req.Orders {
			if req.Orders[i].SalesChannel == "" {
				req.Orders[i].SalesChannel = req.Channel
			}
		}
	}

	ctx, engine, err := ectoinject.GetContext[*resolution.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := engine.Resolve(ctx, req.Orders)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
