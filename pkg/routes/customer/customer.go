package customer

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/internal/repositories/customer"
	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// Register registers customer routes
func Register(g *echo.Group) {
	g.GET("", ListCustomers)
	g.GET("/search", SearchCustomers)
	g.GET("/:id", GetCustomer)
}

// ListCustomers lists customers ordered by most recently updated
func ListCustomers(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	ctx, repo, err := ectoinject.GetContext[*customer.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	resp, err := repo.List(ctx, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// GetCustomer gets a customer by id
func GetCustomer(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*customer.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// SearchCustomers looks up customers by phone number. The phone is normalized
// the same way ingestion normalizes it, so any formatting variant matches.
func SearchCustomers(c echo.Context) error {
	ctx := c.Request().Context()

	phone := normalizers.NormalizePhone(c.QueryParam("phone"))
	if phone == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "phone query parameter is required")
	}

	ctx, repo, err := ectoinject.GetContext[*customer.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	customers, err := repo.FindByNormalizedPhone(ctx, phone)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, customers)
}
