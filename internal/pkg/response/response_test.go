package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"digital-advisor/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		domain.InvalidArgument("x"):                 400,
		&domain.InsufficientFundsError{}:            400,
		&domain.InsufficientHoldingsError{}:         400,
		domain.InsufficientData("x"):                400,
		domain.NotFound("x"):                        404,
		domain.Conflict("x"):                        409,
		domain.Unavailable(errors.New("down"), "x"): 503,
		domain.Persistence(errors.New("commit")):    500,
		errors.New("plain"):                         500,
		&domain.Error{Kind: domain.ErrUnauthorized}: 401,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}

func TestFromError_InsufficientFundsDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return FromError(c, &domain.InsufficientFundsError{Requested: decimal.NewFromInt(1500), Available: decimal.NewFromInt(400)})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var body struct {
		Status string `json:"status"`
		Error  struct {
			Message string `json:"message"`
			Details struct {
				Requested decimal.Decimal `json:"requested"`
				Available decimal.Decimal `json:"available"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "Insufficient funds. Requested: 1500.00, Available: 400.00", body.Error.Message)
	assert.True(t, body.Error.Details.Requested.Equal(decimal.NewFromInt(1500)))
	assert.True(t, body.Error.Details.Available.Equal(decimal.NewFromInt(400)))
}

func TestFromError_PassesThroughInternal(t *testing.T) {
	app := fiber.New()
	plain := errors.New("db exploded")
	var got error
	app.Get("/", func(c *fiber.Ctx) error {
		got = FromError(c, plain)
		return c.SendStatus(204)
	})
	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Same(t, plain, got)
}
