package prediction

import (
	predsvc "digital-advisor/internal/application/prediction"
	"digital-advisor/internal/domain"
	"digital-advisor/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *predsvc.Service
}

type featuresRequest struct {
	Ticker   string            `json:"ticker"`
	Features domain.FeatureSet `json:"features"`
}

// Predict GET /predict?ticker=X
func (h *Handlers) Predict(c *fiber.Ctx) error {
	result, err := h.Service.GetOrCompute(c.UserContext(), c.Query("ticker"))
	if err != nil {
		log.Warn().Str("ticker", c.Query("ticker")).Err(err).Msg("prediction failed")
		return response.FromError(c, err)
	}
	return response.Success(c, "Prediction retrieved", result, nil)
}

// PredictFromFeatures POST /predict with caller-supplied feature columns.
func (h *Handlers) PredictFromFeatures(c *fiber.Ctx) error {
	var body featuresRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid input", fiber.StatusBadRequest, nil)
	}
	if len(body.Features) == 0 {
		return response.Error(c, "Invalid input", fiber.StatusBadRequest, fiber.Map{"features": "Features are required."})
	}
	result, err := h.Service.GetOrComputeFromFeatures(c.UserContext(), body.Ticker, body.Features)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Prediction retrieved", result, nil)
}

// History GET /predict/history?ticker=X&limit=N
func (h *Handlers) History(c *fiber.Ctx) error {
	ticker := c.Query("ticker")
	list, err := h.Service.LatestPredictions(c.UserContext(), ticker, c.QueryInt("limit", predsvc.DefaultHistoryLimit))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Prediction history retrieved", fiber.Map{"predictions": list}, nil)
}
