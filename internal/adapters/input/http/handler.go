package http

import (
	"errors"
	"fmt"

	"directline-bridge/internal/domain"
	"directline-bridge/internal/ports/input"
	"directline-bridge/pkg/validator"

	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// HTTPHandler struct - Primary/Driving adapter for HTTP
type HTTPHandler struct {
	srv       input.RelayService
	db        *gorm.DB
	validator validator.Validator
}

// New func - Creates new HTTP handler. db may be nil when auditing is disabled.
func New(srv input.RelayService, db *gorm.DB) *HTTPHandler {
	return &HTTPHandler{
		srv:       srv,
		db:        db,
		validator: validator.New(),
	}
}

// HealthCheck godoc
// @Summary Health check
// @Description Reports database reachability and the state of maintained tokens
// @Tags Health
// @Produce json
// @Success 200 {object} ResponseBody{data=HealthResponse}
// @Failure 500 {object} ResponseBody
// @Router /health [get]
func (hdl *HTTPHandler) HealthCheck(c *fiber.Ctx) error {
	health := HealthResponse{
		Database: "disabled",
		Tokens:   toTokenStatusResponses(hdl.srv.TokenStatus()),
	}

	if hdl.db != nil {
		sqlDB, err := hdl.db.DB()
		if err != nil {
			logrus.Errorln(err)
			return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
		}

		err = sqlDB.PingContext(c.UserContext())
		if err != nil {
			logrus.Errorln(err)
			return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
		}
		health.Database = "up"
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: health})
}

// TokenStatus godoc
// @Summary Maintained tokens
// @Description Lists every maintained token with its presence and expiry. Token values are never returned.
// @Tags Tokens
// @Produce json
// @Success 200 {object} ResponseBody{data=[]TokenStatusResponse}
// @Router /v1/api/tokens [get]
func (hdl *HTTPHandler) TokenStatus(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(ResponseBody{
		Status: Success,
		Data:   toTokenStatusResponses(hdl.srv.TokenStatus()),
	})
}

// errorResponse maps service errors onto HTTP statuses
func (hdl *HTTPHandler) errorResponse(c *fiber.Ctx, err error) error {
	var upstream *domain.UpstreamError

	switch {
	case errors.Is(err, domain.ErrConversationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ResponseBody{Status: NotFound})

	case errors.Is(err, domain.ErrUnknownChannel), errors.Is(err, domain.ErrInvalidPayload),
		errors.Is(err, domain.ErrInvalidConversationID):
		msg := ResponseBody{Status: BadRequest}
		msg.Status.Message = []string{err.Error()}
		return c.Status(fiber.StatusBadRequest).JSON(msg)

	case errors.Is(err, domain.ErrNoToken):
		return c.Status(fiber.StatusServiceUnavailable).JSON(ResponseBody{Status: ServiceUnavailable})

	case errors.As(err, &upstream):
		msg := ResponseBody{
			Status: BadGateway,
			Data: UpstreamErrorResponse{
				Operation:      upstream.Operation,
				UpstreamStatus: upstream.StatusCode,
				UpstreamBody:   upstream.Body,
			},
		}
		msg.Status.Message = []string{fmt.Sprintf("%s: upstream returned status %d", upstream.Operation, upstream.StatusCode)}
		return c.Status(fiber.StatusBadGateway).JSON(msg)

	default:
		logrus.Errorln(err)
		return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
	}
}

// validationError answers 400 with one message per failed field
func (hdl *HTTPHandler) validationError(c *fiber.Ctx, err error) error {
	msg := ResponseBody{Status: BadRequest}
	msg.Status.Message = validator.Messages(err)
	return c.Status(fiber.StatusBadRequest).JSON(msg)
}

func toConversationResponse(view *domain.ConversationView) ConversationResponse {
	return ConversationResponse{
		ConversationID:     view.ConversationID,
		ExpiresAt:          view.ExpiresAt,
		StreamURL:          view.StreamURL,
		ReferenceGrammarID: view.ReferenceGrammarID,
	}
}

func toTokenStatusResponses(status []domain.TokenStatus) []TokenStatusResponse {
	data := make([]TokenStatusResponse, 0, len(status))
	for _, st := range status {
		data = append(data, TokenStatusResponse{
			Source:    st.Source,
			Available: st.Available,
			ExpiresAt: st.ExpiresAt,
			Expired:   st.Expired,
		})
	}
	return data
}
