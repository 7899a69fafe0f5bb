package http

import (
	"encoding/json"

	"directline-bridge/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CreateConversation godoc
// @Summary Start a conversation
// @Description Starts a DirectLine conversation on the named backend. The conversation token stays inside the bridge.
// @Tags Conversations
// @Produce json
// @Param channel path string true "backend" Enums(directline, webchat)
// @Success 201 {object} ResponseBody{data=ConversationResponse}
// @Failure 400 {object} ResponseBody
// @Failure 502 {object} ResponseBody{data=UpstreamErrorResponse}
// @Failure 503 {object} ResponseBody
// @Router /v1/api/{channel}/conversations [post]
func (hdl *HTTPHandler) CreateConversation(c *fiber.Ctx) error {
	var params ChannelRequest
	if err := c.ParamsParser(&params); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(params); err != nil {
		return hdl.validationError(c, err)
	}

	view, err := hdl.srv.CreateConversation(c.UserContext(), params.Channel)
	if err != nil {
		return hdl.errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ResponseBody{Status: Created, Data: toConversationResponse(view)})
}

// CreateToken godoc
// @Summary Generate a conversation token
// @Description Generates a conversation-scoped DirectLine token and keeps it inside the bridge
// @Tags Conversations
// @Produce json
// @Param channel path string true "backend" Enums(directline, webchat)
// @Success 201 {object} ResponseBody{data=ConversationResponse}
// @Failure 400 {object} ResponseBody
// @Failure 502 {object} ResponseBody{data=UpstreamErrorResponse}
// @Failure 503 {object} ResponseBody
// @Router /v1/api/{channel}/tokens [post]
func (hdl *HTTPHandler) CreateToken(c *fiber.Ctx) error {
	var params ChannelRequest
	if err := c.ParamsParser(&params); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(params); err != nil {
		return hdl.validationError(c, err)
	}

	view, err := hdl.srv.CreateToken(c.UserContext(), params.Channel)
	if err != nil {
		return hdl.errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ResponseBody{Status: Created, Data: toConversationResponse(view)})
}

// RefreshToken godoc
// @Summary Refresh a conversation token
// @Tags Conversations
// @Produce json
// @Param channel path string true "backend" Enums(directline, webchat)
// @Param id path string true "conversation id"
// @Success 200 {object} ResponseBody{data=ConversationResponse}
// @Failure 404 {object} ResponseBody
// @Failure 502 {object} ResponseBody{data=UpstreamErrorResponse}
// @Router /v1/api/{channel}/conversations/{id}/refresh [post]
func (hdl *HTTPHandler) RefreshToken(c *fiber.Ctx) error {
	params, err := hdl.conversationParams(c)
	if err != nil {
		return hdl.validationError(c, err)
	}

	view, err := hdl.srv.RefreshToken(c.UserContext(), params.Channel, params.ConversationID)
	if err != nil {
		return hdl.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: toConversationResponse(view)})
}

// ReconnectConversation godoc
// @Summary Reconnect to a conversation
// @Description Obtains a fresh grant for a conversation, adopting it if the bridge did not know it
// @Tags Conversations
// @Produce json
// @Param channel path string true "backend" Enums(directline, webchat)
// @Param id path string true "conversation id"
// @Success 200 {object} ResponseBody{data=ConversationResponse}
// @Failure 502 {object} ResponseBody{data=UpstreamErrorResponse}
// @Failure 503 {object} ResponseBody
// @Router /v1/api/{channel}/conversations/{id} [get]
func (hdl *HTTPHandler) ReconnectConversation(c *fiber.Ctx) error {
	params, err := hdl.conversationParams(c)
	if err != nil {
		return hdl.validationError(c, err)
	}

	view, err := hdl.srv.ReconnectConversation(c.UserContext(), params.Channel, params.ConversationID)
	if err != nil {
		return hdl.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: toConversationResponse(view)})
}

// SendActivity godoc
// @Summary Send an activity
// @Description Relays the request body untouched to the conversation and returns the backend's answer
// @Tags Activities
// @Accept application/json
// @Produce json
// @Param channel path string true "backend" Enums(directline, webchat)
// @Param id path string true "conversation id"
// @Param activity body object true "Bot Framework activity"
// @Success 200 {object} ResponseBody
// @Failure 400 {object} ResponseBody
// @Failure 404 {object} ResponseBody
// @Failure 502 {object} ResponseBody{data=UpstreamErrorResponse}
// @Router /v1/api/{channel}/conversations/{id}/activities [post]
func (hdl *HTTPHandler) SendActivity(c *fiber.Ctx) error {
	params, err := hdl.conversationParams(c)
	if err != nil {
		return hdl.validationError(c, err)
	}

	// the request buffer is reused once the handler returns
	payload := append(json.RawMessage(nil), c.Body()...)

	body, err := hdl.srv.SendActivity(c.UserContext(), domain.SendActivityRequest{
		Channel:        params.Channel,
		ConversationID: params.ConversationID,
		Payload:        payload,
	})
	if err != nil {
		return hdl.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: body})
}

// ReceiveActivity godoc
// @Summary Receive activities
// @Description Returns the backend's activity set for the conversation
// @Tags Activities
// @Produce json
// @Param channel path string true "backend" Enums(directline, webchat)
// @Param id path string true "conversation id"
// @Param watermark query string false "watermark of the last activity seen"
// @Success 200 {object} ResponseBody
// @Failure 404 {object} ResponseBody
// @Failure 502 {object} ResponseBody{data=UpstreamErrorResponse}
// @Router /v1/api/{channel}/conversations/{id}/activities [get]
func (hdl *HTTPHandler) ReceiveActivity(c *fiber.Ctx) error {
	params, err := hdl.conversationParams(c)
	if err != nil {
		return hdl.validationError(c, err)
	}

	var query ReceiveActivityQuery
	if err := c.QueryParser(&query); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(query); err != nil {
		return hdl.validationError(c, err)
	}

	body, err := hdl.srv.ReceiveActivity(c.UserContext(), domain.ReceiveActivityRequest{
		Channel:        params.Channel,
		ConversationID: params.ConversationID,
		Watermark:      query.Watermark,
	})
	if err != nil {
		return hdl.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: body})
}

// conversationParams parses and validates the channel and conversation id
func (hdl *HTTPHandler) conversationParams(c *fiber.Ctx) (ConversationRequest, error) {
	var params ConversationRequest
	if err := c.ParamsParser(&params); err != nil {
		return params, err
	}
	if err := hdl.validator.ValidateStruct(params); err != nil {
		return params, err
	}
	return params, nil
}
