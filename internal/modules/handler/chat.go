package handler

import (
	"net/http"

	"github.com/eternalmoments/backend/internal/modules/serializer"
	"github.com/eternalmoments/backend/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	svc service.ChatService
}

func NewChatHandler(s service.ChatService) *ChatHandler {
	return &ChatHandler{svc: s}
}

type ChatReq struct {
	ProfileID string `json:"profile_id"`
	Message   string `json:"message"`
}

// Chat godoc
//
//	@Summary		Chat with a persona
//	@Description	Send a message to a loved one's persona and get a generated reply
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ChatReply}
//	@Router			/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	req := ChatReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	profileID, _ := uuid.Parse(req.ProfileID)

	reply, err := h.svc.Send(c.Request.Context(), service.ChatInput{
		UserID:    user.ID,
		ProfileID: profileID,
		Message:   req.Message,
	})
	if err != nil {
		writeServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: reply})
}
