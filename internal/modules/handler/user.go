package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/eternalmoments/backend/internal/modules/serializer"
	"github.com/eternalmoments/backend/internal/modules/service"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{svc: s}
}

// Me godoc
//
//	@Summary		Get current user
//	@Tags			user
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.User}
//	@Router			/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: user})
}

type UploadAvatarReq struct {
	File *multipart.FileHeader `form:"file" binding:"required"`
}

type UploadAvatarResp struct {
	AvatarURL string `json:"avatar_url"`
}

// UploadAvatar godoc
//
//	@Summary		Upload avatar
//	@Description	Store a new avatar image and point the user at it
//	@Tags			user
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=handler.UploadAvatarResp}
//	@Router			/avatar [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	req := UploadAvatarReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	url, err := h.svc.UploadAvatar(c.Request.Context(), user.ID, req.File)
	if err != nil {
		writeServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: UploadAvatarResp{AvatarURL: url}})
}
