package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/eternalmoments/backend/internal/modules/serializer"
	"github.com/eternalmoments/backend/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MediaHandler struct {
	svc service.MediaService
}

func NewMediaHandler(s service.MediaService) *MediaHandler {
	return &MediaHandler{svc: s}
}

type UploadMediaReq struct {
	ProfileID string                `form:"profile_id"`
	File      *multipart.FileHeader `form:"file" binding:"required"`
}

// UploadMedia godoc
//
//	@Summary		Add media to the media bank
//	@Description	Upload a file and catalog it. Re-uploading to a URL that already exists returns the existing row.
//	@Tags			media
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.MediaAsset}
//	@Router			/media-bank [post]
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	req := UploadMediaReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	in := service.UploadMediaInput{
		UserID:    user.ID,
		File:      req.File,
		KeyPrefix: "media_bank",
	}
	if req.ProfileID != "" {
		profileID, err := uuid.Parse(req.ProfileID)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid profile_id", err))
			return
		}
		in.ProfileID = &profileID
	}

	asset, err := h.svc.UploadAndRegister(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DownstreamErr("media upload failed", err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: asset})
}

type ListMediaReq struct {
	Limit  int    `form:"limit,default=20" binding:"omitempty,min=1,max=200"`
	Cursor string `form:"cursor"`
}

// ListMedia godoc
//
//	@Summary		List media bank
//	@Description	List the caller's catalogued media with cursor-based pagination
//	@Tags			media
//	@Produce		json
//	@Param			limit	query	integer	false	"Limit of items to return, default 20. Max 200."
//	@Param			cursor	query	string	false	"Cursor from the previous response."
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ListMediaOutput}
//	@Router			/media-bank [get]
func (h *MediaHandler) ListMedia(c *gin.Context) {
	req := ListMediaReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	out, err := h.svc.List(c.Request.Context(), service.ListMediaInput{
		UserID: user.ID,
		Limit:  req.Limit,
		Cursor: req.Cursor,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}
