package handler

import (
	"net/http"

	"github.com/eternalmoments/backend/internal/modules/serializer"
	"github.com/eternalmoments/backend/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProfileHandler struct {
	svc service.ProfileService
}

func NewProfileHandler(s service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: s}
}

type CreateProfileReq struct {
	Name         string   `json:"name"`
	Relationship string   `json:"relationship"`
	Traits       string   `json:"traits"`
	Sayings      string   `json:"sayings"`
	Memories     []string `json:"memories"`
	AvatarURL    string   `json:"avatar_url"`
}

// CreateProfile godoc
//
//	@Summary		Create profile
//	@Description	Create a persona profile for a loved one
//	@Tags			profile
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Profile}
//	@Router			/profiles [post]
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	req := CreateProfileReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	profile, err := h.svc.Create(c.Request.Context(), service.CreateProfileInput{
		UserID:       user.ID,
		Name:         req.Name,
		Relationship: req.Relationship,
		Traits:       req.Traits,
		Sayings:      req.Sayings,
		Memories:     req.Memories,
		AvatarURL:    req.AvatarURL,
	})
	if err != nil {
		writeServiceErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: profile})
}

// GetProfile godoc
//
//	@Summary		Get profile
//	@Tags			profile
//	@Produce		json
//	@Param			profile_id	path	string	true	"Profile ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Profile}
//	@Router			/profiles/{profile_id} [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("profile_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	profile, err := h.svc.Get(c.Request.Context(), profileID)
	if err != nil {
		writeServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: profile})
}

// ListProfiles godoc
//
//	@Summary		List profiles
//	@Tags			profile
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Profile}
//	@Router			/profiles [get]
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	profiles, err := h.svc.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		writeServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: profiles})
}
