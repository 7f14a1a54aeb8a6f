package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/eternalmoments/backend/internal/modules/serializer"
	"github.com/eternalmoments/backend/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CapsuleHandler struct {
	svc service.CapsuleService
}

func NewCapsuleHandler(s service.CapsuleService) *CapsuleHandler {
	return &CapsuleHandler{svc: s}
}

type CreateCapsuleReq struct {
	Title        string `form:"title" json:"title"`
	Description  string `form:"description" json:"description"`
	ReleaseDate  string `form:"release_date" json:"release_date"`
	Timezone     string `form:"timezone" json:"timezone"`
	PrivacyLevel string `form:"privacy_level" json:"privacy_level"`
	ProfileID    string `form:"profile_id" json:"profile_id"`
	Address      string `form:"address" json:"address"`
	// Location is a WKT point, e.g. "POINT(-122.4194 37.7749)".
	Location string `form:"location" json:"location"`
}

// parseReleaseDate accepts RFC 3339 or a bare date.
func parseReleaseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// CreateCapsule godoc
//
//	@Summary		Create capsule
//	@Description	Create a time capsule, optionally with media files attached as multipart "files"
//	@Tags			capsule
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=service.CapsuleView}
//	@Router			/capsules [post]
func (h *CapsuleHandler) CreateCapsule(c *gin.Context) {
	req := CreateCapsuleReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	releaseDate, err := parseReleaseDate(req.ReleaseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid release_date", err))
		return
	}

	// profile_id is validated by the service alongside the other
	// required fields; an unparsable value just stays Nil.
	profileID, _ := uuid.Parse(req.ProfileID)

	in := service.CreateCapsuleInput{
		UserID:       user.ID,
		ProfileID:    profileID,
		Title:        req.Title,
		Description:  req.Description,
		ReleaseDate:  releaseDate,
		Timezone:     req.Timezone,
		PrivacyLevel: req.PrivacyLevel,
		Address:      req.Address,
		Location:     req.Location,
	}
	if form, err := c.MultipartForm(); err == nil && form != nil {
		in.Files = form.File["files"]
	}

	view, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		writeServiceErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: view})
}

type UpdateCapsuleReq struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	ReleaseDate  *string `json:"release_date"`
	Timezone     *string `json:"timezone"`
	PrivacyLevel *string `json:"privacy_level"`
	Address      *string `json:"address"`
	Location     *string `json:"location"`
	// MediaURLs is the complete desired media set for the capsule. Links
	// are reconciled to match it: absent URLs are unlinked, new ones are
	// linked, and inline data: URLs are uploaded first.
	MediaURLs []string `json:"media_urls"`
}

// UpdateCapsule godoc
//
//	@Summary		Update capsule
//	@Description	Patch capsule fields and reconcile its media set
//	@Tags			capsule
//	@Accept			json
//	@Produce		json
//	@Param			capsule_id	path	string	true	"Capsule ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.CapsuleView}
//	@Router			/capsules/{capsule_id} [put]
func (h *CapsuleHandler) UpdateCapsule(c *gin.Context) {
	capsuleID, err := uuid.Parse(c.Param("capsule_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	req := UpdateCapsuleReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	in := service.UpdateCapsuleInput{
		Title:        req.Title,
		Description:  req.Description,
		Timezone:     req.Timezone,
		PrivacyLevel: req.PrivacyLevel,
		Address:      req.Address,
		Location:     req.Location,
		MediaURLs:    req.MediaURLs,
	}
	if req.ReleaseDate != nil {
		t, err := parseReleaseDate(*req.ReleaseDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid release_date", err))
			return
		}
		in.ReleaseDate = &t
	}

	view, err := h.svc.Update(c.Request.Context(), capsuleID, in)
	if err != nil {
		writeServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: view})
}

// GetCapsule godoc
//
//	@Summary		Get capsule
//	@Tags			capsule
//	@Produce		json
//	@Param			capsule_id	path	string	true	"Capsule ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.CapsuleView}
//	@Router			/capsules/{capsule_id} [get]
func (h *CapsuleHandler) GetCapsule(c *gin.Context) {
	capsuleID, err := uuid.Parse(c.Param("capsule_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	view, err := h.svc.Get(c.Request.Context(), capsuleID)
	if err != nil {
		writeServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: view})
}

type ListCapsulesReq struct {
	ProfileID string `form:"profile_id" json:"profile_id"`
}

// ListCapsules godoc
//
//	@Summary		List capsules
//	@Description	List the caller's capsules with linked media and localized release dates
//	@Tags			capsule
//	@Produce		json
//	@Param			profile_id	query	string	false	"Filter by profile"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]service.CapsuleView}
//	@Router			/capsules [get]
func (h *CapsuleHandler) ListCapsules(c *gin.Context) {
	req := ListCapsulesReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	in := service.ListCapsulesInput{UserID: user.ID}
	if req.ProfileID != "" {
		profileID, err := uuid.Parse(req.ProfileID)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("", errors.New("invalid profile_id")))
			return
		}
		in.ProfileID = &profileID
	}

	views, err := h.svc.List(c.Request.Context(), in)
	if err != nil {
		writeServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: views})
}
