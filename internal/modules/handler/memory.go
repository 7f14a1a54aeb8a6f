package handler

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/eternalmoments/backend/internal/modules/serializer"
	"github.com/eternalmoments/backend/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MemoryHandler struct {
	svc service.MemoryService
}

func NewMemoryHandler(s service.MemoryService) *MemoryHandler {
	return &MemoryHandler{svc: s}
}

type CreateMemoryReq struct {
	ProfileID   string `form:"profile_id"`
	Title       string `form:"title"`
	Description string `form:"description"`
	Tags        string `form:"tags"`
	ActualDate  string `form:"actual_date"`
	Address     string `form:"address"`
	// Location arrives as a JSON object {"latitude":..,"longitude":..}.
	Location string `form:"location"`
}

type latLng struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// wktPoint converts the client's {latitude, longitude} JSON to a WKT
// point. Unparseable input is dropped, not fatal.
func wktPoint(raw string) string {
	if raw == "" {
		return ""
	}
	var ll latLng
	if err := sonic.UnmarshalString(raw, &ll); err != nil || ll.Latitude == nil || ll.Longitude == nil {
		return ""
	}
	return fmt.Sprintf("POINT(%g %g)", *ll.Longitude, *ll.Latitude)
}

// CreateMemory godoc
//
//	@Summary		Create memory
//	@Description	Create a memory with its media files. A memory with no surviving uploads is rejected and rolled back.
//	@Tags			memory
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=service.MemoryView}
//	@Router			/memories [post]
func (h *MemoryHandler) CreateMemory(c *gin.Context) {
	req := CreateMemoryReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	profileID, _ := uuid.Parse(req.ProfileID)

	in := service.CreateMemoryInput{
		UserID:      user.ID,
		ProfileID:   profileID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Address:     req.Address,
		Location:    wktPoint(req.Location),
	}
	if req.ActualDate != "" {
		t, err := parseReleaseDate(req.ActualDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid actual_date", err))
			return
		}
		in.ActualDate = &t
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

type UpdateMemoryReq struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Tags        *string  `json:"tags"`
	ActualDate  *string  `json:"actual_date"`
	Address     *string  `json:"address"`
	Location    *string  `json:"location"`
	MediaURLs   []string `json:"media_urls"`
}

// UpdateMemory godoc
//
//	@Summary		Update memory
//	@Description	Patch memory fields and reconcile its media set
//	@Tags			memory
//	@Accept			json
//	@Produce		json
//	@Param			memory_id	path	string	true	"Memory ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.MemoryView}
//	@Router			/memories/{memory_id} [put]
func (h *MemoryHandler) UpdateMemory(c *gin.Context) {
	memoryID, err := uuid.Parse(c.Param("memory_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	req := UpdateMemoryReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	in := service.UpdateMemoryInput{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Address:     req.Address,
		MediaURLs:   req.MediaURLs,
	}
	if req.ActualDate != nil {
		t, err := parseReleaseDate(*req.ActualDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid actual_date", err))
			return
		}
		in.ActualDate = &t
	}
	if req.Location != nil {
		p := wktPoint(*req.Location)
		in.Location = &p
	}

	view, err := h.svc.Update(c.Request.Context(), memoryID, in)
	if err != nil {
		writeServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: view})
}

type ListMemoriesReq struct {
	ProfileID string `form:"profile_id" binding:"required"`
}

// ListMemories godoc
//
//	@Summary		List memories
//	@Tags			memory
//	@Produce		json
//	@Param			profile_id	query	string	true	"Profile ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]service.MemoryView}
//	@Router			/memories [get]
func (h *MemoryHandler) ListMemories(c *gin.Context) {
	req := ListMemoriesReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid profile_id", err))
		return
	}

	views, err := h.svc.ListByProfile(c.Request.Context(), profileID)
	if err != nil {
		writeServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: views})
}
