package handler

import (
	"net/http"

	"github.com/eternalmoments/backend/internal/modules/serializer"
	"github.com/eternalmoments/backend/internal/modules/service"
	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	svc service.ContactService
}

func NewContactHandler(s service.ContactService) *ContactHandler {
	return &ContactHandler{svc: s}
}

type CreateContactReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CreateContact godoc
//
//	@Summary		Create contact
//	@Description	Add a notification recipient. At least one of email or phone is required.
//	@Tags			contact
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Contact}
//	@Router			/contacts [post]
func (h *ContactHandler) CreateContact(c *gin.Context) {
	req := CreateContactReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	contact, err := h.svc.Create(c.Request.Context(), service.CreateContactInput{
		UserID: user.ID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
	})
	if err != nil {
		writeServiceErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: contact})
}

// ListContacts godoc
//
//	@Summary		List contacts
//	@Tags			contact
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Contact}
//	@Router			/contacts [get]
func (h *ContactHandler) ListContacts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	contacts, err := h.svc.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		writeServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: contacts})
}
