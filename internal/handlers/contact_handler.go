package handlers

import (
	"net/http"

	"neuron_backoffice/internal/services"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactService services.ContactService
}

func NewContactHandler(contactService services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (h *ContactHandler) Create(c *gin.Context) {
	var input services.CreateContactInput
	if !bindJSON(c, &input) {
		return
	}
	contact, err := h.contactService.CreateContact(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandler) List(c *gin.Context) {
	q, ok := bindPagination(c)
	if !ok {
		return
	}
	page, err := h.contactService.GetContacts(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	contact, err := h.contactService.GetContactByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input services.UpdateContactInput
	if !bindJSON(c, &input) {
		return
	}
	contact, err := h.contactService.UpdateContact(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.contactService.DeleteContact(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
