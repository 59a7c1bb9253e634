package handlers

import (
	"net/http"

	"neuron_backoffice/internal/services"

	"github.com/gin-gonic/gin"
)

// TicketHandler passes the caller's claims down so the service can apply ownership.
type TicketHandler struct {
	ticketService services.TicketService
}

func NewTicketHandler(ticketService services.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

func (h *TicketHandler) Create(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	var input services.CreateTicketInput
	if !bindJSON(c, &input) {
		return
	}
	ticket, err := h.ticketService.CreateTicket(c.Request.Context(), cl, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *TicketHandler) List(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	q, ok := bindPagination(c)
	if !ok {
		return
	}
	page, err := h.ticketService.GetTickets(c.Request.Context(), cl, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *TicketHandler) Get(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	ticket, err := h.ticketService.GetTicketByID(c.Request.Context(), cl, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) Update(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input services.UpdateTicketInput
	if !bindJSON(c, &input) {
		return
	}
	ticket, err := h.ticketService.UpdateTicket(c.Request.Context(), cl, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) Delete(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.ticketService.DeleteTicket(c.Request.Context(), cl, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
