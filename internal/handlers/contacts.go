package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mimos-de-madera/backoffice-service/internal/models"
)

// GetContact handles GET /api/contacts/:id
func (h *Handlers) GetContact(c *gin.Context) {
	contact, err := h.contactService.GetContact(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// ListContacts handles GET /api/contacts
func (h *Handlers) ListContacts(c *gin.Context) {
	contacts, err := h.contactService.ListContacts(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

// UpdateContact handles PUT /api/contacts/:id
func (h *Handlers) UpdateContact(c *gin.Context) {
	var req models.UpdateContactRequest
	if !bindJSON(c, &req) {
		return
	}

	contact, err := h.contactService.UpdateContact(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// DeleteContact handles DELETE /api/contacts/:id
func (h *Handlers) DeleteContact(c *gin.Context) {
	if err := h.contactService.DeleteContact(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "contact deleted"})
}

// UnreadContactCount handles GET /api/contacts/unread-count
func (h *Handlers) UnreadContactCount(c *gin.Context) {
	count, err := h.contactService.UnreadCount(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// ListSubscriptions handles GET /api/email-subscriptions
func (h *Handlers) ListSubscriptions(c *gin.Context) {
	subs, err := h.contactService.ListSubscriptions(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

// CountSubscriptions handles GET /api/email-subscriptions/count
func (h *Handlers) CountSubscriptions(c *gin.Context) {
	count, err := h.contactService.CountSubscriptions(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// DeleteSubscription handles DELETE /api/email-subscriptions/:id
func (h *Handlers) DeleteSubscription(c *gin.Context) {
	if err := h.contactService.DeleteSubscription(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "subscription deleted"})
}

// AdminStats handles GET /api/admin/stats
func (h *Handlers) AdminStats(c *gin.Context) {
	stats, err := h.statsService.AdminStats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
