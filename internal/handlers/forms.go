// Package handlers regroupe les formulaires publics du site : newsletter et contact.
package handlers

import (
	"context"
	"log"
	"net/http"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"dermodazzle_back_end/internal/models"
	"dermodazzle_back_end/internal/utils"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type SubscriberStore interface {
	Insert(ctx context.Context, s *models.Subscriber) error
}

type ContactStore interface {
	Insert(ctx context.Context, c *models.Contact) error
	List(ctx context.Context) ([]models.Contact, error)
}

// FormMailer envoie les emails des formulaires sans bloquer la réponse.
type FormMailer interface {
	Welcome(email string)
	TicketReceived(ticket models.Contact)
}

type FormsHandler struct {
	subscribers SubscriberStore
	contacts    ContactStore
	mailer      FormMailer
	now         func() time.Time
}

func NewFormsHandler(subscribers SubscriberStore, contacts ContactStore, mailer FormMailer) *FormsHandler {
	return &FormsHandler{subscribers: subscribers, contacts: contacts, mailer: mailer, now: time.Now}
}

// POST /api/subscribe
func (h *FormsHandler) Subscribe(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Adresse email invalide")
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !emailPattern.MatchString(email) {
		utils.BadRequest(c, "Adresse email invalide")
		return
	}

	sub := models.Subscriber{Email: email, SubscribedAt: h.now()}
	if err := h.subscribers.Insert(c.Request.Context(), &sub); err != nil {
		utils.Fail(c, err)
		return
	}
	log.Printf("📬 Nouvel abonné newsletter: %s", email)
	if h.mailer != nil {
		h.mailer.Welcome(email)
	}
	utils.OK(c, http.StatusCreated, gin.H{"message": "Inscription confirmée"})
}

// POST /api/contact/submit
func (h *FormsHandler) SubmitContact(c *gin.Context) {
	var input struct {
		Name      string `json:"name"`
		Email     string `json:"email" binding:"required"`
		Subject   string `json:"subject" binding:"required,min=5"`
		Message   string `json:"message" binding:"required,min=5"`
		IssueType string `json:"issueType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "Email, sujet et message (5 caractères minimum) requis")
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !emailPattern.MatchString(email) {
		utils.BadRequest(c, "Adresse email invalide")
		return
	}
	if !slices.Contains(models.IssueTypes, input.IssueType) {
		utils.BadRequest(c, "Type de demande invalide")
		return
	}

	ticket := models.Contact{
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Subject:   strings.TrimSpace(input.Subject),
		Message:   strings.TrimSpace(input.Message),
		IssueType: input.IssueType,
		Status:    "new",
		CreatedAt: h.now(),
	}
	if err := h.contacts.Insert(c.Request.Context(), &ticket); err != nil {
		utils.Fail(c, err)
		return
	}
	log.Printf("📩 Ticket %s (%s) de %s", ticket.ID.Hex(), ticket.IssueType, ticket.Email)
	if h.mailer != nil {
		h.mailer.TicketReceived(ticket)
	}
	utils.OK(c, http.StatusCreated, gin.H{"message": "Message envoyé", "ticketId": ticket.ID.Hex()})
}

// GET /api/contact (admin)
func (h *FormsHandler) ListContacts(c *gin.Context) {
	tickets, err := h.contacts.List(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.OK(c, http.StatusOK, gin.H{"contacts": tickets})
}
