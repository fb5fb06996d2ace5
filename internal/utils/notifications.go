package utils

import (
	"context"
	"log"
	"sync"
	"time"

	"dermodazzle_back_end/internal/models"
)

// UserLookup retrouve l'email du client d'une commande.
type UserLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// Notifications envoie les emails transactionnels en arrière-plan.
// Les échecs sont journalisés et n'interrompent jamais la requête.
type Notifications struct {
	mailer  Sender
	users   UserLookup
	support string
	shopURL string
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewNotifications(mailer Sender, users UserLookup, supportEmail, shopURL string) *Notifications {
	return &Notifications{
		mailer:  mailer,
		users:   users,
		support: supportEmail,
		shopURL: shopURL,
		timeout: 30 * time.Second,
	}
}

// Welcome confirme une inscription à la newsletter.
func (n *Notifications) Welcome(email string) {
	n.deliver(func(ctx context.Context) {
		html, err := WelcomeEmailHTML(email, n.shopURL)
		if err != nil {
			log.Printf("❌ Email de bienvenue: %v", err)
			return
		}
		n.send(ctx, email, "✨ Bienvenue chez "+shopName+" !", html)
	})
}

// TicketReceived accuse réception au client et alerte le support.
func (n *Notifications) TicketReceived(ticket models.Contact) {
	n.deliver(func(ctx context.Context) {
		if html, err := TicketConfirmationHTML(ticket); err == nil {
			n.send(ctx, ticket.Email, "📩 Demande reçue - "+shopName, html)
		} else {
			log.Printf("❌ Email ticket client: %v", err)
		}
		if n.support == "" {
			return
		}
		if html, err := SupportAlertHTML(ticket); err == nil {
			n.send(ctx, n.support, "🆘 ["+ticket.IssueType+"] "+ticket.Subject, html)
		} else {
			log.Printf("❌ Email alerte support: %v", err)
		}
	})
}

func (n *Notifications) OrderPlaced(order models.Order) {
	n.deliver(func(ctx context.Context) {
		to, ok := n.customerEmail(ctx, order)
		if !ok {
			return
		}
		html, err := OrderConfirmationHTML(order)
		if err != nil {
			log.Printf("❌ Email confirmation commande: %v", err)
			return
		}
		n.send(ctx, to, "✅ Commande confirmée - "+shopName, html)
	})
}

func (n *Notifications) OrderStatusChanged(order models.Order) {
	n.deliver(func(ctx context.Context) {
		to, ok := n.customerEmail(ctx, order)
		if !ok {
			return
		}
		html, err := OrderStatusHTML(order)
		if err != nil {
			log.Printf("❌ Email statut commande: %v", err)
			return
		}
		n.send(ctx, to, statusEmailSubject(order.Status), html)
	})
}

// Wait attend la fin des envois en cours (arrêt du serveur, tests).
func (n *Notifications) Wait() { n.wg.Wait() }

func (n *Notifications) deliver(fn func(ctx context.Context)) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		fn(ctx)
	}()
}

func (n *Notifications) send(ctx context.Context, to, subject, html string) {
	if err := n.mailer.Send(ctx, to, subject, html); err != nil {
		log.Printf("❌ Erreur envoi email à %s: %v", to, err)
		return
	}
	log.Printf("📧 Email envoyé: %s → %s", subject, to)
}

func (n *Notifications) customerEmail(ctx context.Context, order models.Order) (string, bool) {
	if n.users == nil {
		return "", false
	}
	user, err := n.users.Get(ctx, order.UserID)
	if err != nil {
		log.Printf("⚠️ Client introuvable pour la commande %s: %v", order.ID.Hex(), err)
		return "", false
	}
	return user.Email, user.Email != ""
}
