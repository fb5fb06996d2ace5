package utils

import (
	"dermodazzle_back_end/internal/models"
	"dermodazzle_back_end/internal/orders"
)

const shopName = "DermoDazzle"

func statusEmailSubject(status string) string {
	switch status {
	case orders.StatusPacking:
		return "🎁 Votre commande est en préparation - " + shopName
	case orders.StatusShipped:
		return "📦 Votre commande a été expédiée - " + shopName
	case orders.StatusOutForDelivery:
		return "🚚 Votre commande arrive aujourd'hui - " + shopName
	case orders.StatusDelivered:
		return "🎉 Votre commande a été livrée - " + shopName
	case orders.StatusCancelled:
		return "❌ Commande annulée - " + shopName
	default:
		return "📋 Mise à jour de votre commande - " + shopName
	}
}

func statusMessage(status string) string {
	switch status {
	case orders.StatusPlaced:
		return "Votre commande est enregistrée, nous la préparons très bientôt."
	case orders.StatusPacking:
		return "Nos équipes emballent soigneusement vos produits."
	case orders.StatusShipped:
		return "Votre colis a quitté notre entrepôt. Suivez-le avec le numéro ci-dessous."
	case orders.StatusOutForDelivery:
		return "Le livreur est en route, votre colis arrive aujourd'hui."
	case orders.StatusDelivered:
		return "Votre commande a été livrée. Merci pour votre confiance !"
	case orders.StatusCancelled:
		return "Votre commande a été annulée. Contactez-nous pour toute question."
	default:
		return "Le statut de votre commande a changé."
	}
}

func statusIcon(status string) string {
	switch status {
	case orders.StatusShipped, orders.StatusOutForDelivery:
		return "🚚"
	case orders.StatusDelivered:
		return "🎉"
	case orders.StatusCancelled:
		return "❌"
	default:
		return "📦"
	}
}

func statusColor(status string) string {
	switch status {
	case orders.StatusDelivered:
		return "#2e7d32"
	case orders.StatusCancelled:
		return "#c62828"
	case orders.StatusShipped, orders.StatusOutForDelivery:
		return "#1565c0"
	default:
		return "#c86b85"
	}
}

func WelcomeEmailHTML(email, shopURL string) (string, error) {
	return renderTemplate("welcome.html", map[string]string{
		"Email":   email,
		"ShopURL": shopURL,
	})
}

func OrderConfirmationHTML(order models.Order) (string, error) {
	return renderTemplate("order_confirmation.html", map[string]any{
		"Order":   order,
		"ShortID": ShortID(order.ID.Hex()),
	})
}

func OrderStatusHTML(order models.Order) (string, error) {
	return renderTemplate("order_status.html", map[string]any{
		"Order":       order,
		"ShortID":     ShortID(order.ID.Hex()),
		"Status":      order.Status,
		"Message":     statusMessage(order.Status),
		"Icon":        statusIcon(order.Status),
		"Color":       statusColor(order.Status),
		"TrackingURL": orders.TrackingURL(order.CourierPartner, order.TrackingID),
	})
}

func TicketConfirmationHTML(ticket models.Contact) (string, error) {
	return renderTemplate("ticket_confirmation.html", map[string]any{
		"Ticket":   ticket,
		"TicketID": ShortID(ticket.ID.Hex()),
	})
}

func SupportAlertHTML(ticket models.Contact) (string, error) {
	return renderTemplate("support_alert.html", map[string]any{
		"Ticket":   ticket,
		"TicketID": ShortID(ticket.ID.Hex()),
	})
}
