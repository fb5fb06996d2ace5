package orders

// Statuts de livraison, dans l'ordre d'affichage. Le personnel peut choisir
// n'importe lequel : aucun ordre n'est imposé entre eux.
const (
	StatusPlaced         = "Order Placed"
	StatusPacking        = "Packing"
	StatusShipped        = "Shipped"
	StatusOutForDelivery = "Out for delivery"
	StatusDelivered      = "Delivered"
	StatusCancelled      = "Cancelled"
)

var statuses = []string{
	StatusPlaced,
	StatusPacking,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

// Moyens de paiement
const (
	MethodCOD      = "COD"
	MethodStripe   = "Stripe"
	MethodRazorpay = "Razorpay"
)

func Statuses() []string {
	out := make([]string, len(statuses))
	copy(out, statuses)
	return out
}

func ValidStatus(s string) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}
