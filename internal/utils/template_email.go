package utils

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"dermodazzle_back_end/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(
	template.New("").Funcs(template.FuncMap{
		"inr":       FormatINR,
		"lineTotal": lineTotal,
	}).ParseFS(templateFS, "templates/*.html"),
)

// FormatINR affiche un montant en roupies avec deux décimales.
func FormatINR(amount float64) string {
	return "₹" + decimal.NewFromFloat(amount).StringFixed(2)
}

func lineTotal(item models.OrderItem) string {
	total := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
	return "₹" + total.StringFixed(2)
}

// renderTemplate exécute un template embarqué (nom du fichier).
func renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("template %s: %w", name, err)
	}
	return buf.String(), nil
}

// ShortID donne les 8 derniers caractères d'un identifiant de commande.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
