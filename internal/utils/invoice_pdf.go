package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"dermodazzle_back_end/internal/models"
)

type InvoiceConfig struct {
	CompanyName string
	UPIID       string // VPA du marchand, ex. dermodazzle@okaxis
}

// UPIPaymentURI construit le lien de paiement UPI lu par les applications bancaires.
func UPIPaymentURI(vpa, payee string, amount float64, note string) string {
	esc := func(s string) string { return strings.ReplaceAll(url.QueryEscape(s), "+", "%20") }
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&cu=INR&tn=%s",
		esc(vpa), esc(payee), decimal.NewFromFloat(amount).StringFixed(2), esc(note))
}

// GenerateUPIQR encode le lien UPI en PNG base64 prêt à mettre dans <img src="...">.
func GenerateUPIQR(uri string) (string, error) {
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

func InvoiceNumber(order models.Order) string {
	return "DD-" + strings.ToUpper(ShortID(order.ID.Hex()))
}

// RenderInvoiceHTML produit la facture ; un QR UPI est ajouté tant que la commande n'est pas payée.
func RenderInvoiceHTML(order models.Order, cfg InvoiceConfig) (string, error) {
	number := InvoiceNumber(order)
	data := map[string]any{
		"Number":  number,
		"Company": cfg.CompanyName,
		"Date":    time.UnixMilli(order.Date).Format("02/01/2006"),
		"Order":   order,
		"UPIID":   cfg.UPIID,
	}
	if !order.Payment && cfg.UPIID != "" {
		qr, err := GenerateUPIQR(UPIPaymentURI(cfg.UPIID, cfg.CompanyName, order.Amount, number))
		if err != nil {
			return "", fmt.Errorf("erreur génération QR: %w", err)
		}
		data["QR"] = template.URL(qr)
	}
	return renderTemplate("invoice.html", data)
}

// PDFPrinter transforme un document HTML en PDF.
type PDFPrinter interface {
	Print(ctx context.Context, html string) ([]byte, error)
}

// ChromePrinter imprime via Chrome headless, local ou distant (ws://...).
type ChromePrinter struct {
	remoteURL string
	timeout   time.Duration
}

func NewChromePrinter(remoteURL string) *ChromePrinter {
	return &ChromePrinter{remoteURL: remoteURL, timeout: 30 * time.Second}
}

func (p *ChromePrinter) Print(ctx context.Context, html string) ([]byte, error) {
	var (
		allocCtx context.Context
		cancel   context.CancelFunc
	)
	if p.remoteURL != "" {
		allocCtx, cancel = chromedp.NewRemoteAllocator(ctx, p.remoteURL)
	} else {
		allocCtx, cancel = chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	}
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// timeout pour éviter de bloquer
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, p.timeout)
	defer cancelTimeout()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("impression PDF: %w", err)
	}
	log.Printf("🧾 PDF généré (%d octets)", len(pdf))
	return pdf, nil
}
