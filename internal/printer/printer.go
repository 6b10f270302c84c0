// Package printer renders kitchen tickets for 58mm thermal printers
// and the WhatsApp order message customers forward to the restaurant.
package printer

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"el-sabor/internal/models"
)

const (
	// RestaurantName heads every ticket
	RestaurantName = "El Sabor"
	// RestaurantPhoneNumber receives the WhatsApp order messages
	RestaurantPhoneNumber = "5581995238551"
	// RestaurantAddress is printed on pickup instructions
	RestaurantAddress = "Rua,Prof.Rutilho, 2 - Coqueiral, Recife - PE, 50791-040"

	// ticketWidth is the character budget of a 58mm thermal printer
	ticketWidth = 32
)

// FormatBRL renders an amount the Brazilian way: R$ 1.234,56
func FormatBRL(amount decimal.Decimal) string {
	plain := amount.StringFixed(2)

	neg := strings.HasPrefix(plain, "-")
	plain = strings.TrimPrefix(plain, "-")

	parts := strings.SplitN(plain, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, grouped.String(), fracPart)
}

// ShortOrderID returns the tail of the order id shown to humans
func ShortOrderID(id string) string {
	const n = 6
	if utf8.RuneCountInString(id) <= n {
		return id
	}
	runes := []rune(id)
	return string(runes[len(runes)-n:])
}

func center(s string) string {
	pad := ticketWidth - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s
}

func spread(left, right string) string {
	gap := ticketWidth - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

var divider = strings.Repeat("-", ticketWidth)

// Ticket renders the kitchen ticket text for an accepted order
func Ticket(order *models.Order) string {
	var b strings.Builder

	b.WriteString(center(RestaurantName) + "\n")
	b.WriteString(center(order.CreatedAt.Format("02/01/2006 15:04")) + "\n")
	b.WriteString(center("Pedido: "+ShortOrderID(order.ID)) + "\n")
	b.WriteString(divider + "\n")

	b.WriteString("Cliente: " + order.Customer.Name + "\n")
	b.WriteString("Telefone: " + order.Customer.Phone + "\n")
	b.WriteString("Tipo: " + models.TranslateDeliveryType(order.DeliveryType) + "\n")
	b.WriteString(divider + "\n")

	for _, line := range order.Items {
		label := fmt.Sprintf("%dx %s", line.Quantity, line.Item.Name)
		b.WriteString(spread(label, line.Item.Price.StringFixed(2)) + "\n")
		if line.SelectedFlavor != "" {
			b.WriteString(" Sabor: " + line.SelectedFlavor + "\n")
		}
	}
	b.WriteString(divider + "\n")

	b.WriteString(spread("TOTAL", FormatBRL(order.Total)) + "\n")
	b.WriteString("Pagamento: " + models.TranslatePaymentMethod(order.PaymentMethod) + "\n")
	if order.Observations != "" {
		b.WriteString("Obs:\n")
		b.WriteString(order.Observations + "\n")
	}

	b.WriteString("\n")
	b.WriteString(center("Obrigado!") + "\n")
	return b.String()
}

// WhatsAppMessage builds the plain-text order message the customer
// forwards to the restaurant after checkout.
func WhatsAppMessage(order *models.Order) string {
	var b strings.Builder

	b.WriteString("Olá, gostaria de fazer um pedido!\n\n")
	b.WriteString("*Cliente:* " + order.Customer.Name + "\n")
	b.WriteString("*Telefone:* " + order.Customer.Phone + "\n\n")
	b.WriteString("*Itens:*\n")
	for _, line := range order.Items {
		flavor := ""
		if line.SelectedFlavor != "" {
			flavor = " (" + line.SelectedFlavor + ")"
		}
		fmt.Fprintf(&b, " - %dx %s%s\n", line.Quantity, line.Item.Name, flavor)
	}
	b.WriteString("\n*Total:* " + FormatBRL(order.Total) + "\n")
	b.WriteString("*Pagamento:* " + models.TranslatePaymentMethod(order.PaymentMethod) + "\n")
	b.WriteString("*Entrega:* " + models.TranslateDeliveryType(order.DeliveryType) + "\n")
	if order.Observations != "" {
		b.WriteString("*Observações:* " + order.Observations + "\n")
	}
	b.WriteString("\nObrigado!")
	return b.String()
}

// WhatsAppLink builds the wa.me URL carrying the order message
func WhatsAppLink(order *models.Order) string {
	return "https://wa.me/" + RestaurantPhoneNumber + "?text=" + url.QueryEscape(WhatsAppMessage(order))
}

// WriterPrinter writes tickets to an io.Writer, typically the spool
// device of a thermal printer or stdout in development.
type WriterPrinter struct {
	W io.Writer
}

// PrintTicket renders and writes the ticket
func (p *WriterPrinter) PrintTicket(order *models.Order) error {
	_, err := io.WriteString(p.W, Ticket(order)+"\n")
	return err
}
