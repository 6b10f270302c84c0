package lifecycle

import (
	"sync"

	"el-sabor/internal/models"
)

// Printer emits a physical kitchen ticket for an order
type Printer interface {
	PrintTicket(order *models.Order) error
}

// AutoPrinter triggers one ticket print when an order is accepted.
// Accepting the same order twice, whether from a double click or a
// retried request, must not print twice; the printer remembers the
// last order id it printed and skips repeats until a different order
// is accepted.
type AutoPrinter struct {
	printer Printer
	enabled bool

	mu            sync.Mutex
	lastPrintedID string
}

// NewAutoPrinter wraps a printer; when enabled is false OrderAccepted
// never prints.
func NewAutoPrinter(printer Printer, enabled bool) *AutoPrinter {
	return &AutoPrinter{printer: printer, enabled: enabled}
}

// OrderAccepted reacts to a PENDING -> ACCEPTED transition. It returns
// whether a ticket was printed.
func (p *AutoPrinter) OrderAccepted(order *models.Order) (bool, error) {
	if !p.enabled {
		return false, nil
	}

	p.mu.Lock()
	if p.lastPrintedID == order.ID {
		p.mu.Unlock()
		return false, nil
	}
	p.lastPrintedID = order.ID
	p.mu.Unlock()

	if err := p.printer.PrintTicket(order); err != nil {
		return false, err
	}
	return true, nil
}
