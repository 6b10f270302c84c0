package models

// Display labels shown on tickets, dashboards and customer messages.

// TranslatePaymentMethod returns the pt-BR label for a payment method
func TranslatePaymentMethod(method PaymentMethod) string {
	switch method {
	case PaymentCash:
		return "Dinheiro"
	case PaymentCard:
		return "Cartão de Crédito/Débito"
	case PaymentPix:
		return "PIX"
	default:
		return string(method)
	}
}

// TranslateDeliveryType returns the pt-BR label for a delivery type
func TranslateDeliveryType(t DeliveryType) string {
	switch t {
	case DeliveryTypeDelivery:
		return "Entrega"
	case DeliveryTypePickup:
		return "Retirada"
	default:
		return string(t)
	}
}

// TranslateOrderStatus returns the pt-BR label for an order status
func TranslateOrderStatus(status OrderStatus) string {
	switch status {
	case StatusPending:
		return "Pendente"
	case StatusAccepted:
		return "Aceito"
	case StatusCanceled:
		return "Cancelado"
	case StatusOutForDelivery:
		return "Saiu para Entrega"
	case StatusDelivered:
		return "Entregue"
	case StatusReadyForPickup:
		return "Pronto para Retirada"
	case StatusCompleted:
		return "Concluído"
	default:
		return string(status)
	}
}
