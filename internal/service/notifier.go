package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/email"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

const emailTimeout = 30 * time.Second

// Notifier tells buyers about their orders. Delivery is best effort and never
// blocks the calling request.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *entity.Order)
	OrderStatusChanged(ctx context.Context, order *entity.Order, notes string)
	PaymentReceived(ctx context.Context, order *entity.Order)
}

type emailNotifier struct {
	sender email.EmailSender
	users  repository.UserRepository
	log    logger.Logger
}

func NewEmailNotifier(sender email.EmailSender, users repository.UserRepository, log logger.Logger) Notifier {
	return &emailNotifier{sender: sender, users: users, log: log.Named("Notifier")}
}

func (n *emailNotifier) OrderPlaced(ctx context.Context, order *entity.Order) {
	subject := fmt.Sprintf("Order %s placed", order.ID)
	text := fmt.Sprintf("Thanks for your order.\n\n%s\nTotal: %.2f (delivery %.2f)\nPayment: %s\n",
		itemLines(order), order.Total, order.DeliveryCharge, order.PaymentMethod)
	n.dispatch(ctx, order.UserID, subject, text)
}

func (n *emailNotifier) OrderStatusChanged(ctx context.Context, order *entity.Order, notes string) {
	subject := fmt.Sprintf("Order %s is now %s", order.ID, order.Status)
	text := fmt.Sprintf("Your order %s moved to %s.", order.ID, order.Status)
	if notes != "" {
		text += "\nNote: " + notes
	}
	n.dispatch(ctx, order.UserID, subject, text)
}

func (n *emailNotifier) PaymentReceived(ctx context.Context, order *entity.Order) {
	subject := fmt.Sprintf("Payment received for order %s", order.ID)
	text := fmt.Sprintf("We received your payment of %.2f (payment %s). Your order is %s.",
		order.Total, order.Payment.PaymentID, order.Status)
	n.dispatch(ctx, order.UserID, subject, text)
}

func (n *emailNotifier) dispatch(ctx context.Context, userID, subject, text string) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, emailTimeout)
		defer cancel()

		user, err := n.users.GetByID(ctx, userID)
		if err != nil {
			n.log.Warnf("Failed to load user %s for email %q: %v", userID, subject, err)
			return
		}
		body := "<p>" + strings.ReplaceAll(html.EscapeString(text), "\n", "<br>") + "</p>"
		if err := n.sender.Send(ctx, []string{user.Email}, subject, body, text); err != nil {
			n.log.Warnf("Failed to send email %q to user %s: %v", subject, userID, err)
		}
	}()
}

func itemLines(order *entity.Order) string {
	var b strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s x%d @ %.2f = %.2f\n", item.Name, item.Quantity, item.FinalPrice, item.LineTotal())
	}
	return b.String()
}
