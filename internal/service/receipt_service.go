package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/pricing"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

// Receipt is a plain-text document ready to be served as a download.
type Receipt struct {
	FileName string
	Body     []byte
}

type ReceiptService interface {
	Render(ctx context.Context, actor Actor, orderID string) (*Receipt, error)
}

type receiptService struct {
	orders  OrderService
	sellers repository.SellerRepository
	log     logger.Logger
}

// NewReceiptService renders receipts for anyone allowed to read the order.
func NewReceiptService(orders OrderService, sellers repository.SellerRepository, log logger.Logger) ReceiptService {
	return &receiptService{orders: orders, sellers: sellers, log: log.Named("ReceiptService")}
}

func (s *receiptService) Render(ctx context.Context, actor Actor, orderID string) (*Receipt, error) {
	order, err := s.orders.Get(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	sellerName := order.SellerID
	if seller, err := s.sellers.GetByID(ctx, order.SellerID); err == nil {
		sellerName = seller.BusinessName
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.log.Warnf("Receipt for order %s rendered without seller name: %v", order.ID, err)
	}

	s.log.Infof("Rendering receipt for order %s requested by %s", order.ID, actor.UserID)
	return &Receipt{
		FileName: fmt.Sprintf("receipt_%s.txt", order.ID),
		Body:     formatReceipt(order, sellerName),
	}, nil
}

func formatReceipt(order *entity.Order, sellerName string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Order    %s\n", order.ID)
	fmt.Fprintf(&buf, "Placed   %s\n", order.CreatedAt.UTC().Format(time.RFC1123))
	fmt.Fprintf(&buf, "Seller   %s\n", sellerName)
	fmt.Fprintf(&buf, "Status   %s\n", order.Status)
	fmt.Fprintf(&buf, "Delivery %s\n\n", order.Delivery.Option)

	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Item\tQty\tUnit\tAmount\t")
	for _, item := range order.Items {
		name := item.Name
		switch {
		case item.BargainID != "":
			name += " (bargain)"
		case item.ChallengeID != "":
			name += " (challenge)"
		}
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t\n", name, item.Quantity, item.FinalPrice, pricing.LineTotal(item.FinalPrice, item.Quantity))
	}
	fmt.Fprintf(tw, "Subtotal\t\t\t%.2f\t\n", order.Subtotal)
	fmt.Fprintf(tw, "Delivery\t\t\t%.2f\t\n", order.DeliveryCharge)
	fmt.Fprintf(tw, "Total\t\t\t%.2f\t\n", order.Total)
	_ = tw.Flush()

	fmt.Fprintf(&buf, "\nPayment  %s, %s\n", order.PaymentMethod, order.PaymentStatus)
	if order.Payment.PaymentID != "" {
		fmt.Fprintf(&buf, "Ref      %s\n", order.Payment.PaymentID)
	}
	return buf.Bytes()
}
