package checkout

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"farmmarket/internal/domain"
	"farmmarket/internal/mpesa"
	paymentrepo "farmmarket/internal/repository/payment"
)

type cartRepo interface {
	GetForUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	GetByIDs(ctx context.Context, userID string, ids []string) ([]domain.CartItem, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type paymentRepo interface {
	Create(ctx context.Context, in paymentrepo.CreateTransactionInput) (*domain.PaymentTransaction, error)
}

type stkPusher interface {
	STKPush(ctx context.Context, phone string, amount float64, accountRef, description string) (*mpesa.STKPushResponse, error)
}

type Service struct {
	carts    cartRepo
	products productRepo
	payments paymentRepo
	gateway  stkPusher
	logger   *zap.Logger
}

func New(carts cartRepo, products productRepo, payments paymentRepo, gateway stkPusher, logger *zap.Logger) *Service {
	return &Service{carts: carts, products: products, payments: payments, gateway: gateway, logger: logger}
}

type CheckoutInput struct {
	PhoneNumber string   `json:"phone_number"`
	CartItemIDs []string `json:"cart_item_ids,omitempty"`
	// ExpectedTotal is the total the client displayed. When set it must
	// match the server-computed total exactly.
	ExpectedTotal *float64 `json:"expected_total,omitempty"`
}

type CheckoutResult struct {
	Transaction     *domain.PaymentTransaction `json:"transaction"`
	CustomerMessage string                     `json:"customer_message"`
}

// Checkout validates the selection, pushes the payment prompt to the
// customer's phone and records the pending transaction. An empty
// CartItemIDs selection means the whole cart.
func (s *Service) Checkout(ctx context.Context, userID string, in CheckoutInput) (*CheckoutResult, error) {
	phone, err := mpesa.NormalizePhone(in.PhoneNumber)
	if err != nil {
		return nil, err
	}

	var items []domain.CartItem
	if len(in.CartItemIDs) == 0 {
		items, err = s.carts.GetForUser(ctx, userID)
	} else {
		items, err = s.carts.GetByIDs(ctx, userID, in.CartItemIDs)
	}
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.Validationf("no cart items to check out")
	}
	if len(in.CartItemIDs) > 0 && len(items) != len(in.CartItemIDs) {
		return nil, domain.Validationf("one or more selected cart items no longer exist")
	}

	// Stock may have moved since the items were carted.
	for _, it := range items {
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if it.Quantity > p.QuantityAvailable {
			return nil, &domain.StockError{
				ProductID: it.ProductID,
				Requested: it.Quantity,
				Available: p.QuantityAvailable,
			}
		}
	}

	total := domain.SumLines(items)
	if in.ExpectedTotal != nil && math.Abs(domain.Round2(*in.ExpectedTotal)-total) >= 0.005 {
		return nil, domain.Validationf("cart total changed: expected %.2f, current %.2f", *in.ExpectedTotal, total)
	}
	if total < mpesa.MinChargeAmount || total > mpesa.MaxChargeAmount {
		return nil, domain.Validationf("total %.2f outside the chargeable range %.0f-%.0f", total, mpesa.MinChargeAmount, mpesa.MaxChargeAmount)
	}

	// M-Pesa charges whole shillings. The recorded amount is the charged
	// amount, not the fractional cart total.
	charge := math.Round(total)
	resp, err := s.gateway.STKPush(ctx, phone, charge,
		accountReference(userID), "Farmers market purchase")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	txn, err := s.payments.Create(ctx, paymentrepo.CreateTransactionInput{
		UserID:            userID,
		CheckoutRequestID: resp.CheckoutRequestID,
		MerchantRequestID: resp.MerchantRequestID,
		PhoneNumber:       phone,
		Amount:            charge,
		CartItemIDs:       ids,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stk push sent",
		zap.String("user_id", userID),
		zap.String("checkout_request_id", resp.CheckoutRequestID),
		zap.Float64("amount", charge))
	return &CheckoutResult{Transaction: txn, CustomerMessage: resp.CustomerMessage}, nil
}

// accountReference is the short statement reference shown on the
// customer's M-Pesa message.
func accountReference(userID string) string {
	if len(userID) > 8 {
		userID = userID[:8]
	}
	return fmt.Sprintf("FM-%s", userID)
}
