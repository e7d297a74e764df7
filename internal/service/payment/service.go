package payment

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"farmmarket/internal/domain"
	"farmmarket/internal/mpesa"
	paymentrepo "farmmarket/internal/repository/payment"
)

type paymentRepo interface {
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.PaymentTransaction, error)
	ListByUser(ctx context.Context, userID string) ([]domain.PaymentTransaction, error)
	SetStatus(ctx context.Context, checkoutRequestID, status string, receiptNumber, transactionDate *string) error
	SettleOrders(ctx context.Context, in paymentrepo.SettleOrdersInput) (bool, error)
}

type cartRepo interface {
	GetByIDs(ctx context.Context, userID string, ids []string) ([]domain.CartItem, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type Service struct {
	payments paymentRepo
	carts    cartRepo
	users    userRepo
	logger   *zap.Logger
}

func New(payments paymentRepo, carts cartRepo, users userRepo, logger *zap.Logger) *Service {
	return &Service{payments: payments, carts: carts, users: users, logger: logger}
}

// HandleCallback settles a transaction from the gateway's asynchronous
// result. Redelivered callbacks for an already-settled transaction are
// acknowledged without side effects.
func (s *Service) HandleCallback(ctx context.Context, cb *mpesa.Callback) error {
	result := cb.ParseCallback()

	status := domain.PaymentFailed
	switch {
	case result.Success:
		status = domain.PaymentCompleted
	case cb.Cancelled():
		status = domain.PaymentCancelled
	}

	err := s.payments.SetStatus(ctx, result.CheckoutRequestID, status, result.ReceiptNumber, result.TransactionDate)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			s.logger.Info("callback for settled transaction ignored",
				zap.String("checkout_request_id", result.CheckoutRequestID))
			return nil
		}
		return err
	}

	s.logger.Info("payment settled",
		zap.String("checkout_request_id", result.CheckoutRequestID),
		zap.String("status", status),
		zap.String("result", result.ResultDesc))

	if status != domain.PaymentCompleted {
		return nil
	}
	return s.createOrders(ctx, result.CheckoutRequestID)
}

// ProcessCompleted converts a completed transaction into shipping orders.
// The callback path normally does this; the endpoint exists for clients
// that detected completion by polling before the callback landed.
func (s *Service) ProcessCompleted(ctx context.Context, userID, checkoutRequestID string) (*domain.PaymentTransaction, error) {
	txn, err := s.owned(ctx, userID, checkoutRequestID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.PaymentCompleted {
		return nil, domain.Validationf("transaction is %s, not completed", txn.Status)
	}
	if err := s.createOrders(ctx, checkoutRequestID); err != nil {
		return nil, err
	}
	return s.payments.GetByCheckoutRequestID(ctx, checkoutRequestID)
}

func (s *Service) Status(ctx context.Context, userID, checkoutRequestID string) (*domain.PaymentTransaction, error) {
	return s.owned(ctx, userID, checkoutRequestID)
}

func (s *Service) History(ctx context.Context, userID string) ([]domain.PaymentTransaction, error) {
	return s.payments.ListByUser(ctx, userID)
}

func (s *Service) owned(ctx context.Context, userID, checkoutRequestID string) (*domain.PaymentTransaction, error) {
	txn, err := s.payments.GetByCheckoutRequestID(ctx, checkoutRequestID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return txn, nil
}

// createOrders turns the paid cart items into one shipping order per item
// and clears them from the cart, all in one settlement transaction. A
// failed settlement leaves orders_created unclaimed so a redelivered
// callback or a polling client's retry can settle later.
func (s *Service) createOrders(ctx context.Context, checkoutRequestID string) error {
	txn, err := s.payments.GetByCheckoutRequestID(ctx, checkoutRequestID)
	if err != nil {
		return err
	}
	if txn.OrdersCreated {
		return nil
	}

	items, err := s.carts.GetByIDs(ctx, txn.UserID, txn.CartItemIDs)
	if err != nil {
		return err
	}

	var address *string
	if buyer, err := s.users.GetByID(ctx, txn.UserID); err == nil {
		address = buyer.Location
	}

	orders := make([]paymentrepo.SettlementOrder, 0, len(items))
	for _, it := range items {
		orders = append(orders, paymentrepo.SettlementOrder{
			ProductID:   it.ProductID,
			VendorID:    it.Product.VendorID,
			Quantity:    it.Quantity,
			TotalAmount: domain.LineTotal(it.Product.Price, it.Quantity),
		})
	}

	created, err := s.payments.SettleOrders(ctx, paymentrepo.SettleOrdersInput{
		CheckoutRequestID: checkoutRequestID,
		UserID:            txn.UserID,
		CartItemIDs:       txn.CartItemIDs,
		ShippingAddress:   address,
		Orders:            orders,
	})
	if err != nil {
		s.logger.Error("settlement failed, left for retry",
			zap.String("checkout_request_id", checkoutRequestID),
			zap.Error(err))
		return err
	}
	if !created {
		return nil
	}
	s.logger.Info("orders created",
		zap.String("checkout_request_id", checkoutRequestID),
		zap.Int("count", len(orders)))
	return nil
}
