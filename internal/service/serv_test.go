package service_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/wayofglory/shop/internal/domain/models"
	"github.com/wayofglory/shop/internal/finance"
	"github.com/wayofglory/shop/internal/listing"
	"github.com/wayofglory/shop/internal/service"
	"github.com/wayofglory/shop/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCalculator() finance.Calculator {
	return finance.NewCalculator(0.0775, 0.2155)
}

type fakeStaffRepo struct {
	staff map[string]*models.Staff
}

var _ storage.StaffStorage = (*fakeStaffRepo)(nil)

func (f *fakeStaffRepo) GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	s, ok := f.staff[email]
	if !ok {
		return nil, storage.ErrStaffNotFound
	}
	return s, nil
}

type fakeOrderRepo struct {
	orders   map[int64]*models.Order
	statuses map[int64]models.OrderStatus
	nextID   int64
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:   make(map[int64]*models.Order),
		statuses: make(map[int64]models.OrderStatus),
		nextID:   1,
	}
}

func (f *fakeOrderRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	id := f.nextID
	f.nextID++
	stored := *order
	stored.ID = id
	f.orders[id] = &stored
	return id, nil
}

func (f *fakeOrderRepo) CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	return nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	if _, ok := f.orders[id]; !ok {
		return storage.ErrOrderNotFound
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeOrderRepo) DeleteOrder(ctx context.Context, id int64) error {
	if _, ok := f.orders[id]; !ok {
		return storage.ErrOrderNotFound
	}
	delete(f.orders, id)
	return nil
}

type fakeProductRepo struct {
	products map[int64]*models.Product
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func (f *fakeProductRepo) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return p, nil
}

type fakeEmailLogRepo struct {
	logs []models.EmailLog
}

var _ storage.EmailLogStorage = (*fakeEmailLogRepo)(nil)

func (f *fakeEmailLogRepo) CreateEmailLog(ctx context.Context, entry *models.EmailLog) error {
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeEmailLogRepo) GetLogsByOrderID(ctx context.Context, orderID int64) ([]models.EmailLog, error) {
	var out []models.EmailLog
	for _, l := range f.logs {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}

type stubCompletions struct {
	reply string
	err   error
	// recorded inputs
	system string
	user   string
}

func (s *stubCompletions) Complete(ctx context.Context, system, user string) (string, error) {
	s.system = system
	s.user = user
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestAuthService_Login(t *testing.T) {
	passHash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	repo := &fakeStaffRepo{staff: map[string]*models.Staff{
		"admin@wayofglory.com": {ID: 1, Email: "admin@wayofglory.com", PassHash: passHash},
	}}

	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	authService := service.NewAuthService(testLogger(), repo, time.Hour)

	token, err := authService.Login(context.Background(), "admin@wayofglory.com", "correct-horse")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = authService.Login(context.Background(), "admin@wayofglory.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = authService.Login(context.Background(), "nobody@wayofglory.com", "correct-horse")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials, "unknown account must look like bad credentials")
}

func TestOrderService_ListOrders_FiltersAndStats(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.orders[1] = &models.Order{
		ID: 1, FirstName: "Joe", LastName: "Miller", Email: "joe@example.com",
		Status: models.StatusPending, TotalAmount: models.NewMoney(215.50),
		CreatedAt: time.Now().Add(-time.Hour),
		Items: []models.OrderItem{{
			Quantity: 2, PriceAtTime: models.NewMoney(100),
			Product: &models.ProductSnapshot{Title: "Amp", Category: "Amplifiers"},
		}},
	}
	repo.orders[2] = &models.Order{
		ID: 2, FirstName: "Anna", LastName: "Smith", Email: "anna@church.org",
		Status: models.StatusCompleted, TotalAmount: models.NewMoney(500),
		CreatedAt: time.Now().Add(-2 * time.Hour),
		Items: []models.OrderItem{{
			Quantity: 1, PriceAtTime: models.NewMoney(500),
			Product: &models.ProductSnapshot{Title: "Setup", Category: "Services"},
		}},
	}

	orderService := service.NewOrderService(testLogger(), repo, testCalculator())

	result, err := orderService.ListOrders(context.Background(), listing.Criteria{Search: "joe"})
	assert.NoError(t, err)
	assert.Len(t, result.Orders, 1)
	assert.Equal(t, int64(1), result.Orders[0].ID)

	// stats cover the whole collection, not the filtered view
	assert.Equal(t, 2, result.Stats.Statuses.Total)
	assert.Equal(t, 1, result.Stats.Statuses.Pending)
	assert.Equal(t, 1, result.Stats.Statuses.Completed)
	assert.True(t, result.Stats.TotalTax.Equal(decimal.RequireFromString("15.50")), "got %s", result.Stats.TotalTax)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.orders[1] = &models.Order{ID: 1, Status: models.StatusPending}

	orderService := service.NewOrderService(testLogger(), repo, testCalculator())

	assert.NoError(t, orderService.UpdateStatus(context.Background(), 1, "confirmed"))
	assert.Equal(t, models.StatusConfirmed, repo.statuses[1])

	err := orderService.UpdateStatus(context.Background(), 1, "shipped")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	err = orderService.UpdateStatus(context.Background(), 99, "confirmed")
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
}

func TestOrderService_DeleteOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.orders[1] = &models.Order{ID: 1}

	orderService := service.NewOrderService(testLogger(), repo, testCalculator())

	assert.NoError(t, orderService.DeleteOrder(context.Background(), 1))
	assert.ErrorIs(t, orderService.DeleteOrder(context.Background(), 1), storage.ErrOrderNotFound)
}

func TestCheckoutService_PlaceOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	orderRepo := newFakeOrderRepo()
	productRepo := &fakeProductRepo{products: map[int64]*models.Product{
		10: {ID: 10, Title: "Amplifier", Category: "Amplifiers", Price: models.NewMoney(100), Cost: models.NewMoney(60)},
	}}

	checkoutService := service.NewCheckoutService(testLogger(), db, orderRepo, productRepo, testCalculator())

	result, err := checkoutService.PlaceOrder(context.Background(), service.CheckoutRequest{
		FirstName:         "Joe",
		LastName:          "Miller",
		Email:             "joe@example.com",
		PaymentMethod:     "check",
		InstallationPrice: models.NewMoney(299),
		Items:             []service.CheckoutItem{{ProductID: 10, Quantity: 2}},
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, result.OrderNumber)

	// 200 + 15.50 tax + 299 installation
	assert.True(t, result.TotalAmount.Equal(decimal.RequireFromString("514.50")), "got %s", result.TotalAmount)

	stored := orderRepo.orders[result.OrderID]
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].PriceAtTime.Equal(decimal.RequireFromString("100")), "price must be frozen from the catalog")
	assert.True(t, stored.Items[0].CostAtTime.Equal(decimal.RequireFromString("60")), "cost must be frozen from the catalog")
	assert.Equal(t, "Amplifiers", stored.Items[0].Product.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutService_PlaceOrder_EmptyCart(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	checkoutService := service.NewCheckoutService(testLogger(), db, newFakeOrderRepo(), &fakeProductRepo{}, testCalculator())

	_, err = checkoutService.PlaceOrder(context.Background(), service.CheckoutRequest{Email: "joe@example.com"})
	assert.ErrorIs(t, err, service.ErrEmptyCart)
}

func TestCheckoutService_PlaceOrder_UnknownProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	checkoutService := service.NewCheckoutService(testLogger(), db, newFakeOrderRepo(), &fakeProductRepo{products: map[int64]*models.Product{}}, testCalculator())

	_, err = checkoutService.PlaceOrder(context.Background(), service.CheckoutRequest{
		Email: "joe@example.com",
		Items: []service.CheckoutItem{{ProductID: 404, Quantity: 1}},
	})
	assert.ErrorIs(t, err, storage.ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailService_GenerateEmail(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	orderRepo.orders[5] = &models.Order{
		ID: 5, FirstName: "Joe", LastName: "Miller", Email: "joe@example.com",
		TotalAmount: models.NewMoney(514.50), InstallationDate: "2025-07-01",
	}

	completions := &stubCompletions{reply: "Subject: Your installation is booked\n\nHi Joe,\n\nYour installation is set for July 1st.\n"}
	emailService := service.NewEmailService(testLogger(), orderRepo, &fakeEmailLogRepo{}, completions, service.LogMailer{Log: testLogger()})

	result, err := emailService.GenerateEmail(context.Background(), 5, "confirm the installation date", "installation_confirmation", false)
	assert.NoError(t, err)
	assert.Equal(t, "Your installation is booked", result.Subject)
	assert.Contains(t, result.Content, "Your installation is set for July 1st.")
	assert.Contains(t, result.HTML, "<p>Hi Joe,</p>")
	assert.False(t, result.IsNewTemplate)

	// the model sees the order facts, not just the prompt
	assert.Contains(t, completions.user, "Order #5")
	assert.Contains(t, completions.user, "$514.50")
	assert.Contains(t, completions.user, "confirm the installation date")
}

func TestEmailService_GenerateEmail_TemplateChangeShortCircuit(t *testing.T) {
	completions := &stubCompletions{}
	emailService := service.NewEmailService(testLogger(), newFakeOrderRepo(), &fakeEmailLogRepo{}, completions, service.LogMailer{Log: testLogger()})

	result, err := emailService.GenerateEmail(context.Background(), 5, "", "thank_you", true)
	assert.NoError(t, err)
	assert.True(t, result.IsNewTemplate)
	assert.Empty(t, result.Subject)
	assert.Empty(t, completions.user, "template changes must not spend a completion")
}

func TestEmailService_GenerateEmail_FallbackSubject(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	orderRepo.orders[5] = &models.Order{ID: 5, FirstName: "Joe", TotalAmount: models.NewMoney(100)}

	completions := &stubCompletions{reply: "Thanks for your order, it ships tomorrow."}
	emailService := service.NewEmailService(testLogger(), orderRepo, &fakeEmailLogRepo{}, completions, service.LogMailer{Log: testLogger()})

	result, err := emailService.GenerateEmail(context.Background(), 5, "shipping note", "", false)
	assert.NoError(t, err)
	assert.Equal(t, "Way of Glory - Order Update", result.Subject)
	assert.Equal(t, "Thanks for your order, it ships tomorrow.", result.Content)
}

func TestEmailService_SendTemplate(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	orderRepo.orders[5] = &models.Order{
		ID: 5, FirstName: "Joe", LastName: "Miller", Email: "joe@example.com",
		TotalAmount: models.NewMoney(514.50),
	}
	logRepo := &fakeEmailLogRepo{}

	emailService := service.NewEmailService(testLogger(), orderRepo, logRepo, &stubCompletions{}, service.LogMailer{Log: testLogger()})

	entry, err := emailService.SendTemplate(context.Background(), 5, "payment_reminder")
	assert.NoError(t, err)
	assert.Equal(t, "Payment Reminder for Your Way of Glory Order", entry.Subject)
	assert.Contains(t, entry.Content, "Joe Miller")
	assert.Contains(t, entry.Content, "$514.50")
	assert.Len(t, logRepo.logs, 1)

	_, err = emailService.SendTemplate(context.Background(), 5, "marketing_blast")
	assert.Error(t, err, "unknown templates must be rejected")

	logs, err := emailService.EmailLogs(context.Background(), 5)
	assert.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Equal(t, "payment_reminder", logs[0].TemplateID)
}
