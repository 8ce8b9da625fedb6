package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go-commerce-core/internal/availability"
	"go-commerce-core/internal/config"
	"go-commerce-core/internal/model"
	"go-commerce-core/internal/repository"
	"go-commerce-core/pkg/database"

	"github.com/MonkyMars/gecho"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordedEvent struct {
	Name string
	Data interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Name: event, Data: data})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name)
	}
	return out
}

type testEnv struct {
	ctx    context.Context
	db     *gorm.DB
	cfg    config.OrderConfig
	events *recordingPublisher

	products    repository.ProductRepository
	carts       repository.CartRepository
	orders      repository.OrderRepository
	statuses    repository.StatusRepository
	users       repository.UserRepository
	assignments repository.AssignmentRepository
	rules       repository.AvailabilityRepository

	productSvc      ProductService
	cartSvc         CartService
	orderSvc        OrderService
	statusSvc       StatusService
	assignmentSvc   AssignmentService
	availabilitySvc AvailabilityService
	dashboardSvc    DashboardService
}

// openTestDB opens a file-backed sqlite database. A single connection makes
// write transactions run one at a time, standing in for Postgres row locks.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repository.AutoMigrate(db))
	return db
}

func newTestEnv(t *testing.T, opts ...func(*config.OrderConfig)) *testEnv {
	t.Helper()
	db := openTestDB(t)
	log := gecho.NewDefaultLogger()

	cfg := config.OrderConfig{
		NumberPrefix:        "ORD",
		CancelledStatusCode: "cancelled",
		StockPolicy:         config.StockReserve,
		PaymentPolicy:       config.PaymentLenient,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	env := &testEnv{
		ctx:         context.Background(),
		db:          db,
		cfg:         cfg,
		events:      &recordingPublisher{},
		products:    repository.NewProductRepo(db),
		carts:       repository.NewCartRepo(db),
		orders:      repository.NewOrderRepo(db),
		statuses:    repository.NewStatusRepo(db),
		users:       repository.NewUserRepo(db),
		assignments: repository.NewAssignmentRepo(db),
		rules:       repository.NewAvailabilityRepo(db),
	}

	env.availabilitySvc = NewAvailabilityService(env.rules, availability.NewMemoryCache(time.Minute), log)
	env.productSvc = NewProductService(env.products, db, env.events, log)
	env.cartSvc = NewCartService(env.carts, env.products, env.availabilitySvc, db, log)
	env.statusSvc = NewStatusService(env.statuses, db, log)
	env.orderSvc = NewOrderService(env.orders, env.carts, env.products, env.statuses, env.users, db, cfg, env.events, log)
	env.assignmentSvc = NewAssignmentService(env.assignments, env.orders, env.statuses, env.users, db, env.events, log)
	env.dashboardSvc = NewDashboardService(env.orders)
	return env
}

func (e *testEnv) seedStatuses(t *testing.T) {
	t.Helper()
	require.NoError(t, e.statuses.SeedDefaults(e.ctx))
}

func (e *testEnv) status(t *testing.T, code string) *model.OrderStatus {
	t.Helper()
	s, err := e.statuses.FindByCode(e.ctx, code)
	require.NoError(t, err)
	return s
}

func (e *testEnv) createUser(t *testing.T, staff bool) *model.User {
	t.Helper()
	id := uuid.New()
	u := &model.User{
		Email:       fmt.Sprintf("%s@example.com", id.String()[:8]),
		FullName:    "User " + id.String()[:8],
		PhoneNumber: "+31600000000",
		IsStaff:     staff,
		IsActive:    true,
	}
	u.ID = id
	require.NoError(t, e.users.Create(e.ctx, u))
	return u
}

// createProduct stores a finalized, visible product.
func (e *testEnv) createProduct(t *testing.T, name string, price int64, quantity int) *model.Product {
	t.Helper()
	p := &model.Product{
		Article:   "ART-" + uuid.NewString()[:8],
		Slug:      "slug-" + uuid.NewString()[:8],
		Name:      name,
		Price:     decimal.NewFromInt(price),
		Quantity:  quantity,
		IsVisible: true,
		IsDraft:   false,
	}
	require.NoError(t, e.products.Create(e.ctx, p))
	return p
}

func (e *testEnv) reloadProduct(t *testing.T, id uint) *model.Product {
	t.Helper()
	p, err := e.products.FindByID(e.ctx, id)
	require.NoError(t, err)
	return p
}

func (e *testEnv) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

var pickup = DeliveryDetails{DeliveryMethod: DeliveryPickup}
