package usecase

import (
	"time"

	"github.com/atsukitanaka0922/primeselect/internal/clients"
	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2024, time.March, 1, 15, 30, 0, 0, time.UTC)

const declinedCard = "4000000000000002"

var okCard = domain.PaymentDetails{CardNumber: "4242 4242 4242 4242", CardExpiry: "12/30", CardCVV: "123"}

// harness wires every use case to one memStore.
type harness struct {
	store *memStore
	uow   *memUoW

	products   *memProductRepo
	categories *memCategoryRepo
	stockRepo  *memStockRepo
	orders     *memOrderRepo
	preRepo    *memPreorderRepo
	cartRepo   *memCartRepo
	payRepo    *memPaymentRepo

	stock    StockUseCase
	preorder PreorderUseCase
	cart     CartUseCase
	order    OrderUseCase
	product  ProductUseCase
	category CategoryUseCase
}

func newHarness() *harness {
	s := newMemStore()
	h := &harness{
		store:      s,
		uow:        &memUoW{store: s},
		products:   &memProductRepo{s},
		categories: &memCategoryRepo{s},
		stockRepo:  &memStockRepo{s},
		orders:     &memOrderRepo{s},
		preRepo:    &memPreorderRepo{s},
		cartRepo:   &memCartRepo{s},
		payRepo:    &memPaymentRepo{s},
	}
	logger := testLogger()
	h.stock = NewStockUseCase(h.stockRepo, h.uow, logger)
	h.preorder = NewPreorderUseCase(h.preRepo, h.uow, func() time.Time { return fixedNow }, logger)
	h.cart = NewCartUseCase(h.cartRepo, h.products, h.uow, logger)
	h.product = NewProductUseCase(h.products, h.categories, h.stock, h.uow, logger)
	h.category = NewCategoryUseCase(h.categories, logger)
	h.order = NewOrderUseCase(
		h.orders, h.payRepo, h.products, h.stock, h.preorder, h.cart,
		clients.NewStubPaymentGateway(clients.DefaultDeclinedCards, logger),
		h.uow, logger,
	)
	return h
}

// seedProduct inserts a product directly, bypassing the stock ledger.
func (h *harness) seedProduct(name, price string, stock int) int64 {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	id := h.store.nextID()
	h.store.products[id] = domain.Product{
		ID:    id,
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	return id
}

func (h *harness) seedPreorderProduct(name, price, leadTime string) int64 {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	id := h.store.nextID()
	h.store.products[id] = domain.Product{
		ID:               id,
		Name:             name,
		Price:            decimal.RequireFromString(price),
		IsPreorder:       true,
		PreorderLeadTime: leadTime,
	}
	return id
}

func (h *harness) seedVariation(productID int64, adjustment string, stock int) int64 {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	id := h.store.nextID()
	h.store.variations[id] = domain.ProductVariation{
		ID:              id,
		ProductID:       productID,
		Name:            "size",
		Value:           "L",
		PriceAdjustment: decimal.RequireFromString(adjustment),
		Stock:           stock,
	}
	return id
}

func (h *harness) stockOf(productID int64) int {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return h.store.products[productID].Stock
}

func (h *harness) variationStock(variationID int64) int {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return h.store.variations[variationID].Stock
}

func (h *harness) logsFor(productID int64) []domain.StockLogEntry {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	var out []domain.StockLogEntry
	for _, e := range h.store.stockLogs {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out
}

func (h *harness) counts() (orders, lines, preorders, payments int) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return len(h.store.orders), len(h.store.lines), len(h.store.preorders), len(h.store.payments)
}

func placeInput(userID int64, method domain.PaymentMethod, lines ...OrderLineInput) PlaceOrderInput {
	return PlaceOrderInput{
		UserID:          userID,
		Lines:           lines,
		ShippingAddress: "1-2-3 Shibuya, Tokyo",
		PaymentMethod:   method,
		PaymentDetails:  okCard,
	}
}

func line(productID int64, quantity int) OrderLineInput {
	return OrderLineInput{ProductID: productID, Quantity: quantity}
}
