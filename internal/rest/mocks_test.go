package rest

import (
	"context"
	"errors"
	"io"

	"suitup-be/internal/auth"
	"suitup-be/internal/brand"
	"suitup-be/internal/chatbot"
	"suitup-be/internal/order"
	"suitup-be/internal/product"
	"suitup-be/internal/tryon"
	"suitup-be/internal/user"

	"github.com/stretchr/testify/mock"
)

type MockUsers struct{ mock.Mock }

func (m *MockUsers) Register(ctx context.Context, input user.RegisterInput) (*user.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUsers) Login(ctx context.Context, input user.LoginInput) (string, *user.User, error) {
	args := m.Called(ctx, input)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}

func (m *MockUsers) GetByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUsers) Current(ctx context.Context) (*user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUsers) RequireAdmin(ctx context.Context) (*user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockBrands struct{ mock.Mock }

func (m *MockBrands) List(ctx context.Context) ([]*brand.Brand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*brand.Brand), args.Error(1)
}

func (m *MockBrands) Get(ctx context.Context, id string) (*brand.Brand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*brand.Brand), args.Error(1)
}

func (m *MockBrands) FindByName(ctx context.Context, name string) (*brand.Brand, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*brand.Brand), args.Error(1)
}

func (m *MockBrands) Create(ctx context.Context, input brand.CreateInput) (*brand.Brand, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*brand.Brand), args.Error(1)
}

func (m *MockBrands) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockProducts struct{ mock.Mock }

func (m *MockProducts) product(args mock.Arguments) (*product.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProducts) List(ctx context.Context) ([]*product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProducts) ListByBrand(ctx context.Context, brandID string) (*brand.Brand, []*product.Product, error) {
	args := m.Called(ctx, brandID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*brand.Brand), args.Get(1).([]*product.Product), args.Error(2)
}

func (m *MockProducts) Get(ctx context.Context, id string) (*product.Product, error) {
	return m.product(m.Called(ctx, id))
}

func (m *MockProducts) Create(ctx context.Context, input product.CreateInput) (*product.Product, error) {
	return m.product(m.Called(ctx, input))
}

func (m *MockProducts) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProducts) SetStock(ctx context.Context, id string, stock int) (*product.Product, error) {
	return m.product(m.Called(ctx, id, stock))
}

func (m *MockProducts) Buy(ctx context.Context, id string) (*product.Product, error) {
	return m.product(m.Called(ctx, id))
}

func (m *MockProducts) Recommend(ctx context.Context, opts product.SearchOptions) ([]*product.Product, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProducts) Details(ctx context.Context, key string) (*product.Product, error) {
	return m.product(m.Called(ctx, key))
}

func (m *MockProducts) Cheapest(ctx context.Context, brandName string) (*product.Product, error) {
	return m.product(m.Called(ctx, brandName))
}

func (m *MockProducts) MostExpensive(ctx context.Context, brandName string) (*product.Product, error) {
	return m.product(m.Called(ctx, brandName))
}

type MockOrders struct{ mock.Mock }

func (m *MockOrders) order(args mock.Arguments) (*order.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrders) orders(args mock.Arguments) ([]*order.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrders) PlaceOrder(ctx context.Context, input order.PlaceOrderInput) (*order.Order, error) {
	return m.order(m.Called(ctx, input))
}

func (m *MockOrders) ListMine(ctx context.Context) ([]*order.Order, error) {
	return m.orders(m.Called(ctx))
}

func (m *MockOrders) Get(ctx context.Context, id string) (*order.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *MockOrders) ListAll(ctx context.Context) ([]*order.Order, error) {
	return m.orders(m.Called(ctx))
}

func (m *MockOrders) UpdateStatus(ctx context.Context, input order.UpdateStatusInput) (*order.Order, error) {
	return m.order(m.Called(ctx, input))
}

type MockUploader struct{ mock.Mock }

func (m *MockUploader) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	data, _ := io.ReadAll(file)
	args := m.Called(ctx, filename, string(data))
	return args.String(0), args.Error(1)
}

type MockChatbot struct{ mock.Mock }

func (m *MockChatbot) Reply(ctx context.Context, input chatbot.ChatInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

// Stream emits the configured deltas before returning the configured error.
func (m *MockChatbot) Stream(ctx context.Context, input chatbot.ChatInput, onDelta func(string) error) error {
	args := m.Called(ctx, input)
	for _, d := range args.Get(0).([]string) {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return args.Error(1)
}

type MockTryOn struct{ mock.Mock }

func (m *MockTryOn) Run(ctx context.Context, input tryon.Input) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

// fakeTokens accepts "<userID>" bearer tokens as customer sessions.
type fakeTokens struct{}

func (fakeTokens) Parse(token string) (*auth.Identity, error) {
	if token == "bad" {
		return nil, errors.New("invalid token")
	}
	return &auth.Identity{UserID: token, Role: "customer"}, nil
}
