package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/blob"
	apperrors "storefront/internal/errors"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/service"
)

type testValidator struct {
	v *validator.Validate
}

func (tv testValidator) Validate(i interface{}) error {
	return tv.v.Struct(i)
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = testValidator{v: validator.New()}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func signIn(c echo.Context, userID uuid.UUID) {
	c.Set(middleware.ClaimsKey, &auth.Claims{UserID: userID})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthHandler_Login(t *testing.T) {
	user := &model.User{ID: uuid.New(), Name: "X", Email: "x@example.com", Role: model.RoleAdmin}

	tests := []struct {
		name         string
		token        string
		user         *model.User
		err          error
		expectedCode int
		success      bool
		message      string
	}{
		{"success", "T", user, nil, http.StatusOK, true, "login successfully"},
		{"missing credentials", "", nil, apperrors.ErrInvalidCredentials, http.StatusNotFound, false, "Invalid email or password"},
		{"unknown email", "", nil, apperrors.ErrEmailNotRegistered, http.StatusNotFound, false, "Email is not registered"},
		{"wrong password", "", nil, apperrors.ErrInvalidPassword, http.StatusOK, false, "Invalid Password"},
		{"store failure", "", nil, assert.AnError, http.StatusInternalServerError, false, "Error in login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			svc.On("Login", mock.Anything, "x@example.com", "pw").Return(tt.token, tt.user, tt.err)
			h := NewAuthHandler(svc, zap.NewNop())

			c, rec := newJSONContext(http.MethodPost, "/api/v1/auth/login", `{"email":"x@example.com","password":"pw"}`)
			require.NoError(t, h.Login(c))

			assert.Equal(t, tt.expectedCode, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.success, body["success"])
			assert.Equal(t, tt.message, body["message"])
			if tt.success {
				assert.Equal(t, "T", body["token"])
				sessionUser := body["user"].(map[string]interface{})
				assert.Equal(t, "X", sessionUser["name"])
				assert.Equal(t, user.ID.String(), sessionUser["_id"])
				assert.EqualValues(t, 1, sessionUser["role"])
			}
		})
	}
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("address as plain string", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool {
			return in.Address.Line1 == "1 Main St" && in.Name == "Jane"
		})).Return(&model.User{Name: "Jane"}, nil)
		h := NewAuthHandler(svc, zap.NewNop())

		c, rec := newJSONContext(http.MethodPost, "/api/v1/auth/register",
			`{"name":"Jane","email":"j@e.com","password":"pw","phone":"1","address":"1 Main St","answer":"a"}`)
		require.NoError(t, h.Register(c))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "User Register Successfully", decode(t, rec)["message"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Register", mock.Anything, mock.Anything).Return(nil, apperrors.ErrUserAlreadyExists)
		h := NewAuthHandler(svc, zap.NewNop())

		c, rec := newJSONContext(http.MethodPost, "/api/v1/auth/register", `{"name":"Jane"}`)
		require.NoError(t, h.Register(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Already registered, please login", body["message"])
	})

	t.Run("missing field", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Register", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewValidationError("email", "Email is Required", http.StatusBadRequest))
		h := NewAuthHandler(svc, zap.NewNop())

		c, rec := newJSONContext(http.MethodPost, "/api/v1/auth/register", `{"name":"Jane"}`)
		require.NoError(t, h.Register(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email is Required", decode(t, rec)["message"])
	})
}

func TestAuthHandler_UpdateProfileShortPassword(t *testing.T) {
	userID := uuid.New()
	svc := new(MockAuthService)
	svc.On("UpdateProfile", mock.Anything, userID, mock.Anything).
		Return(nil, apperrors.NewValidationError("password", "Password is required and 6 character long", http.StatusBadRequest))
	h := NewAuthHandler(svc, zap.NewNop())

	c, rec := newJSONContext(http.MethodPut, "/api/v1/auth/profile", `{"password":"123"}`)
	signIn(c, userID)
	require.NoError(t, h.UpdateProfile(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Password is required and 6 character long", decode(t, rec)["error"])
}

func TestOrderHandler_SetStatus(t *testing.T) {
	orderID := uuid.New()

	tests := []struct {
		name         string
		param        string
		body         string
		setupMock    func(*MockOrderService)
		expectedCode int
	}{
		{
			name:  "cancel to shipped",
			param: orderID.String(),
			body:  `{"status":"Shipped"}`,
			setupMock: func(m *MockOrderService) {
				m.On("SetStatus", mock.Anything, orderID, "Shipped").
					Return(&model.Order{ID: orderID, Status: model.OrderStatusShipped}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:  "unknown status",
			param: orderID.String(),
			body:  `{"status":"Lost"}`,
			setupMock: func(m *MockOrderService) {
				m.On("SetStatus", mock.Anything, orderID, "Lost").Return(nil, apperrors.ErrInvalidStatus)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "missing status",
			param:        orderID.String(),
			body:         `{}`,
			setupMock:    func(m *MockOrderService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "bad id",
			param:        "nope",
			body:         `{"status":"Shipped"}`,
			setupMock:    func(m *MockOrderService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:  "database failure",
			param: orderID.String(),
			body:  `{"status":"Shipped"}`,
			setupMock: func(m *MockOrderService) {
				m.On("SetStatus", mock.Anything, orderID, "Shipped").Return(nil, assert.AnError)
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			tt.setupMock(svc)
			h := NewOrderHandler(svc, zap.NewNop())

			c, rec := newJSONContext(http.MethodPut, "/", tt.body)
			c.SetParamNames("orderId")
			c.SetParamValues(tt.param)
			require.NoError(t, h.SetStatus(c))

			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedCode == http.StatusOK {
				body := decode(t, rec)
				assert.Equal(t, "Shipped", body["status"])
				assert.Equal(t, orderID.String(), body["_id"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Orders(t *testing.T) {
	buyerID := uuid.New()
	svc := new(MockOrderService)
	svc.On("BuyerOrders", mock.Anything, buyerID).
		Return([]model.Order{{BuyerID: buyerID, Buyer: &model.User{ID: buyerID, Name: "X"}}}, nil)
	h := NewOrderHandler(svc, zap.NewNop())

	c, rec := newJSONContext(http.MethodGet, "/api/v1/auth/orders", "")
	signIn(c, buyerID)
	require.NoError(t, h.Orders(c))

	require.Equal(t, http.StatusOK, rec.Code)
	var orders []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "X", orders[0]["buyer"].(map[string]interface{})["name"])
}

func TestCategoryHandler_Create(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		message      string
	}{
		{"created", nil, http.StatusCreated, "new category created"},
		{"exists", apperrors.ErrCategoryExists, http.StatusOK, "Category Already Exists"},
		{"name missing", apperrors.NewValidationError("name", "Name is required", http.StatusUnauthorized), http.StatusUnauthorized, "Name is required"},
		{"failure", assert.AnError, http.StatusInternalServerError, "Error in Category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCategoryService)
			svc.On("Create", mock.Anything, "Electronics").
				Return(&model.Category{Name: "Electronics", Slug: "electronics"}, tt.err)
			h := NewCategoryHandler(svc, zap.NewNop())

			c, rec := newJSONContext(http.MethodPost, "/", `{"name":"Electronics"}`)
			require.NoError(t, h.Create(c))

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec)["message"])
		})
	}
}

func multipartProductRequest(t *testing.T, fields map[string]string, photo []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if photo != nil {
		part, err := w.CreateFormFile("photo", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/product/create-product", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestProductHandler_CreateParsesMultipart(t *testing.T) {
	svc := new(MockProductService)
	var captured service.ProductInput
	svc.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(service.ProductInput) }).
		Return(&model.Product{Name: "Lamp"}, nil)
	h := NewProductHandler(svc, zap.NewNop())

	req := multipartProductRequest(t, map[string]string{
		"name": "Lamp", "description": "Bright", "price": "19.99",
		"category": uuid.NewString(), "quantity": "3", "shipping": "1",
	}, []byte("png-bytes"))
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Product Created Successfully", decode(t, rec)["message"])
	assert.Equal(t, "Lamp", captured.Name)
	assert.Equal(t, "19.99", captured.Price)
	require.NotNil(t, captured.Photo)
	assert.Equal(t, int64(len("png-bytes")), captured.Photo.Size)

	rc, err := captured.Photo.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestProductHandler_CreateRequiredField(t *testing.T) {
	svc := new(MockProductService)
	svc.On("Create", mock.Anything, mock.Anything).Return(nil, apperrors.Required("Name"))
	h := NewProductHandler(svc, zap.NewNop())

	req := multipartProductRequest(t, map[string]string{"description": "Bright"}, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Create(echo.New().NewContext(req, rec)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Name is Required", decode(t, rec)["error"])
}

func TestProductHandler_Photo(t *testing.T) {
	withPhoto, withoutPhoto := uuid.New(), uuid.New()
	svc := new(MockProductService)
	svc.On("Photo", mock.Anything, withPhoto).Return(&blob.Blob{Data: []byte("jpeg"), ContentType: "image/jpeg"}, nil)
	svc.On("Photo", mock.Anything, withoutPhoto).Return(nil, apperrors.ErrPhotoNotFound)
	h := NewProductHandler(svc, zap.NewNop())

	c, rec := newJSONContext(http.MethodGet, "/", "")
	c.SetParamNames("pid")
	c.SetParamValues(withPhoto.String())
	require.NoError(t, h.Photo(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "jpeg", rec.Body.String())

	c, rec = newJSONContext(http.MethodGet, "/", "")
	c.SetParamNames("pid")
	c.SetParamValues(withoutPhoto.String())
	require.NoError(t, h.Photo(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductHandler_ListAndSearch(t *testing.T) {
	svc := new(MockProductService)
	svc.On("Latest", mock.Anything).Return([]model.Product{{Name: "A"}, {Name: "B"}}, nil)
	svc.On("Search", mock.Anything, "lamp").Return([]model.Product{{Name: "Lamp"}}, nil)
	svc.On("Page", mock.Anything, 2).Return([]model.Product{}, nil)
	h := NewProductHandler(svc, zap.NewNop())

	c, rec := newJSONContext(http.MethodGet, "/", "")
	require.NoError(t, h.List(c))
	body := decode(t, rec)
	assert.EqualValues(t, 2, body["counTotal"])
	assert.Equal(t, "AllProducts", body["message"])

	c, rec = newJSONContext(http.MethodGet, "/", "")
	c.SetParamNames("keyword")
	c.SetParamValues("lamp")
	require.NoError(t, h.Search(c))
	var found []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	assert.Len(t, found, 1)

	c, rec = newJSONContext(http.MethodGet, "/", "")
	c.SetParamNames("page")
	c.SetParamValues("2")
	require.NoError(t, h.Page(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newJSONContext(http.MethodGet, "/", "")
	c.SetParamNames("page")
	c.SetParamValues("two")
	require.NoError(t, h.Page(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductHandler_Filter(t *testing.T) {
	catID := uuid.New()
	svc := new(MockProductService)
	svc.On("Filter", mock.Anything, mock.MatchedBy(func(in service.FilterInput) bool {
		return len(in.Checked) == 1 && in.Checked[0] == catID.String() &&
			len(in.Radio) == 2 && in.Radio[1].Equal(decimal.NewFromInt(39))
	})).Return([]model.Product{}, nil)
	h := NewProductHandler(svc, zap.NewNop())

	c, rec := newJSONContext(http.MethodPost, "/", `{"checked":["`+catID.String()+`"],"radio":[20,39]}`)
	require.NoError(t, h.Filter(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
}

func TestPaymentHandler_Pay(t *testing.T) {
	buyerID := uuid.New()
	body := `{"nonce":"fake-nonce","cart":[{"_id":"` + uuid.NewString() + `","name":"A","price":100},{"_id":"` +
		uuid.NewString() + `","name":"B","price":250}]}`

	tests := []struct {
		name         string
		body         string
		err          error
		expectedCode int
	}{
		{"paid", body, nil, http.StatusOK},
		{"declined", body, &payment.Error{Message: "Insufficient Funds"}, http.StatusInternalServerError},
		{"empty cart", `{"nonce":"fake-nonce","cart":[]}`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCheckoutService)
			svc.On("Pay", mock.Anything, buyerID, "fake-nonce", mock.MatchedBy(func(cart []model.CartItem) bool {
				return len(cart) == 2
			})).Return(&model.Order{}, tt.err)
			h := NewPaymentHandler(svc, zap.NewNop())

			c, rec := newJSONContext(http.MethodPost, "/", tt.body)
			signIn(c, buyerID)
			require.NoError(t, h.Pay(c))

			assert.Equal(t, tt.expectedCode, rec.Code)
			switch tt.expectedCode {
			case http.StatusOK:
				assert.Equal(t, true, decode(t, rec)["ok"])
			case http.StatusInternalServerError:
				assert.Equal(t, "Insufficient Funds", decode(t, rec)["message"])
			}
		})
	}
}

func TestPaymentHandler_Token(t *testing.T) {
	svc := new(MockCheckoutService)
	svc.On("ClientToken", mock.Anything).Return("client-token", nil)
	h := NewPaymentHandler(svc, zap.NewNop())

	c, rec := newJSONContext(http.MethodGet, "/", "")
	require.NoError(t, h.Token(c))

	body := decode(t, rec)
	assert.Equal(t, "client-token", body["clientToken"])
	assert.Equal(t, true, body["success"])
}
