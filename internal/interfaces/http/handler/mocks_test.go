package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	articleapp "github.com/mpvestiario/backend/internal/application/article"
	ledgerapp "github.com/mpvestiario/backend/internal/application/ledger"
	personnelapp "github.com/mpvestiario/backend/internal/application/personnel"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/mpvestiario/backend/internal/interfaces/http/dto"
	"github.com/mpvestiario/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func newTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope and, when data is non-nil, its data field
func decode(t *testing.T, w *httptest.ResponseRecorder, data any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.Response
}

// MockAssignmentService implements AssignmentService
type MockAssignmentService struct {
	mock.Mock
}

func (m *MockAssignmentService) CommitAssign(ctx context.Context, req ledgerapp.CommitAssignRequest) (*ledgerapp.CommitResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.CommitResponse), args.Error(1)
}

func (m *MockAssignmentService) CommitEdit(ctx context.Context, id uuid.UUID, req ledgerapp.CommitEditRequest) (*ledgerapp.CommitResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.CommitResponse), args.Error(1)
}

func (m *MockAssignmentService) CommitDelete(ctx context.Context, id uuid.UUID) (*ledgerapp.DeleteResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.DeleteResponse), args.Error(1)
}

func (m *MockAssignmentService) GetAssignment(ctx context.Context, id uuid.UUID) (*ledgerapp.AssignmentResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.AssignmentResponse), args.Error(1)
}

func (m *MockAssignmentService) ListHistory(ctx context.Context, query ledgerapp.HistoryQuery) ([]ledgerapp.HistoryEntryResponse, int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]ledgerapp.HistoryEntryResponse), args.Get(1).(int64), args.Error(2)
}

// MockArticleService implements ArticleService
type MockArticleService struct {
	mock.Mock
}

func (m *MockArticleService) Create(ctx context.Context, req articleapp.CreateArticleRequest) (*articleapp.ArticleResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*articleapp.ArticleResponse), args.Error(1)
}

func (m *MockArticleService) GetByID(ctx context.Context, id uuid.UUID) (*articleapp.ArticleResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*articleapp.ArticleResponse), args.Error(1)
}

func (m *MockArticleService) LookupByCode(ctx context.Context, code string) (*articleapp.ArticleResponse, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*articleapp.ArticleResponse), args.Error(1)
}

func (m *MockArticleService) List(ctx context.Context, filter articleapp.ArticleListFilter) ([]articleapp.ArticleResponse, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]articleapp.ArticleResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockArticleService) Groups(ctx context.Context, filter articleapp.ArticleListFilter) ([]articleapp.ArticleGroupResponse, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]articleapp.ArticleGroupResponse), args.Error(1)
}

func (m *MockArticleService) Update(ctx context.Context, id uuid.UUID, req articleapp.UpdateArticleRequest) (*articleapp.ArticleResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*articleapp.ArticleResponse), args.Error(1)
}

func (m *MockArticleService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockArticleService) UploadPhoto(ctx context.Context, id uuid.UUID, contentType string, data []byte) (*articleapp.PhotoUploadResponse, error) {
	args := m.Called(ctx, id, contentType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*articleapp.PhotoUploadResponse), args.Error(1)
}

// MockStockService implements StockService
type MockStockService struct {
	mock.Mock
}

func (m *MockStockService) AdjustStock(ctx context.Context, articleID uuid.UUID, req ledgerapp.AdjustStockRequest) (*ledgerapp.AdjustStockResponse, error) {
	args := m.Called(ctx, articleID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.AdjustStockResponse), args.Error(1)
}

func (m *MockStockService) ListMovements(ctx context.Context, articleID uuid.UUID, filter shared.Filter) ([]ledgerapp.StockMovementResponse, int64, error) {
	args := m.Called(ctx, articleID, filter)
	return args.Get(0).([]ledgerapp.StockMovementResponse), args.Get(1).(int64), args.Error(2)
}

// MockPersonService implements PersonService
type MockPersonService struct {
	mock.Mock
}

func (m *MockPersonService) person(args mock.Arguments) (*personnelapp.PersonResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*personnelapp.PersonResponse), args.Error(1)
}

func (m *MockPersonService) Create(ctx context.Context, req personnelapp.PersonRequest) (*personnelapp.PersonResponse, error) {
	return m.person(m.Called(ctx, req))
}

func (m *MockPersonService) GetByID(ctx context.Context, id uuid.UUID) (*personnelapp.PersonResponse, error) {
	return m.person(m.Called(ctx, id))
}

func (m *MockPersonService) List(ctx context.Context, filter personnelapp.PersonListFilter) ([]personnelapp.PersonResponse, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]personnelapp.PersonResponse), args.Error(1)
}

func (m *MockPersonService) Update(ctx context.Context, id uuid.UUID, req personnelapp.PersonRequest) (*personnelapp.PersonResponse, error) {
	return m.person(m.Called(ctx, id, req))
}

func (m *MockPersonService) Activate(ctx context.Context, id uuid.UUID) (*personnelapp.PersonResponse, error) {
	return m.person(m.Called(ctx, id))
}

func (m *MockPersonService) Deactivate(ctx context.Context, id uuid.UUID) (*personnelapp.PersonResponse, error) {
	return m.person(m.Called(ctx, id))
}

func (m *MockPersonService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
