package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bartab_backend/internal/models"
	"bartab_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderService struct {
	deleteErr        error
	deletedOrderID   int64
	deletedByStaffID int64
}

func (s *stubOrderService) CreateOrder(services.CreateOrderRequest) (*models.Order, error) {
	return nil, nil
}

func (s *stubOrderService) GetOrders(models.OrderFilters) ([]models.Order, int, error) {
	return nil, 0, nil
}

func (s *stubOrderService) GetOrderByID(int64) (*models.Order, error) {
	return nil, nil
}

func (s *stubOrderService) DeleteOrder(orderID int64, staffID int64) error {
	s.deletedOrderID = orderID
	s.deletedByStaffID = staffID
	return s.deleteErr
}

func newOrderTestRouter(svc services.OrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("staffID", int64(7))
	})
	handler := NewOrderHandler(svc)
	engine.DELETE("/orders/:id", handler.DeleteOrder)
	return engine
}

func TestDeleteOrderRespondsWithSuccess(t *testing.T) {
	svc := &stubOrderService{}
	engine := newOrderTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/orders/5", nil)
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Order reversed successfully", body["message"])

	assert.Equal(t, int64(5), svc.deletedOrderID)
	assert.Equal(t, int64(7), svc.deletedByStaffID)
}

func TestDeleteOrderNotFoundResponds404(t *testing.T) {
	svc := &stubOrderService{deleteErr: services.ErrOrderNotFound}
	engine := newOrderTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/orders/99", nil)
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestDeleteOrderRejectsBadID(t *testing.T) {
	svc := &stubOrderService{}
	engine := newOrderTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/orders/not-a-number", nil)
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Zero(t, svc.deletedOrderID)
}
