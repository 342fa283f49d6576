package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"
	"tokoadmin/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockShipmentRepository is a mock implementation of repositories.ShipmentRepository
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) GetAll(ctx context.Context) ([]models.Shipment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) GetByID(ctx context.Context, id uint) (*models.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) Create(ctx context.Context, shipment *models.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockShipmentRepository) UpdateStatus(ctx context.Context, id uint, status models.ShipmentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockShipmentRepository) DeleteByProductID(ctx context.Context, productID uint) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func TestParseStatus(t *testing.T) {
	st, err := services.ParseStatus("", true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, st)

	_, err = services.ParseStatus("", false)
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	_, err = services.ParseStatus("lost", true)
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	st, err = services.ParseStatus("terkirim", false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTerkirim, st)
}

func TestShippingService_GetAllShipmentsBackfillsTimestamps(t *testing.T) {
	mockRepo := new(MockShipmentRepository)
	service := services.NewShippingService(mockRepo, nil, nopLogger)

	mockRepo.On("GetAll", mock.Anything).Return([]models.Shipment{{ID: 1, ProductID: 2, Status: models.StatusPending}}, nil)

	shipments, err := service.GetAllShipments(context.Background())
	require.NoError(t, err)
	require.Len(t, shipments, 1)
	assert.NotNil(t, shipments[0].CreatedAt)
	assert.NotNil(t, shipments[0].UpdatedAt)
}

func TestShippingService_CreateShipment(t *testing.T) {
	mockRepo := new(MockShipmentRepository)
	pub := new(MockPublisher)
	service := services.NewShippingService(mockRepo, pub, nopLogger)

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Shipment) bool {
		return s.ProductID == 2 && s.Address == "Jl. Merdeka 1" && s.Status == models.StatusPending
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Shipment).ID = 11
	}).Return(nil).Once()
	pub.On("Publish", mock.Anything, services.EventShipmentCreated, mock.Anything).Return(nil).Once()

	shipment, err := service.CreateShipment(context.Background(), services.ShipmentInput{ProductID: 2, Address: " Jl. Merdeka 1 "})
	require.NoError(t, err)
	assert.Equal(t, uint(11), shipment.ID)
	mockRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestShippingService_CreateShipmentValidation(t *testing.T) {
	mockRepo := new(MockShipmentRepository)
	service := services.NewShippingService(mockRepo, nil, nopLogger)
	ctx := context.Background()

	_, err := service.CreateShipment(ctx, services.ShipmentInput{Address: "x"})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = service.CreateShipment(ctx, services.ShipmentInput{ProductID: 1, Address: "  "})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = service.CreateShipment(ctx, services.ShipmentInput{ProductID: 1, Address: "x", Status: "lost"})
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestShippingService_UpdateShipmentStatus(t *testing.T) {
	mockRepo := new(MockShipmentRepository)
	pub := new(MockPublisher)
	service := services.NewShippingService(mockRepo, pub, nopLogger)
	ctx := context.Background()

	mockRepo.On("UpdateStatus", ctx, uint(5), models.StatusDikirim).Return(nil).Once()
	mockRepo.On("GetByID", ctx, uint(5)).Return(&models.Shipment{ID: 5, ProductID: 2, Status: models.StatusDikirim}, nil).Once()
	pub.On("Publish", ctx, services.EventShipmentStatusUpdated, mock.MatchedBy(func(body []byte) bool {
		var evt services.Event
		var p services.ShipmentEventPayload
		return json.Unmarshal(body, &evt) == nil && json.Unmarshal(evt.Payload, &p) == nil &&
			p.ShipmentID == 5 && p.ProductID == 2 && p.Status == "dikirim"
	})).Return(nil).Once()

	shipment, err := service.UpdateShipmentStatus(ctx, 5, "dikirim")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDikirim, shipment.Status)
	assert.NotNil(t, shipment.UpdatedAt)
	mockRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestShippingService_UpdateShipmentStatusErrors(t *testing.T) {
	mockRepo := new(MockShipmentRepository)
	service := services.NewShippingService(mockRepo, nil, nopLogger)
	ctx := context.Background()

	_, err := service.UpdateShipmentStatus(ctx, 5, "lost")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)

	mockRepo.On("UpdateStatus", ctx, uint(99), models.StatusTerkirim).Return(apperrors.NotFound("Shipment not found")).Once()
	_, err = service.UpdateShipmentStatus(ctx, 99, "terkirim")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestShippingService_HandleProductDeletedEvent(t *testing.T) {
	mockRepo := new(MockShipmentRepository)
	service := services.NewShippingService(mockRepo, nil, nopLogger)

	evt, err := services.NewEvent(services.EventProductDeleted, services.ProductDeletedPayload{ProductID: 8})
	require.NoError(t, err)
	body, err := json.Marshal(evt)
	require.NoError(t, err)

	mockRepo.On("DeleteByProductID", mock.Anything, uint(8)).Return(int64(3), nil).Once()

	require.NoError(t, service.HandleEvent(context.Background(), body))
	mockRepo.AssertExpectations(t)
}

func TestShippingService_HandleEventIgnoresUnknownAndRejectsGarbage(t *testing.T) {
	mockRepo := new(MockShipmentRepository)
	service := services.NewShippingService(mockRepo, nil, nopLogger)

	evt, err := services.NewEvent(services.EventShipmentCreated, services.ShipmentEventPayload{ShipmentID: 1})
	require.NoError(t, err)
	body, err := json.Marshal(evt)
	require.NoError(t, err)

	assert.NoError(t, service.HandleEvent(context.Background(), body))
	assert.Error(t, service.HandleEvent(context.Background(), []byte("not json")))
	mockRepo.AssertNotCalled(t, "DeleteByProductID", mock.Anything, mock.Anything)
}
