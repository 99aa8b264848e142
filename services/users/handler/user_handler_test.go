package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"auction-marketplace/internal/marketerrors"
	"auction-marketplace/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateUserHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		mockSetup      func(m *MockUserServiceInterface)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "created",
			body: `{"username":"kiwibuyer","email":"buyer@example.com","location":"Nelson","bio":"Collector"}`,
			mockSetup: func(m *MockUserServiceInterface) {
				m.EXPECT().CreateUser(gomock.Any(), models.User{Username: "kiwibuyer", Email: "buyer@example.com", Location: "Nelson", Bio: "Collector"}).
					DoAndReturn(func(_ any, u models.User) (models.User, error) {
						u.ID = primitive.NewObjectID()
						return u, nil
					})
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "user created successfully",
		},
		{
			name:           "bad_email",
			body:           `{"username":"kiwibuyer","email":"not-an-email","location":"Nelson"}`,
			mockSetup:      func(m *MockUserServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "taken",
			body: `{"username":"kiwibuyer","email":"buyer@example.com","location":"Nelson"}`,
			mockSetup: func(m *MockUserServiceInterface) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(models.User{}, fmt.Errorf("service: %w", marketerrors.ErrUserExists))
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "username or email already registered",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			mockService := NewMockUserServiceInterface(ctrl)
			tc.mockSetup(mockService)

			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.POST("/api/users", NewUserHandler(mockService).CreateUserHandler)

			req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Equal(t, tc.expectedMsg, resp["message"])
		})
	}
}

func TestGetUserHandler(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()
	ctrl := gomock.NewController(t)
	mockService := NewMockUserServiceInterface(ctrl)
	mockService.EXPECT().GetUser(gomock.Any(), id.Hex()).Return(models.User{ID: id, Username: "kiwiseller"}, nil)
	mockService.EXPECT().GetUser(gomock.Any(), "nope").Return(models.User{}, fmt.Errorf("service: %w", marketerrors.ErrInvalidID))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/users/:id", NewUserHandler(mockService).GetUserHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/"+id.Hex(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"username":"kiwiseller"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/nope", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}
