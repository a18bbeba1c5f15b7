package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"meedi8/backend/internal/api/handler"
	"meedi8/backend/internal/models"
	"meedi8/backend/internal/roomflow"
)

// TestSignupStoresTopics verifies the screening topics from the signup
// request land on the persisted account.
func TestSignupStoresTopics(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	var saved *models.User
	storageMock.On("GetUserByEmail", "ana@example.com").Return(nil, assert.AnError)
	storageMock.On("SaveUser", mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { saved = args.Get(0).(*models.User) }).
		Return(nil)

	h := handler.NewHandler(nil, storageMock, roomflow.NewService(storageMock), testSecret)
	r := gin.New()
	r.POST("/auth/signup", h.Signup)

	body, _ := json.Marshal(map[string]interface{}{
		"email":    "ana@example.com",
		"password": "long-enough",
		"name":     "Ana",
		"topics":   []string{"chores", "money"},
	})

	// Act
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewReader(body)))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	if assert.NotNil(t, saved) {
		assert.Equal(t, pq.StringArray{"chores", "money"}, saved.Topics)
	}
	var resp struct {
		Token string `json:"token"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

// TestProfileReturnsTopics verifies the account view exposes the topics
// and never the password hash.
func TestProfileReturnsTopics(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetUserByID", "user-1").Return(&models.User{
		ID:           "user-1",
		Email:        "ana@example.com",
		Name:         "Ana",
		PasswordHash: "hash-never-leaks",
		Topics:       pq.StringArray{"chores"},
	}, nil)

	h := handler.NewHandler(nil, storageMock, roomflow.NewService(storageMock), testSecret)
	r := gin.New()
	r.GET("/auth/me", func(c *gin.Context) { c.Set("userID", "user-1"); h.Profile(c) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Email  string   `json:"email"`
		Name   string   `json:"name"`
		Topics []string `json:"topics"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "ana@example.com", view.Email)
	assert.Equal(t, []string{"chores"}, view.Topics)
	assert.NotContains(t, w.Body.String(), "hash-never-leaks")
}
