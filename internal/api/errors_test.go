package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dqdash/internal/entity/dto"
	"dqdash/internal/service"

	"github.com/gin-gonic/gin"
)

func TestErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		status         int
		code           string
		message        string
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "BadRequest",
			status:         http.StatusBadRequest,
			code:           ErrCodeInvalidRequest,
			message:        "无效的请求",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrCodeInvalidRequest,
			expectedMsg:    "无效的请求",
		},
		{
			name:           "NotFound",
			status:         http.StatusNotFound,
			code:           ErrCodeNotFound,
			message:        "数据集不存在",
			expectedStatus: http.StatusNotFound,
			expectedCode:   ErrCodeNotFound,
			expectedMsg:    "数据集不存在",
		},
		{
			name:           "InternalError",
			status:         http.StatusInternalServerError,
			code:           ErrCodeInternalError,
			message:        "服务器内部错误",
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   ErrCodeInternalError,
			expectedMsg:    "服务器内部错误",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			ErrorResponse(c, tt.status, tt.code, tt.message)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var response APIError
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if response.Code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
			}
			if response.Message != tt.expectedMsg {
				t.Errorf("expected message %s, got %s", tt.expectedMsg, response.Message)
			}
			if response.Detail != tt.expectedMsg {
				t.Errorf("expected detail %s, got %s", tt.expectedMsg, response.Detail)
			}
		})
	}
}

func TestUnauthorizedSetsChallenge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")

	if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("expected Bearer challenge, got %q", got)
	}
	if !c.IsAborted() {
		t.Error("expected context to be aborted")
	}
}

func TestRespondErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		err          error
		expectedCode string
		status       int
		message      string
	}{
		{name: "invalid credentials", err: service.ErrInvalidCredentials, status: http.StatusUnauthorized, expectedCode: ErrCodeInvalidCredentials, message: "incorrect email or password"},
		{name: "user disabled", err: service.ErrUserDisabled, status: http.StatusForbidden, expectedCode: ErrCodeUserDisabled, message: "user is inactive"},
		{name: "unauthenticated", err: &service.Error{Kind: service.ErrUnauthenticated, Message: "invalid token"}, status: http.StatusUnauthorized, expectedCode: ErrCodeUnauthorized, message: "invalid token"},
		{name: "forbidden", err: &service.Error{Kind: service.ErrForbidden, Message: "no access to dataset"}, status: http.StatusForbidden, expectedCode: ErrCodeForbidden, message: "no access to dataset"},
		{name: "not found", err: &service.Error{Kind: service.ErrNotFound, Message: "user not found"}, status: http.StatusNotFound, expectedCode: ErrCodeNotFound, message: "user not found"},
		{name: "conflict", err: &service.Error{Kind: service.ErrConflict, Message: "email already registered"}, status: http.StatusBadRequest, expectedCode: ErrCodeConflict, message: "email already registered"},
		{name: "validation", err: &service.Error{Kind: service.ErrValidation, Message: "password too short"}, status: http.StatusUnprocessableEntity, expectedCode: ErrCodeValidation, message: "password too short"},
		{name: "bare sentinel", err: service.ErrNotFound, status: http.StatusNotFound, expectedCode: ErrCodeNotFound, message: "not found"},
		{name: "internal", err: errors.New("database is locked"), status: http.StatusInternalServerError, expectedCode: ErrCodeInternalError, message: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/datasets/1", nil)

			respondError(c, tt.err)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			var response APIError
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
			}
			if response.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, response.Message)
			}
		})
	}
}

func TestBindError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		body         string
		status       int
		expectedCode string
		field        string
	}{
		{name: "empty body", body: "", status: http.StatusBadRequest, expectedCode: ErrCodeInvalidRequest},
		{name: "syntax error", body: `{"email":`, status: http.StatusBadRequest, expectedCode: ErrCodeInvalidRequest},
		{name: "missing field", body: `{"email":"a@example.com"}`, status: http.StatusUnprocessableEntity, expectedCode: ErrCodeValidation, field: "password"},
		{name: "bad email", body: `{"email":"nope","password":"x"}`, status: http.StatusUnprocessableEntity, expectedCode: ErrCodeValidation, field: "email"},
		{name: "wrong type", body: `{"email":1,"password":"x"}`, status: http.StatusUnprocessableEntity, expectedCode: ErrCodeValidation},
	}

	registerJSONFieldNames()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req dto.LoginRequest
			err := c.ShouldBindJSON(&req)
			if err == nil {
				t.Fatal("expected bind error")
			}
			bindError(c, err)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			var response struct {
				Code    string           `json:"code"`
				Details []FieldViolation `json:"details"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
			}
			if tt.field != "" {
				if len(response.Details) != 1 || response.Details[0].Field != tt.field {
					t.Errorf("expected violation on %s, got %+v", tt.field, response.Details)
				}
			}
		})
	}
}

func TestBindErrorCollectsItemViolations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registerJSONFieldNames()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `[{"dataset_id":1,"dimension":"validity","metric_name":"a","metric_value":1},{"dataset_id":1,"dimension":"validity","metric_name":"b"}]`
	c.Request = httptest.NewRequest(http.MethodPost, "/metrics/ingest", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var items []dto.MetricRecordCreate
	err := c.ShouldBindJSON(&items)
	if err == nil {
		t.Fatal("expected bind error")
	}
	bindError(c, err)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var response struct {
		Details []FieldViolation `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(response.Details) != 1 {
		t.Fatalf("expected one violation, got %+v", response.Details)
	}
	got := response.Details[0]
	if got.Field != "metric_value" || got.Rule != "required" {
		t.Errorf("unexpected violation %+v", got)
	}
}
