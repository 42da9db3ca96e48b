package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"media-transcriber/internal/api/v1/dto"
	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/errors"
)

type mockTranscriptionService struct {
	mock.Mock
}

func (m *mockTranscriptionService) Transcribe(ctx context.Context, filePath string, language string) (*dto.TranscriptionResponse, error) {
	args := m.Called(ctx, filePath, language)
	if resp := args.Get(0); resp != nil {
		return resp.(*dto.TranscriptionResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRoutingService struct {
	mock.Mock
}

func (m *mockRoutingService) GetRouting(ctx context.Context) (*dto.RoutingResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).(*dto.RoutingResponse), args.Error(1)
}

func (m *mockRoutingService) UpdateRouting(ctx context.Context, req *dto.UpdateRoutingRequest) (*dto.RoutingResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*dto.RoutingResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestTranscriptionHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*mockTranscriptionService)
		expectedStatus int
		validateBody   func(*testing.T, map[string]interface{})
	}{
		{
			name: "default language",
			body: `{"file_path":"/data/voice.mp3"}`,
			setupMocks: func(m *mockTranscriptionService) {
				m.On("Transcribe", mock.Anything, "/data/voice.mp3", provider.DefaultLanguage).
					Return(dto.ToTranscriptionResponse("voice.mp3", &provider.TranscriptionResult{
						Text: "olá", Confidence: 0.9, ModelUsed: "faster-whisper", Language: "pt",
					}), nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, true, body["success"])
				assert.Equal(t, "olá", body["result"].(map[string]interface{})["text"])
			},
		},
		{
			name: "exhausted chain is not an error status",
			body: `{"file_path":"/data/voice.mp3","language":"pt-BR"}`,
			setupMocks: func(m *mockTranscriptionService) {
				m.On("Transcribe", mock.Anything, "/data/voice.mp3", "pt-BR").
					Return(dto.ToTranscriptionResponse("voice.mp3", provider.ExhaustedResult("pt-BR")), nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, false, body["success"])
			},
		},
		{
			name:           "missing file path",
			body:           `{"language":"pt"}`,
			setupMocks:     func(m *mockTranscriptionService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "validation", body["kind"])
				assert.NotNil(t, body["details"])
			},
		},
		{
			name: "file not found",
			body: `{"file_path":"/data/missing.mp3"}`,
			setupMocks: func(m *mockTranscriptionService) {
				m.On("Transcribe", mock.Anything, "/data/missing.mp3", provider.DefaultLanguage).
					Return(nil, errors.Wrapf(errors.ErrFileNotFound, "%s", "/data/missing.mp3"))
			},
			expectedStatus: http.StatusNotFound,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "not_found", body["kind"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockTranscriptionService{}
			tt.setupMocks(service)
			router := setupTestRouter()
			router.POST("/transcriptions", NewTranscriptionHandler(service, 0).Create)

			req := httptest.NewRequest(http.MethodPost, "/transcriptions", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			tt.validateBody(t, body)
			service.AssertExpectations(t)
		})
	}
}

func TestRoutingHandler_Update(t *testing.T) {
	service := &mockRoutingService{}
	service.On("UpdateRouting", mock.Anything, mock.MatchedBy(func(req *dto.UpdateRoutingRequest) bool {
		return req.PrimaryProvider != nil && *req.PrimaryProvider == "gemini-hybrid" &&
			req.FallbackProviders == nil && req.ConfidenceThreshold == nil
	})).Return(&dto.RoutingResponse{
		RoutingConfig: provider.RoutingConfig{Primary: "gemini-hybrid", ConfidenceThreshold: 0.6},
		Chain:         []string{"gemini-hybrid"},
	}, nil)
	service.On("UpdateRouting", mock.Anything, mock.Anything).
		Return(nil, errors.OutOfRange("confidence_threshold", 0, 1))

	router := setupTestRouter()
	router.PUT("/routing", NewRoutingHandler(service).Update)

	req := httptest.NewRequest(http.MethodPut, "/routing", strings.NewReader(`{"primary_provider":"gemini-hybrid"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"primary_provider":"gemini-hybrid"`)

	req = httptest.NewRequest(http.MethodPut, "/routing", strings.NewReader(`{"fallback_providers":[]}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
