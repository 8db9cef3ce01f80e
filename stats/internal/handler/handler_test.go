package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/lending-service/pkg/auth"
	"github.com/Astemirdum/lending-service/stats/internal/handler"
	service_mocks "github.com/Astemirdum/lending-service/stats/internal/handler/mocks"
	"github.com/Astemirdum/lending-service/stats/internal/model"
)

func TestHandler_GetStats(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockStatsService, actor string)
	type response struct {
		expectedCode int
		expectedBody string
	}
	ts := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	avg := 4.5

	var tests = []struct {
		name         string
		userID       string
		actor        string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "ok",
			userID: "alice",
			actor:  "bob",
			mockBehavior: func(r *service_mocks.MockStatsService, actor string) {
				r.EXPECT().GetStats(gomock.Any(), actor).Return(model.StatsInfo{Data: []model.ActorStats{
					{ActorID: "bob", Lent: 2, Borrowed: 1, AverageRating: &avg, Earned: 300, LastEventAt: ts},
				}}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"data":[{"actorId":"bob","lent":2,"borrowed":1,"disputes":0,"averageRating":4.5,"earned":300,"paid":0,"lastEventAt":"2026-06-01T10:00:00Z"}]}`,
			},
		},
		{
			name:   "empty",
			userID: "alice",
			mockBehavior: func(r *service_mocks.MockStatsService, actor string) {
				r.EXPECT().GetStats(gomock.Any(), actor).Return(model.StatsInfo{}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"data":[]}`,
			},
		},
		{
			name:         "no actor header",
			mockBehavior: func(r *service_mocks.MockStatsService, actor string) {},
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"actor id is empty"}`,
			},
		},
		{
			name:   "store failure",
			userID: "alice",
			mockBehavior: func(r *service_mocks.MockStatsService, actor string) {
				r.EXPECT().GetStats(gomock.Any(), actor).Return(model.StatsInfo{}, errors.New("db down"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db down"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()

			svc := service_mocks.NewMockStatsService(c)
			tt.mockBehavior(svc, tt.actor)

			h := handler.New(svc, zap.NewNop())
			target := "/api/v1/stats"
			if tt.actor != "" {
				target += "?actor=" + tt.actor
			}
			r := httptest.NewRequest(http.MethodGet, target, http.NoBody)
			if tt.userID != "" {
				r.Header.Set(auth.XUserIDHeader, tt.userID)
			}
			w := httptest.NewRecorder()
			h.NewRouter().ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
