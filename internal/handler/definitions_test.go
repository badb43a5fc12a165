package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careshift-dev/roster-manager/backend/internal/config"
	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

// newTestHandler 构造一个不连接任何外部服务的 handler，
// 只用于测试在访问 repository 之前就返回的校验路径
func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.Schedule.HorizonMonths = 3

	h, err := NewHandler(cfg, nil, nil, nil)
	require.NoError(t, err)
	return h
}

func newRequestWithMyInfo(method string, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	myInfo := &domain.User{ID: 1, OrganizationID: 10, Role: domain.RoleRosterManager}
	return req.WithContext(context.WithValue(req.Context(), MyInfoCtx, myInfo))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCreateDefinitionRejectsInvalidBody(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.CreateDefinition(rec, newRequestWithMyInfo(http.MethodPost, "/recurring-schedules", "{not json"))

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
}

func TestCreateDefinitionRejectsMissingFields(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.CreateDefinition(rec, newRequestWithMyInfo(http.MethodPost, "/recurring-schedules", `{"staffID": 1}`))

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
}

func TestCreateDefinitionRejectsInvalidWeekdays(t *testing.T) {
	h := newTestHandler(t)

	testCases := []struct {
		name string
		body string
	}{
		{
			name: "星期几重复",
			body: `{"staffID": 1, "facilityID": 2, "shiftType": "morning", "weekdays": [1, 1], "durationType": "permanent", "startDate": "2026-01-05"}`,
		},
		{
			name: "星期几超出范围",
			body: `{"staffID": 1, "facilityID": 2, "shiftType": "morning", "weekdays": [7], "durationType": "permanent", "startDate": "2026-01-05"}`,
		},
		{
			name: "班次类型非法",
			body: `{"staffID": 1, "facilityID": 2, "shiftType": "overnight", "weekdays": [1], "durationType": "permanent", "startDate": "2026-01-05"}`,
		},
		{
			name: "临时规则缺少结束日期",
			body: `{"staffID": 1, "facilityID": 2, "shiftType": "morning", "weekdays": [1], "durationType": "temporary", "startDate": "2026-01-05"}`,
		},
		{
			name: "永久规则携带结束日期",
			body: `{"staffID": 1, "facilityID": 2, "shiftType": "morning", "weekdays": [1], "durationType": "permanent", "startDate": "2026-01-05", "endDate": "2026-06-30"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.CreateDefinition(rec, newRequestWithMyInfo(http.MethodPost, "/recurring-schedules", tc.body))

			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
		})
	}
}

func TestRespondShiftRejectsOthersShift(t *testing.T) {
	h := newTestHandler(t)

	shift := &domain.MaterializedShift{ID: 7, StaffID: 999}
	req := newRequestWithMyInfo(http.MethodPatch, "/shifts/7/status", `{"status": "accepted"}`)
	req = req.WithContext(context.WithValue(req.Context(), ShiftCtx, shift))

	rec := httptest.NewRecorder()
	h.RespondShift(rec, req)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "只能操作自己的班次", resp.Message)
}
