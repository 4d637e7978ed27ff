package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContactIntake/internal/model/dto"
	"ContactIntake/pkg/errors"
	"ContactIntake/pkg/response"
)

type fakeSubmitter struct {
	err   error
	calls []dto.ContactRequest
}

func (f *fakeSubmitter) Submit(ctx context.Context, req dto.ContactRequest, remoteIP string) error {
	f.calls = append(f.calls, req)
	return f.err
}

func perform(t *testing.T, svc ContactSubmitter, expose bool, body string) *ut.ResponseRecorder {
	t.Helper()
	h := server.New()
	h.POST("/api/contact", NewContactHandler(svc, expose).Submit)
	h.GET("/api/health", Health)

	return ut.PerformRequest(h.Engine, http.MethodPost, "/api/contact",
		&ut.Body{Body: bytes.NewBufferString(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"})
}

func TestSubmitCreated(t *testing.T) {
	svc := &fakeSubmitter{}
	w := perform(t, svc, false, `{"fullName":"Asha Verma","phoneNumber":"9876543210","emailAddress":"asha@example.com","subject":"Quote","message":"Need a quote for a 2BHK interior."}`)
	resp := w.Result()

	assert.Equal(t, http.StatusCreated, resp.StatusCode())
	var body response.SuccessResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Saved successfully", body.Message)

	require.Len(t, svc.calls, 1)
	assert.Equal(t, "Asha Verma", svc.calls[0].FullName)
}

func TestSubmitInvalidPayload(t *testing.T) {
	for _, raw := range []string{`not json`, `["a","b"]`, `null`, ``} {
		t.Run(raw, func(t *testing.T) {
			svc := &fakeSubmitter{}
			w := perform(t, svc, false, raw)
			resp := w.Result()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
			var body response.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body(), &body))
			assert.Equal(t, "INVALID_PAYLOAD", body.Code)
			assert.Empty(t, svc.calls)
		})
	}
}

func TestSubmitNonStringFieldsTreatedAsMissing(t *testing.T) {
	svc := &fakeSubmitter{}
	perform(t, svc, false, `{"fullName":123,"phoneNumber":"9876543210","emailAddress":"a@b.co","subject":"x","message":"hello world!"}`)

	require.Len(t, svc.calls, 1)
	assert.Equal(t, "", svc.calls[0].FullName)
}

func TestSubmitValidationError(t *testing.T) {
	svc := &fakeSubmitter{err: errors.NewValidationError(errors.InvalidEmail, dto.FieldEmailAddress)}
	w := perform(t, svc, false, `{}`)
	resp := w.Result()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Invalid email format", body.Error)
}

func TestSubmitUpstreamError(t *testing.T) {
	upstream := errors.NewUpstreamError("sheets.append", fmt.Errorf("permission denied for sa@project.iam"))

	t.Run("hidden", func(t *testing.T) {
		w := perform(t, &fakeSubmitter{err: upstream}, false, `{}`)
		resp := w.Result()

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
		assert.NotContains(t, string(resp.Body()), "sa@project.iam")
		var body response.ErrorResponse
		require.NoError(t, json.Unmarshal(resp.Body(), &body))
		assert.Equal(t, "Internal server error", body.Error)
	})

	t.Run("exposed", func(t *testing.T) {
		w := perform(t, &fakeSubmitter{err: upstream}, true, `{}`)
		assert.Contains(t, string(w.Result().Body()), "permission denied")
	})
}

func TestHealth(t *testing.T) {
	h := server.New()
	h.GET("/api/health", Health)

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/api/health", nil)
	resp := w.Result()

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.JSONEq(t, `{"status":"Backend is running"}`, string(resp.Body()))
}
