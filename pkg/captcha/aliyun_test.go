package captcha

import (
	"context"
	"errors"
	"testing"
	"time"

	captcha "github.com/alibabacloud-go/captcha-20230305/client"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifyAPI struct {
	response *captcha.VerifyIntelligentCaptchaResponse
	err      error
	block    chan struct{}
	runtime  *util.RuntimeOptions
	request  *captcha.VerifyIntelligentCaptchaRequest
}

func (f *fakeVerifyAPI) VerifyIntelligentCaptchaWithOptions(request *captcha.VerifyIntelligentCaptchaRequest, runtime *util.RuntimeOptions) (*captcha.VerifyIntelligentCaptchaResponse, error) {
	f.request = request
	f.runtime = runtime
	if f.block != nil {
		<-f.block
	}
	return f.response, f.err
}

func verifyResponse(code string, passed bool) *captcha.VerifyIntelligentCaptchaResponse {
	return &captcha.VerifyIntelligentCaptchaResponse{
		Body: &captcha.VerifyIntelligentCaptchaResponseBody{
			Code:    tea.String(code),
			Message: tea.String("msg"),
			Result: &captcha.VerifyIntelligentCaptchaResponseBodyResult{
				VerifyResult: tea.Bool(passed),
			},
		},
	}
}

func TestAliyunVerify(t *testing.T) {
	tests := []struct {
		name    string
		api     *fakeVerifyAPI
		param   string
		want    bool
		wantErr bool
	}{
		{name: "passed", api: &fakeVerifyAPI{response: verifyResponse("Success", true)}, param: "p", want: true},
		{name: "rejected", api: &fakeVerifyAPI{response: verifyResponse("200", false)}, param: "p"},
		{name: "service error code", api: &fakeVerifyAPI{response: verifyResponse("Forbidden", false)}, param: "p", wantErr: true},
		{name: "sdk error", api: &fakeVerifyAPI{err: errors.New("dial tcp: timeout")}, param: "p", wantErr: true},
		{name: "nil body", api: &fakeVerifyAPI{response: &captcha.VerifyIntelligentCaptchaResponse{}}, param: "p", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newAliyunVerifier(tt.api, "scene-1", 5*time.Second)
			ok, err := v.Verify(context.Background(), tt.param, "10.0.0.1")
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, "scene-1", tea.StringValue(tt.api.request.SceneId))
			assert.Equal(t, tt.param, tea.StringValue(tt.api.request.CaptchaVerifyParam))
		})
	}
}

func TestAliyunVerifyEmptyParam(t *testing.T) {
	api := &fakeVerifyAPI{response: verifyResponse("Success", true)}
	v := newAliyunVerifier(api, "scene-1", time.Second)

	_, err := v.Verify(context.Background(), "", "10.0.0.1")
	assert.ErrorIs(t, err, ErrTokenRequired)
	assert.Nil(t, api.request)
}

func TestAliyunVerifyHonoursDeadline(t *testing.T) {
	api := &fakeVerifyAPI{block: make(chan struct{})}
	defer close(api.block)
	v := newAliyunVerifier(api, "scene-1", 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	ok, err := v.Verify(ctx, "p", "10.0.0.1")
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAliyunVerifyCanceledContext(t *testing.T) {
	api := &fakeVerifyAPI{response: verifyResponse("Success", true)}
	v := newAliyunVerifier(api, "scene-1", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := v.Verify(ctx, "p", "10.0.0.1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, api.request)
}

func TestRuntimeOptions(t *testing.T) {
	v := newAliyunVerifier(nil, "scene-1", 3*time.Second)

	opts := v.runtimeOptions(context.Background())
	assert.Equal(t, 3000, tea.IntValue(opts.ReadTimeout))
	assert.Equal(t, 3000, tea.IntValue(opts.ConnectTimeout))
	assert.False(t, tea.BoolValue(opts.Autoretry))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	opts = v.runtimeOptions(ctx)
	assert.LessOrEqual(t, tea.IntValue(opts.ReadTimeout), 500)
	assert.Greater(t, tea.IntValue(opts.ReadTimeout), 0)
	assert.Equal(t, tea.IntValue(opts.ReadTimeout), tea.IntValue(opts.ConnectTimeout))
}
