package stockinfo

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kiwoom/pkg/core"
)

type fakeExecutor struct {
	payload  core.Payload
	err      error
	authErr  error
	requests []*core.Request
}

func (f *fakeExecutor) Execute(_ context.Context, req *core.Request) (core.Payload, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func (f *fakeExecutor) AuthHeaders() (map[string]string, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return map[string]string{
		"authorization": "Bearer test_token",
		"appkey":        "app",
		"appsecret":     "secret",
	}, nil
}

func loadSample(t *testing.T) core.Payload {
	t.Helper()
	body, err := os.ReadFile("testdata/basic_info_005930.json")
	require.NoError(t, err)
	p, err := core.ParsePayload(body)
	require.NoError(t, err)
	return p
}

func TestGetBasicInfo_Success(t *testing.T) {
	ex := &fakeExecutor{payload: loadSample(t)}
	client := New(ex)

	info, err := client.GetBasicInfo(context.Background(), "005930")
	require.NoError(t, err)

	assert.Equal(t, "005930", info.StockCode)
	assert.Equal(t, "삼성전자", info.StockName)
	assert.Equal(t, core.Some("71100"), info.PresentPrice)
	assert.Equal(t, 0, info.ReturnCode)
	assert.Equal(t, "정상적으로 처리되었습니다", info.ReturnMsg)

	require.Len(t, ex.requests, 1)
	req := ex.requests[0]
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, core.PathStockInfo, req.Path)
	assert.Equal(t, core.APIIDStockBasicInfo, req.APIID())
	assert.Equal(t, "Bearer test_token", req.Headers["authorization"])
	assert.Equal(t, "app", req.Headers["appkey"])
	assert.Equal(t, "secret", req.Headers["appsecret"])
	assert.Equal(t, core.Payload{"stk_cd": "005930"}, req.Body)
}

func TestGetBasicInfo_BlankOptionalFieldsAreAbsent(t *testing.T) {
	ex := &fakeExecutor{payload: loadSample(t)}

	info, err := New(ex).GetBasicInfo(context.Background(), "005930")
	require.NoError(t, err)

	for name, v := range map[string]core.Optional[string]{
		"mac_wght": info.MarketCapWeight,
		"per":      info.PER,
		"eps":      info.EPS,
		"roe":      info.ROE,
		"pbr":      info.PBR,
		"ev":       info.EV,
		"pre_sig":  info.ComparisonSymbol,
		"pred_pre": info.PreviousDayComparison,
	} {
		assert.False(t, v.IsPresent(), name)
	}
	assert.Equal(t, core.Some("KOSPI"), info.MarketType)
	assert.Equal(t, core.Some("0"), info.FluctuationRate)
}

func TestGetBasicInfo_APIErrorPropagates(t *testing.T) {
	apiErr := core.NewAPIError(200, -1, "잘못된 종목코드입니다.")
	ex := &fakeExecutor{err: apiErr}

	info, err := New(ex).GetBasicInfo(context.Background(), "INVALID_CODE")
	assert.Nil(t, info)
	require.Error(t, err)
	assert.True(t, core.IsAPIError(err))
	assert.Contains(t, err.Error(), "잘못된 종목코드입니다.")
	assert.Contains(t, err.Error(), "[-1]")
	assert.Equal(t, core.Payload{"stk_cd": "INVALID_CODE"}, ex.requests[0].Body)
}

func TestGetBasicInfo_NonzeroReturnCodeNeverSucceeds(t *testing.T) {
	p := loadSample(t)
	p[core.KeyReturnCode] = float64(-1)
	p[core.KeyReturnMsg] = "잘못된 종목코드입니다."
	ex := &fakeExecutor{payload: p}

	info, err := New(ex).GetBasicInfo(context.Background(), "005930")
	assert.Nil(t, info)
	require.Error(t, err)

	e, ok := core.AsError(err)
	require.True(t, ok)
	assert.Equal(t, core.ErrorTypeAPI, e.Type)
	assert.Equal(t, core.Some(-1), e.APICode)
	assert.Equal(t, "잘못된 종목코드입니다.", e.Message)
}

func TestGetBasicInfo_MissingRequiredField(t *testing.T) {
	p := loadSample(t)
	delete(p, "stk_nm")
	ex := &fakeExecutor{payload: p}

	_, err := New(ex).GetBasicInfo(context.Background(), "005930")
	require.Error(t, err)

	e, ok := core.AsError(err)
	require.True(t, ok)
	assert.Equal(t, core.ErrorTypeDecode, e.Type)
	assert.Equal(t, "stk_nm", e.Field)
}

func TestGetBasicInfo_RequiresToken(t *testing.T) {
	ex := &fakeExecutor{authErr: core.NewAuthenticationError("no token", core.ErrNotAuthenticated)}

	_, err := New(ex).GetBasicInfo(context.Background(), "005930")
	assert.True(t, core.IsAuthenticationError(err))
	assert.Empty(t, ex.requests)
}

func TestGetBasicInfo_EmptyStockCode(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"blank", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &fakeExecutor{payload: loadSample(t)}
			_, err := New(ex).GetBasicInfo(context.Background(), tt.code)
			require.Error(t, err)
			assert.True(t, core.IsConfigurationError(err))
			assert.Empty(t, ex.requests)
		})
	}
}

func TestBasicInfoRequest_EncodeDecode(t *testing.T) {
	req := BasicInfoRequest{StockCode: "005930"}

	decoded, err := BasicInfoRequestSchema(req.Encode())
	require.NoError(t, err)
	assert.Equal(t, req, decoded)
}

func TestStockInfo_EncodeMatchesWire(t *testing.T) {
	p := loadSample(t)
	info, err := StockInfoSchema(p)
	require.NoError(t, err)

	encoded := info.Encode()
	for key, v := range p {
		if s, ok := v.(string); ok && s == "" {
			assert.NotContains(t, encoded, key)
			continue
		}
		if key == core.KeyReturnCode {
			assert.Equal(t, 0, encoded[key])
			continue
		}
		assert.Equal(t, v, encoded[key], key)
	}

	again, err := StockInfoSchema(encoded)
	require.NoError(t, err)
	assert.Equal(t, info, again)
}
