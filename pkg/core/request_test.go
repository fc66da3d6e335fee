package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequest(t *testing.T) {
	req := NewRequest("POST", PathStockInfo)

	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/api/dostk/stkinfo", req.Path)
	assert.NotNil(t, req.Query)
	assert.NotNil(t, req.Headers)
	assert.Nil(t, req.Body)
}

func TestRequest_Setters(t *testing.T) {
	req := NewRequest("POST", PathStockInfo)
	body := map[string]string{"stk_cd": "005930"}

	result := req.
		SetQuery("CTX_AREA_NK", "next").
		SetQueryParams(Params{"mrkt_tp": "0", "page": 2}).
		SetBody(body).
		SetHeader("authorization", "Bearer tok").
		SetHeaders(map[string]string{"appkey": "app", "appsecret": "secret"}).
		SetAPIID(APIIDStockBasicInfo)

	assert.Same(t, req, result)
	assert.Equal(t, Params{"CTX_AREA_NK": "next", "mrkt_tp": "0", "page": 2}, req.Query)
	assert.Equal(t, body, req.Body)
	assert.Equal(t, map[string]string{
		"authorization": "Bearer tok",
		"appkey":        "app",
		"appsecret":     "secret",
		"api-id":        "ka10001",
	}, req.Headers)
	assert.Equal(t, APIIDStockBasicInfo, req.APIID())
}

func TestRequest_NilMaps(t *testing.T) {
	req := &Request{Method: "GET", Path: "/"}
	req.SetQuery("a", 1).SetHeader("b", "2")

	assert.Equal(t, 1, req.Query["a"])
	assert.Equal(t, "2", req.Headers["b"])
	assert.Equal(t, APIID(""), req.APIID())
}

func TestRequest_Clone(t *testing.T) {
	req := NewRequest("GET", "/api/list").SetQuery("mrkt_tp", "0").SetAPIID("ka10099")
	clone := req.Clone()

	clone.SetQuery(QueryNextKey, "nk").SetHeader("x", "y")

	assert.Equal(t, Params{"mrkt_tp": "0"}, req.Query)
	assert.NotContains(t, req.Headers, "x")
	assert.Equal(t, APIID("ka10099"), clone.APIID())
	assert.Equal(t, "nk", clone.Query[QueryNextKey])
}

func TestAPIID_String(t *testing.T) {
	tests := []struct {
		id   APIID
		want string
	}{
		{APIIDIssueToken, "au10001"},
		{APIIDRevokeToken, "au10002"},
		{APIIDStockBasicInfo, "ka10001"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.id.String())
	}
}
