package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccessOmitsPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Success(c, gin.H{"id": 1})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 0, body["status_code"])
	assert.NotContains(t, body, "pagination")
}

func TestSuccessWithPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	SuccessWithPage(c, []int{1, 2}, NewPagination(2, 10, 21))

	body := decodeBody(t, rec)
	page, ok := body["pagination"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 3, page["total_page"])
	assert.EqualValues(t, 2, page["page"])
}

func TestErrorCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		data interface{}
		want map[string]interface{}
	}{
		{name: "nil", data: nil, want: map[string]interface{}{"request_id": "req-1"}},
		{name: "map", data: gin.H{"fields": "x"}, want: map[string]interface{}{"request_id": "req-1", "fields": "x"}},
		{name: "scalar", data: 7, want: map[string]interface{}{"request_id": "req-1", "data": float64(7)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Set("request_id", "req-1")

			ErrorWithData(c, CodeBadRequest, "bad", tc.data)

			body := decodeBody(t, rec)
			assert.EqualValues(t, CodeBadRequest, body["status_code"])
			assert.Equal(t, tc.want, body["data"])
		})
	}
}

func TestAppErrorWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	cause := errors.New("db down")
	appErr := WrapError(CodeInternal, "internal", cause)
	assert.True(t, appErr.ServerSide())
	assert.ErrorIs(t, appErr, cause)

	appErr.Write(c)
	body := decodeBody(t, rec)
	assert.Equal(t, "internal", body["msg"])
	assert.Nil(t, body["data"])
}
