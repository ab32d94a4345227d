package uploader

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft_minter/internal/model"
)

func TestHTTPUploader_UploadMetadata(t *testing.T) {
	var received map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/upload-metadata", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"metadataUri":"https://ipfs.filebase.io/ipfs/QmX"}`))
	}))
	defer srv.Close()

	u := NewHTTPUploader(srv.URL + "/")
	uri, err := u.UploadMetadata(context.Background(), model.NewMetadata("Test NFT", "https://example.com/a.png"))
	require.NoError(t, err)
	assert.Equal(t, "https://ipfs.filebase.io/ipfs/QmX", uri)

	var doc model.Metadata
	require.NoError(t, json.Unmarshal(received["metadata"], &doc))
	assert.Equal(t, "Test NFT", doc.Name)
}

func TestHTTPUploader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "服务端错误信息", status: http.StatusInternalServerError, body: `{"error":"Access Denied"}`, wantErr: "Access Denied"},
		{name: "无错误字段", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantErr: "Failed to upload metadata"},
		{name: "方法不允许", status: http.StatusMethodNotAllowed, body: `{"error":"Method not allowed"}`, wantErr: "Method not allowed"},
		{name: "缺少URI", status: http.StatusOK, body: `{}`, wantErr: "上传响应缺少 metadataUri"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPUploader(srv.URL).UploadMetadata(context.Background(), model.NewMetadata("n", "i"))
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestHTTPUploader_TruncatedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 声明的长度大于实际写入, 连接在读完之前断开
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"metadataUri":`))
	}))
	defer srv.Close()

	_, err := NewHTTPUploader(srv.URL).UploadMetadata(context.Background(), model.NewMetadata("n", "i"))
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "读取上传响应失败")
}

func TestHTTPUploader_NoBaseURL(t *testing.T) {
	_, err := NewHTTPUploader("  ").UploadMetadata(context.Background(), model.NewMetadata("n", "i"))
	assert.Error(t, err)
}
