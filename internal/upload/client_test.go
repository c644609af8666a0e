package upload

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cuongbtq/jobcard-service/shared/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upload(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		response  map[string]string
		want      string
		errString string
	}{
		{
			name:     "success",
			status:   http.StatusOK,
			response: map[string]string{"url": "https://cdn.example.com/kitchen.jpg"},
			want:     "https://cdn.example.com/kitchen.jpg",
		},
		{
			name:      "server error",
			status:    http.StatusInternalServerError,
			response:  map[string]string{"error": "disk full"},
			errString: "failed with status 500",
		},
		{
			name:      "missing url",
			status:    http.StatusOK,
			response:  map[string]string{},
			errString: "returned no url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotName, gotContent, gotAuth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				file, header, err := r.FormFile("file")
				if err == nil {
					data, _ := io.ReadAll(file)
					gotName, gotContent = header.Filename, string(data)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.response)
			}))
			defer srv.Close()

			client := NewClient(Config{Endpoint: srv.URL + "/upload", Token: "tok"}, logger.NewNop())
			url, err := client.Upload(context.Background(), "kitchen.jpg", strings.NewReader("jpeg-bytes"))

			assert.Equal(t, "kitchen.jpg", gotName)
			assert.Equal(t, "jpeg-bytes", gotContent)
			assert.Equal(t, "Bearer tok", gotAuth)

			if tt.errString != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, url)
		})
	}
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient(Config{}, logger.NewNop())
	_, err := client.Upload(context.Background(), "a.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}
