package azure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoveryClient_ListRegions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/regions", r.URL.Path)
		assert.Equal(t, "t-123", r.URL.Query().Get("tenantId"))
		_, _ = w.Write([]byte(`[
			{"name": "eastus", "displayName": "East US"},
			{"name": "westeurope", "displayName": "West Europe"}
		]`))
	}))
	defer srv.Close()

	client := NewDiscoveryClient(srv.URL, zerolog.Nop())
	regions, err := client.ListRegions(context.Background(), "t-123")
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, Region{Name: "eastus", DisplayName: "East US"}, regions[0])
}

func TestDiscoveryClient_NoTenantOmitsParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("tenantId"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewDiscoveryClient(srv.URL, zerolog.Nop())
	regions, err := client.ListRegions(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestDiscoveryClient_ErrorsPropagate(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"not": "a list"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewDiscoveryClient(srv.URL, zerolog.Nop())
			_, err := client.ListRegions(context.Background(), "")
			assert.Error(t, err)
		})
	}
}
