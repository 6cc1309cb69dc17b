package recognition

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"attendcam/internal/frame"

	"github.com/stretchr/testify/require"
)

var testArtifact = frame.Artifact{Width: 2, Height: 2, DataURL: "data:image/jpeg;base64,QUJD"}

func TestClient_Send_Matched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/process_frame" {
			t.Errorf("Expected path /process_frame, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST method, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %s", ct)
		}

		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if len(payload) != 1 || payload["image"] != testArtifact.DataURL {
			t.Errorf("Unexpected request payload: %v", payload)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":   "21",
			"name": "Asha",
			"last": "09:15",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	result, err := client.Send(context.Background(), testArtifact)
	require.NoError(t, err)

	matched, ok := result.(Matched)
	require.True(t, ok, "expected Matched, got %T", result)
	require.Equal(t, "Asha", matched.Name)
	require.Equal(t, "09:15", matched.Last)
}

func TestClient_Send_Unmatched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Unknown face"}`))
	}))
	defer server.Close()

	result, err := NewClient(server.URL+"/", time.Second).Send(context.Background(), testArtifact)
	require.NoError(t, err)
	require.Equal(t, Unmatched{Message: "Unknown face"}, result)
}

func TestClient_Send_ServiceErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"model not loaded"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Send(context.Background(), testArtifact)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	require.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
	require.Equal(t, "model not loaded", transportErr.Message)
}

func TestClient_Send_UnparseableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Send(context.Background(), testArtifact)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	require.Equal(t, http.StatusOK, transportErr.StatusCode)
}

func TestClient_Send_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, time.Second).Send(context.Background(), testArtifact)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	require.Zero(t, transportErr.StatusCode)
}

func TestClient_Send_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewClient(server.URL, 50*time.Millisecond).Send(context.Background(), testArtifact)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
}

func TestClient_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, NewClient(server.URL, time.Second).HealthCheck(context.Background()))
}

func TestClient_HealthCheck_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := NewClient(server.URL, time.Second).HealthCheck(context.Background())
	require.Error(t, err)
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:5000/", 3*time.Second)

	require.Equal(t, "http://localhost:5000", client.baseURL)
	require.NotNil(t, client.httpClient)
	require.Equal(t, 3*time.Second, client.httpClient.Timeout)
}
