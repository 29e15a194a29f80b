package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freedlm/fdm/internal/manager"
	"github.com/freedlm/fdm/internal/transfer"
)

func newTestServer(t *testing.T) (*Server, *manager.Manager) {
	t.Helper()
	mgr := manager.New()
	t.Cleanup(mgr.Shutdown)
	return New(mgr), mgr
}

func TestHandleStart_RejectsMissingURL(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/downloads", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "url")
}

func TestHandleStart_MagnetCreatesExternalRecord(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	payload, _ := json.Marshal(map[string]string{"url": "magnet:?xt=urn:btih:abc"})
	resp, err := http.Post(srv.URL+"/downloads", "application/json", bytes.NewBuffer(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var rec transfer.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.Equal(t, transfer.KindMagnet, rec.Kind)
	assert.Equal(t, transfer.StatusExternal, rec.Status)
}

func TestHandleList_ReflectsStartedDownloads(t *testing.T) {
	body := []byte("payload")
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer upstream.Close()

	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	dir := t.TempDir()
	payload, _ := json.Marshal(map[string]string{"url": upstream.URL, "directory": dir})
	resp, err := http.Post(srv.URL+"/downloads", "application/json", bytes.NewBuffer(payload))
	require.NoError(t, err)
	resp.Body.Close()

	listResp, err := http.Get(srv.URL + "/downloads")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var recs []transfer.Record
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&recs))
	require.Len(t, recs, 1)
	assert.Equal(t, upstream.URL, recs[0].URL)
}

func TestHandlePauseResume_UnknownIDReturns404(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/downloads/does-not-exist/pause", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleRemove_ActiveTransferReturns400(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("ok"))
	}))
	defer upstream.Close()

	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	dir := t.TempDir()
	payload, _ := json.Marshal(map[string]string{"url": upstream.URL, "directory": dir})
	startResp, err := http.Post(srv.URL+"/downloads", "application/json", bytes.NewBuffer(payload))
	require.NoError(t, err)
	var rec transfer.Record
	require.NoError(t, json.NewDecoder(startResp.Body).Decode(&rec))
	startResp.Body.Close()

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/downloads/%s", srv.URL, rec.ID), nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleSetLimits_RoundTrips(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	payload, _ := json.Marshal(map[string]int64{"downloadBps": 4096})
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/limits", bytes.NewBuffer(payload))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var limits transfer.SpeedLimits
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&limits))
	require.NotNil(t, limits.DownloadBps)
	assert.Equal(t, int64(4096), *limits.DownloadBps)
}
