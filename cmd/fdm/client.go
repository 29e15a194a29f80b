package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/freedlm/fdm/internal/transfer"
)

// daemonClient is the CLI's HTTP caller against a running `fdm serve`
// instance's Control-plane Server (SPEC_FULL.md §4.H).
type daemonClient struct {
	baseURL string
	http    *http.Client
}

func newDaemonClient(baseURL string) *daemonClient {
	return &daemonClient{baseURL: baseURL, http: &http.Client{}}
}

type apiError struct {
	Status int
	Msg    string
}

func (e *apiError) Error() string {
	return e.Msg
}

func (c *daemonClient) do(method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach fdm daemon at %s: %w", c.baseURL, err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var body map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, &apiError{Status: resp.StatusCode, Msg: body["error"]}
	}
	return resp, nil
}

func (c *daemonClient) List() ([]*transfer.Record, error) {
	resp, err := c.do(http.MethodGet, "/downloads", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var recs []*transfer.Record
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *daemonClient) Start(url, name, dir, kind string) (*transfer.Record, error) {
	resp, err := c.do(http.MethodPost, "/downloads", map[string]string{
		"url": url, "fileName": name, "directory": dir, "kind": kind,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var rec transfer.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *daemonClient) command(verb, id string) (*transfer.Record, error) {
	resp, err := c.do(http.MethodPost, fmt.Sprintf("/downloads/%s/%s", id, verb), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var rec transfer.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *daemonClient) Pause(id string) (*transfer.Record, error)   { return c.command("pause", id) }
func (c *daemonClient) Resume(id string) (*transfer.Record, error)  { return c.command("resume", id) }
func (c *daemonClient) Cancel(id string) (*transfer.Record, error)  { return c.command("cancel", id) }
func (c *daemonClient) Restart(id string) (*transfer.Record, error) { return c.command("restart", id) }

func (c *daemonClient) Remove(id string) error {
	resp, err := c.do(http.MethodDelete, fmt.Sprintf("/downloads/%s", id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

func (c *daemonClient) SetLimits(limits transfer.SpeedLimits) (transfer.SpeedLimits, error) {
	resp, err := c.do(http.MethodPut, "/limits", limits)
	if err != nil {
		return transfer.SpeedLimits{}, err
	}
	defer resp.Body.Close()
	var got transfer.SpeedLimits
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		return transfer.SpeedLimits{}, err
	}
	return got, nil
}
