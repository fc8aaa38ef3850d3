//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// Exercises a running server end to end: create a run, take a turn,
// verify idempotent retry, read the snapshot, replay, and kpi.
func TestRemoteAPI_MainEndpoints(t *testing.T) {
	baseURL := strings.TrimRight(envOr("E2E_BASE_URL", "http://localhost:8080"), "/")
	client := &http.Client{Timeout: 60 * time.Second}

	status, createBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/run", nil)
	if status != http.StatusCreated {
		t.Fatalf("create run status=%d body=%s", status, string(createBody))
	}
	var created map[string]any
	if err := json.Unmarshal(createBody, &created); err != nil {
		t.Fatalf("unmarshal create response: %v body=%s", err, string(createBody))
	}
	state := asMap(created["state"])
	runID, _ := state["run_id"].(string)
	if runID == "" {
		t.Fatalf("expected run_id, got %v", created)
	}
	if state["age"] != float64(0) {
		t.Fatalf("expected age 0, got %v", state["age"])
	}

	idempotencyKey := "remote-e2e-" + time.Now().UTC().Format("20060102150405")
	turnReq := map[string]any{
		"idempotency_key": idempotencyKey,
		"option":          "a",
	}

	status, firstTurnBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/run/"+runID+"/turn", turnReq)
	if status != http.StatusOK {
		t.Fatalf("first turn status=%d body=%s", status, string(firstTurnBody))
	}
	var first map[string]any
	if err := json.Unmarshal(firstTurnBody, &first); err != nil {
		t.Fatalf("unmarshal first turn: %v body=%s", err, string(firstTurnBody))
	}
	if first["age_to"] == float64(0) {
		t.Fatalf("expected age to advance, got %v", first)
	}

	status, secondTurnBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/run/"+runID+"/turn", turnReq)
	if status != http.StatusOK {
		t.Fatalf("second turn status=%d body=%s", status, string(secondTurnBody))
	}
	var second map[string]any
	if err := json.Unmarshal(secondTurnBody, &second); err != nil {
		t.Fatalf("unmarshal second turn: %v body=%s", err, string(secondTurnBody))
	}
	if first["age_to"] != second["age_to"] || first["close_call_count"] != second["close_call_count"] {
		t.Fatalf("idempotency mismatch: first=%v second=%v", first, second)
	}

	status, snapshotBody, err := doRequest(client, http.MethodGet, baseURL+"/api/run/"+runID, nil)
	if err != nil {
		t.Fatalf("snapshot request: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("snapshot status=%d body=%s", status, string(snapshotBody))
	}
	var snap map[string]any
	if err := json.Unmarshal(snapshotBody, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v body=%s", err, string(snapshotBody))
	}
	if asMap(snap["state"])["age"] != first["age_to"] {
		t.Fatalf("snapshot lagging: snap=%v turn=%v", snap, first)
	}

	status, replayBody, err := doRequest(client, http.MethodGet, baseURL+"/api/run/"+runID+"/replay?limit=20", nil)
	if err != nil {
		t.Fatalf("replay request: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("replay status=%d body=%s", status, string(replayBody))
	}
	var rep map[string]any
	if err := json.Unmarshal(replayBody, &rep); err != nil {
		t.Fatalf("unmarshal replay: %v body=%s", err, string(replayBody))
	}
	if len(asSlice(rep["events"])) == 0 {
		t.Fatalf("expected replay events in response")
	}

	status, kpiBody, err := doRequest(client, http.MethodGet, baseURL+"/ops/kpi", nil)
	if err != nil {
		t.Fatalf("kpi request: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("kpi status=%d body=%s", status, string(kpiBody))
	}
	var kpi map[string]any
	if err := json.Unmarshal(kpiBody, &kpi); err != nil {
		t.Fatalf("unmarshal kpi: %v body=%s", err, string(kpiBody))
	}
	if _, ok := kpi["turn_total"]; !ok {
		t.Fatalf("expected turn_total in kpi response")
	}
}

func mustJSON(t *testing.T, client *http.Client, method, url string, body map[string]any) (int, []byte) {
	t.Helper()
	status, respBody, err := doRequest(client, method, url, body)
	if err != nil {
		t.Fatalf("%s %s request failed: %v", method, url, err)
	}
	return status, respBody
}

func doRequest(client *http.Client, method, url string, body map[string]any) (int, []byte, error) {
	var payloadBytes []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		payloadBytes = b
	}

	var lastStatus int
	var lastBody []byte
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var payload io.Reader
		if len(payloadBytes) > 0 {
			payload = bytes.NewReader(payloadBytes)
		}
		req, err := http.NewRequest(method, url, payload)
		if err != nil {
			return 0, nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		lastStatus, lastBody, lastErr = resp.StatusCode, respBody, nil
		if resp.StatusCode >= 500 {
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		return resp.StatusCode, respBody, nil
	}
	if lastErr != nil {
		return 0, nil, lastErr
	}
	return lastStatus, lastBody, nil
}

func envOr(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}
