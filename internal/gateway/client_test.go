package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"blockrover/internal/domain"
)

const testAddr = domain.ContractAddress("0x1111111111111111111111111111111111111111")

func newTestClient(handler http.HandlerFunc) (*Client, func()) {
	server := httptest.NewServer(handler)
	return NewClient(server.URL, WithHTTPClient(server.Client())), server.Close
}

func TestTokenData(t *testing.T) {
	client, cleanup := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token/"+testAddr.String() {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"name":               "TestToken",
			"total_supply":       1e9,
			"circulating_supply": 5e8,
			"holder_count":       15000,
			"security":           map[string]string{"is_open_source": "1"},
			"trading":            map[string]string{"is_honeypot": "0"},
		})
	})
	defer cleanup()

	data, err := client.TokenData(context.Background(), testAddr)
	if err != nil {
		t.Fatalf("token data: %v", err)
	}
	if data.Name != "TestToken" {
		t.Errorf("unexpected name %q", data.Name)
	}
	if data.TotalSupply == nil || *data.TotalSupply != 1e9 {
		t.Errorf("unexpected total supply %v", data.TotalSupply)
	}
	if data.SecurityFlags["is_open_source"] != "1" {
		t.Errorf("unexpected security flags %v", data.SecurityFlags)
	}
	if data.TradingFlags["is_honeypot"] != "0" {
		t.Errorf("unexpected trading flags %v", data.TradingFlags)
	}
}

func TestTokenDataOmittedFieldsStayNil(t *testing.T) {
	client, cleanup := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"name": "Sparse"})
	})
	defer cleanup()

	data, err := client.TokenData(context.Background(), testAddr)
	if err != nil {
		t.Fatalf("token data: %v", err)
	}
	if data.TotalSupply != nil || data.HolderCount != nil {
		t.Errorf("omitted numerics must stay nil, got %+v", data)
	}
}

func TestTokenDataNotFound(t *testing.T) {
	client, cleanup := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer cleanup()

	_, err := client.TokenData(context.Background(), testAddr)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotCombinesTokenAndMarket(t *testing.T) {
	client, cleanup := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/" + testAddr.String():
			json.NewEncoder(w).Encode(map[string]any{"name": "TestToken", "circulating_supply": 5e8})
		case "/market/" + testAddr.String():
			json.NewEncoder(w).Encode(map[string]any{"price_usd": 0.002, "liquidity_usd": 250000.0})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	defer cleanup()

	snap, err := client.Snapshot(context.Background(), testAddr)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Address != testAddr {
		t.Errorf("unexpected address %s", snap.Address)
	}
	if snap.Name != "TestToken" {
		t.Errorf("unexpected name %q", snap.Name)
	}
	if snap.PriceUSD == nil || *snap.PriceUSD != 0.002 {
		t.Errorf("unexpected price %v", snap.PriceUSD)
	}
	mc := snap.MarketCapUSD()
	if mc == nil || *mc != 1e6 {
		t.Errorf("unexpected market cap %v", mc)
	}
}

func TestTriggerAudit(t *testing.T) {
	var method, path string
	client, cleanup := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	})
	defer cleanup()

	if err := client.TriggerAudit(context.Background(), testAddr); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if method != http.MethodPost {
		t.Errorf("expected POST, got %s", method)
	}
	if path != "/audit/"+testAddr.String() {
		t.Errorf("unexpected path %s", path)
	}
}

func TestAuditStatusMapsProviderStrings(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.Status
	}{
		{"pending", domain.StatusQueued},
		{"in-progress", domain.StatusAnalyzing},
		{"success", domain.StatusEnded},
		{"failed", domain.StatusErrored},
		{"something-new", domain.StatusUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			client, cleanup := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{
					"status": tc.raw,
					"phase":  "running detectors",
				})
			})
			defer cleanup()

			st, err := client.AuditStatus(context.Background(), testAddr)
			if err != nil {
				t.Fatalf("status: %v", err)
			}
			if st.Status != tc.want {
				t.Errorf("status %q mapped to %s, want %s", tc.raw, st.Status, tc.want)
			}
			if st.Phase != "running detectors" {
				t.Errorf("unexpected phase %q", st.Phase)
			}
		})
	}
}

func TestAuditResultDoubleDecode(t *testing.T) {
	inner, _ := json.Marshal(map[string]any{
		"issues": []map[string]string{
			{"id": "a", "explanation": "Reentrancy", "recommendation": "reentrancy-guard"},
			{"id": "b", "explanation": "Overflow"},
		},
	})
	client, cleanup := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"status": "success",
			"data":   string(inner),
		})
	})
	defer cleanup()

	result, status, err := client.AuditResult(context.Background(), testAddr)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if status != domain.StatusEnded {
		t.Errorf("expected ended envelope, got %s", status)
	}
	if len(result.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(result.Issues))
	}
	if result.Issues[0].RecommendationRef != "reentrancy-guard" {
		t.Errorf("unexpected recommendation ref %q", result.Issues[0].RecommendationRef)
	}
	if result.Issues[1].RecommendationRef != "" {
		t.Errorf("missing recommendation must stay empty, got %q", result.Issues[1].RecommendationRef)
	}
}

func TestAuditResultNotEndedYet(t *testing.T) {
	client, cleanup := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "analyzing"})
	})
	defer cleanup()

	result, status, err := client.AuditResult(context.Background(), testAddr)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result before the audit ends, got %+v", result)
	}
	if status != domain.StatusAnalyzing {
		t.Errorf("expected analyzing envelope, got %s", status)
	}
}

func TestAuditResultMalformedInnerData(t *testing.T) {
	client, cleanup := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"status": "success",
			"data":   "{not json",
		})
	})
	defer cleanup()

	_, _, err := client.AuditResult(context.Background(), testAddr)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestAuditResultMalformedEnvelope(t *testing.T) {
	client, cleanup := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	})
	defer cleanup()

	_, _, err := client.AuditResult(context.Background(), testAddr)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestServerErrorIsTransportError(t *testing.T) {
	client, cleanup := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer cleanup()

	_, err := client.AuditStatus(context.Background(), testAddr)
	if err == nil {
		t.Fatal("expected error for 502")
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMalformed) {
		t.Errorf("5xx must be a plain transport error, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	var method, path string
	client, cleanup := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	})
	defer cleanup()

	if err := client.Register(context.Background(), testAddr); err != nil {
		t.Fatalf("register: %v", err)
	}
	if method != http.MethodPost {
		t.Errorf("expected POST, got %s", method)
	}
	if path != "/register/"+testAddr.String() {
		t.Errorf("unexpected path %s", path)
	}
}
