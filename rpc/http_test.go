package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinechain/core"
	"cinechain/core/types"
	"cinechain/native/fundraising"
	"cinechain/storage"
)

const testAuthToken = "test-rpc-token"

var (
	testAdmin   = addr(0xAA)
	testWallet  = addr(0xBB)
	testCreator = addr(0x01)
	testBacker  = addr(0x02)
)

func addr(b byte) types.Address {
	var a types.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func newTestServer(t *testing.T) (*Server, *core.Node) {
	t.Helper()
	node := core.NewNode(storage.NewMemDB(), core.Config{
		Admin:          testAdmin,
		PlatformWallet: testWallet,
		PlatformFeeBps: 300,
	})
	return NewServer(node, testAuthToken, "cinechain-test"), node
}

func post(t *testing.T, s *Server, token string, method string, params interface{}) (*RPCResponse, int) {
	t.Helper()
	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		req["params"] = []interface{}{params}
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	httpReq := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handle(rec, httpReq)

	resp := &RPCResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return resp, rec.Code
}

func mustResult(t *testing.T, resp *RPCResponse) map[string]interface{} {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected RPC error: %+v", resp.Error)
	}
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("remarshal result: %v", err)
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return out
}

func TestHandleRejectsUnknownMethod(t *testing.T) {
	s, _ := newTestServer(t)
	resp, status := post(t, s, "", "fund_unknown", nil)
	if status != http.StatusNotFound {
		t.Fatalf("unexpected status %d", status)
	}
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method-not-found error, got %+v", resp.Error)
	}
}

func TestHandleRejectsMalformedPayload(t *testing.T) {
	s, _ := newTestServer(t)
	httpReq := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.handle(rec, httpReq)

	resp := &RPCResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != codeParseError {
		t.Fatalf("expected parse error, got %+v", resp.Error)
	}
}

func TestAdminMethodsRequireBearerToken(t *testing.T) {
	s, _ := newTestServer(t)
	resp, status := post(t, s, "", "token_mint", tokenMintParams{
		Caller: testAdmin.Hex(),
		To:     testBacker.Hex(),
		Amount: "1000",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", status)
	}
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("expected unauthorized error, got %+v", resp.Error)
	}

	resp, _ = post(t, s, "wrong-token", "token_mint", tokenMintParams{
		Caller: testAdmin.Hex(),
		To:     testBacker.Hex(),
		Amount: "1000",
	})
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("expected unauthorized error for bad token, got %+v", resp.Error)
	}
}

func TestCampaignLifecycleOverRPC(t *testing.T) {
	s, node := newTestServer(t)

	goal := big.NewInt(1_000)
	if err := node.TokenMint(testAdmin, testBacker, big.NewInt(5_000)); err != nil {
		t.Fatalf("seed backer balance: %v", err)
	}
	if err := node.TokenApprove(testBacker, fundraising.VaultAddress, big.NewInt(5_000)); err != nil {
		t.Fatalf("approve escrow vault: %v", err)
	}

	resp, _ := post(t, s, "", "fund_createCampaign", createCampaignParams{
		Creator:     testCreator.Hex(),
		Title:       "Midnight Reel",
		Description: "Independent feature",
		FundingGoal: goal.String(),
		Duration:    86_400,
	})
	created := mustResult(t, resp)
	if created["id"].(float64) != 1 {
		t.Fatalf("unexpected campaign id %v", created["id"])
	}
	if created["status"] != "active" {
		t.Fatalf("unexpected status %v", created["status"])
	}

	resp, _ = post(t, s, "", "fund_contribute", contributeParams{
		CampaignID:  1,
		Contributor: testBacker.Hex(),
		Amount:      "400",
	})
	partial := mustResult(t, resp)
	if partial["currentFunding"] != "400" {
		t.Fatalf("unexpected funding %v", partial["currentFunding"])
	}

	resp, _ = post(t, s, "", "fund_contribute", contributeParams{
		CampaignID:  1,
		Contributor: testBacker.Hex(),
		Amount:      "600",
	})
	funded := mustResult(t, resp)
	if funded["status"] != "funded" {
		t.Fatalf("expected funded campaign, got %v", funded["status"])
	}

	creatorBalance, err := node.TokenBalanceOf(testCreator)
	if err != nil {
		t.Fatalf("creator balance: %v", err)
	}
	if creatorBalance.Cmp(big.NewInt(970)) != 0 {
		t.Fatalf("unexpected creator payout %s", creatorBalance)
	}

	resp, _ = post(t, s, "", "fund_getContribution", contributionParams{
		CampaignID:  1,
		Contributor: testBacker.Hex(),
	})
	contribution := mustResult(t, resp)
	if contribution["contribution"] != "1000" {
		t.Fatalf("unexpected contribution %v", contribution["contribution"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	server := httptest.NewServer(s.Router())
	defer server.Close()

	resp, err := http.Get(fmt.Sprintf("%s/healthz", server.URL))
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected health status %d", resp.StatusCode)
	}

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode health payload: %v", err)
	}
	if payload["status"] != "ok" || payload["network"] != "cinechain-test" {
		t.Fatalf("unexpected health payload %v", payload)
	}
}
