package integration

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fire sends n copies of the same authenticated request concurrently and
// counts 2xx responses.
func fire(t *testing.T, app *testApp, n int, method, path, body string) (success, failure int64) {
	t.Helper()

	var wg sync.WaitGroup
	var ok, failed atomic.Int64

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req, err := http.NewRequest(method, app.server.URL+path, bytes.NewBufferString(body))
			if err != nil {
				failed.Add(1)
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+app.token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				failed.Add(1)
				return
			}
			defer resp.Body.Close()
			_, _ = io.ReadAll(resp.Body)

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				ok.Add(1)
			} else {
				failed.Add(1)
			}
		}()
	}
	wg.Wait()
	return ok.Load(), failed.Load()
}

// TestConcurrentDebits_NoDoubleSpend funds a wallet with exactly one debit's
// worth of balance and fires many identical debits at it. The per-wallet
// lock must let exactly one through; the rest see insufficient funds.
func TestConcurrentDebits_NoDoubleSpend(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	wallet := app.createWallet(t, "USD")
	base := "/api/v1/wallets/" + wallet["id"].(string)

	status, _ := app.do(t, http.MethodPost, base+"/adjust-balance",
		`{"amount":"100.00","type":"DEPOSIT","reason":"funding"}`)
	require.Equal(t, http.StatusCreated, status)

	concurrency := 50
	success, failure := fire(t, app, concurrency, http.MethodPost, base+"/adjust-balance",
		`{"amount":"-100.00","type":"PAYMENT","reason":"contested order"}`)

	assert.Equal(t, int64(1), success, "exactly one debit should win")
	assert.Equal(t, int64(concurrency-1), failure)

	status, envelope := app.do(t, http.MethodGet, base+"/reconcile", "")
	require.Equal(t, http.StatusOK, status)
	report := data(t, envelope)
	assert.Equal(t, "0.00", report["stored_balance"])
	assert.Equal(t, true, report["consistent"])
}

// TestConcurrentDeposits_AllLand checks that credits never get lost under
// contention and the ledger replay still agrees with the stored balance.
func TestConcurrentDeposits_AllLand(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	wallet := app.createWallet(t, "USD")
	base := "/api/v1/wallets/" + wallet["id"].(string)

	concurrency := 50
	success, failure := fire(t, app, concurrency, http.MethodPost, base+"/adjust-balance",
		`{"amount":"1.00","type":"DEPOSIT","reason":"payout"}`)

	assert.Equal(t, int64(concurrency), success)
	assert.Equal(t, int64(0), failure)

	status, envelope := app.do(t, http.MethodGet, base+"/reconcile", "")
	require.Equal(t, http.StatusOK, status)
	report := data(t, envelope)
	assert.Equal(t, "50.00", report["stored_balance"])
	assert.Equal(t, "50.00", report["ledger_balance"])
	assert.Equal(t, true, report["consistent"])
}

// TestConcurrentFreezes_BalanceCapHolds verifies that competing freezes
// cannot together hold more than the available balance.
func TestConcurrentFreezes_BalanceCapHolds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	wallet := app.createWallet(t, "USD")
	base := "/api/v1/wallets/" + wallet["id"].(string)

	status, _ := app.do(t, http.MethodPost, base+"/adjust-balance",
		`{"amount":"10.00","type":"DEPOSIT","reason":"funding"}`)
	require.Equal(t, http.StatusCreated, status)

	concurrency := 20
	success, failure := fire(t, app, concurrency, http.MethodPost, base+"/freeze",
		`{"amount":"10.00","reason":"dispute hold"}`)

	assert.Equal(t, int64(1), success, "only one freeze fits the balance")
	assert.Equal(t, int64(concurrency-1), failure)

	status, envelope := app.do(t, http.MethodGet, base+"/details", "")
	require.Equal(t, http.StatusOK, status)
	walletNow := data(t, envelope)["wallet"].(map[string]interface{})
	assert.Equal(t, "0.00", walletNow["balance"])
	assert.Equal(t, "10.00", walletNow["frozen_balance"])
	assert.Equal(t, "FROZEN", walletNow["status"])

	// Sum of pools is conserved.
	status, envelope = app.do(t, http.MethodGet, base+"/reconcile", "")
	require.Equal(t, http.StatusOK, status)
	report := data(t, envelope)
	assert.Equal(t, true, report["consistent"])
	assert.Equal(t, "10.00", report["stored_frozen"])
}

// TestConcurrentMixedTraffic hammers one wallet with a mix of credits and
// debits and requires the ledger to stay internally consistent regardless
// of which requests won.
func TestConcurrentMixedTraffic(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	wallet := app.createWallet(t, "USD")
	base := "/api/v1/wallets/" + wallet["id"].(string)

	status, _ := app.do(t, http.MethodPost, base+"/adjust-balance",
		`{"amount":"500.00","type":"DEPOSIT","reason":"funding"}`)
	require.Equal(t, http.StatusCreated, status)

	bodies := []string{
		`{"amount":"5.00","type":"DEPOSIT","reason":"payout"}`,
		`{"amount":"-3.00","type":"PAYMENT","reason":"order"}`,
		`{"amount":"-2.00","type":"WITHDRAWAL","reason":"cashout"}`,
		`{"amount":"1.00","type":"REFUND","reason":"returned order"}`,
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(body string) {
			defer wg.Done()

			req, _ := http.NewRequest(http.MethodPost, app.server.URL+base+"/adjust-balance",
				bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+app.token)
			resp, err := http.DefaultClient.Do(req)
			if err == nil {
				_, _ = io.ReadAll(resp.Body)
				resp.Body.Close()
			}
		}(bodies[i%len(bodies)])
	}
	wg.Wait()

	status, envelope := app.do(t, http.MethodGet, base+"/reconcile", "")
	require.Equal(t, http.StatusOK, status)
	report := data(t, envelope)
	assert.Equal(t, true, report["consistent"], "replay must reproduce stored balances: %v", report)
	assert.Equal(t, report["stored_balance"], report["ledger_balance"])

	// 500 funding + 10 rounds of (5 - 3 - 2 + 1), every request within balance.
	assert.Equal(t, "510.00", report["stored_balance"])
}
