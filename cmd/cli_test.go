package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeAccountsFixture(t *testing.T, home string) {
	t.Helper()

	configDir := filepath.Join(home, ".skport")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	accounts := `version = 1

[[accounts]]
name = "Primary"
token = "token-abc"
game_role_id = "role-1"
`

	require.NoError(t, os.WriteFile(filepath.Join(configDir, "accounts.toml"), []byte(accounts), 0o600))
}

type gameServer struct {
	server     *httptest.Server
	getCount   atomic.Int32
	postCount  atomic.Int32
	hasToday   bool
	grantFails bool
}

func startGameServer(t *testing.T) *gameServer {
	t.Helper()

	gs := &gameServer{}
	mux := http.NewServeMux()

	mux.HandleFunc("/user/info/v1/basic", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":0,"data":{"hgId":"hg-1"}}`))
	})
	mux.HandleFunc("/user/oauth2/v2/grant", func(w http.ResponseWriter, r *http.Request) {
		if gs.grantFails {
			_, _ = w.Write([]byte(`{"status":2,"msg":"grant rejected"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":0,"data":{"code":"one-time-code"}}`))
	})
	mux.HandleFunc("/web/v1/user/auth/generate_cred_by_code", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"data":{"cred":"cred-1","token":"salt-1","userId":"user-1"}}`))
	})
	mux.HandleFunc("/web/v1/game/endfield/attendance", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gs.getCount.Add(1)
			if gs.hasToday {
				_, _ = w.Write([]byte(`{"code":0,"data":{"hasToday":true}}`))
			} else {
				_, _ = w.Write([]byte(`{"code":0,"data":{"hasToday":false}}`))
			}
			return
		}

		gs.postCount.Add(1)
		_, _ = w.Write([]byte(`{"code":0,"data":{"awards":{"GOLD":{"count":100,"icon":"gold.png"}}}}`))
	})

	gs.server = httptest.NewServer(mux)
	t.Cleanup(gs.server.Close)

	t.Setenv("SKC_ZONAI_BASE_URL", gs.server.URL)
	t.Setenv("SKC_AUTH_BASE_URL", gs.server.URL)

	return gs
}

func TestVersionCommandPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.NotEmpty(t, stdout)
}

func TestAccountsListShowsConfiguredAccounts(t *testing.T) {
	home := t.TempDir()
	writeAccountsFixture(t, home)

	stdout, _, err := executeCLI(t, home, "accounts", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Primary")
	assert.Contains(t, stdout, "role=role-1")
	assert.Contains(t, stdout, "toke****")
	assert.NotContains(t, stdout, "token-abc")
}

func TestAccountsListWithNoAccounts(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "accounts", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No accounts configured.")
}

func TestCheckinClaimsRewardEndToEnd(t *testing.T) {
	home := t.TempDir()
	writeAccountsFixture(t, home)
	gs := startGameServer(t)

	stdout, _, err := executeCLI(t, home, "checkin")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Primary (role-1)")
	assert.Contains(t, stdout, "claimed")
	assert.Contains(t, stdout, "GOLD x100")
	assert.Equal(t, int32(1), gs.postCount.Load())
}

func TestCheckinJSONOutput(t *testing.T) {
	home := t.TempDir()
	writeAccountsFixture(t, home)
	startGameServer(t)

	stdout, _, err := executeCLI(t, home, "checkin", "--json")
	require.NoError(t, err)

	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, `"status": "claimed"`)
	assert.Contains(t, stdout, `"name": "GOLD"`)
}

func TestCheckinAlreadyClaimedIssuesNoPost(t *testing.T) {
	home := t.TempDir()
	writeAccountsFixture(t, home)
	gs := startGameServer(t)
	gs.hasToday = true

	stdout, _, err := executeCLI(t, home, "checkin")
	require.NoError(t, err)

	assert.Contains(t, stdout, "already claimed")
	assert.Zero(t, gs.postCount.Load())
}

func TestCheckinBootstrapFailureReportsErrorOutcome(t *testing.T) {
	home := t.TempDir()
	writeAccountsFixture(t, home)
	gs := startGameServer(t)
	gs.grantFails = true

	stdout, _, err := executeCLI(t, home, "checkin")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Failed to initialize credentials")
	assert.Zero(t, gs.getCount.Load())
	assert.Zero(t, gs.postCount.Load())
}

func TestCheckinWithoutAccountsFails(t *testing.T) {
	startGameServer(t)

	_, _, err := executeCLI(t, t.TempDir(), "checkin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no accounts configured")
}

func TestCheckinShowsSpinnerMessage(t *testing.T) {
	home := t.TempDir()
	writeAccountsFixture(t, home)
	startGameServer(t)

	_, stderr, err := executeCLI(t, home, "checkin")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Running daily check-in")
}

func TestCheckinDeliversWebhookNotification(t *testing.T) {
	home := t.TempDir()
	writeAccountsFixture(t, home)
	startGameServer(t)

	var delivered atomic.Int32
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered.Add(1)
		body := map[string]any{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body["text"], "claimed")
	}))
	t.Cleanup(webhook.Close)
	t.Setenv("SKC_WEBHOOK_URL", webhook.URL)

	_, _, err := executeCLI(t, home, "checkin")
	require.NoError(t, err)
	assert.Equal(t, int32(1), delivered.Load())
}

func TestScheduleRejectsInvalidCronSpec(t *testing.T) {
	home := t.TempDir()
	writeAccountsFixture(t, home)

	_, _, err := executeCLI(t, home, "schedule", "--cron", "not a cron spec")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse cron spec")
}
