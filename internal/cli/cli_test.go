package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/ebirdmcp/internal/config"
)

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("EBIRDMCP_HOME", home)
	for _, k := range []string{"EBIRD_API_KEY", "GOOGLE_API_KEY", "EBIRDMCP_ADDR", "EBIRDMCP_LOG_LEVEL", "EBIRDMCP_TOKEN"} {
		t.Setenv(k, "")
	}
	return home
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cfgFile, logLevel = "", ""
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--log-level", "silent"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	setupHome(t)
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ebird-mcp "))
}

func TestConfigCommands(t *testing.T) {
	home := setupHome(t)

	out, err := run(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.yaml")+"\n", out)

	_, err = run(t, "", "config", "set", "ebird.locale", "fr")
	require.NoError(t, err)
	_, err = run(t, "", "config", "set", "chat.maxRounds", "3")
	require.NoError(t, err)
	out, err = run(t, "", "config", "set", "ebird.apiKey", "abc123")
	require.NoError(t, err)
	assert.NotContains(t, out, "abc123")

	out, err = run(t, "", "config", "get", "ebird.locale")
	require.NoError(t, err)
	assert.Equal(t, "fr\n", out)

	out, err = run(t, "", "config", "get", "ebird")
	require.NoError(t, err)
	assert.Contains(t, out, "locale: fr")
	assert.NotContains(t, out, "abc123")

	out, err = run(t, "", "config", "get", "--reveal", "ebird.apiKey")
	require.NoError(t, err)
	assert.Equal(t, "abc123\n", out)

	cfg, err := config.Load(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "fr", cfg.EBird.Locale)
	assert.Equal(t, 3, cfg.Chat.MaxRounds)

	_, err = run(t, "", "config", "unset", "ebird.locale")
	require.NoError(t, err)
	_, err = run(t, "", "config", "get", "ebird.locale")
	assert.ErrorContains(t, err, "not found")
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, false, parseValue("FALSE"))
	assert.Equal(t, 42, parseValue("42"))
	assert.Equal(t, 1.5, parseValue("1.5"))
	assert.Equal(t, "45s", parseValue("45s"))
	assert.Equal(t, "US-NY", parseValue("US-NY"))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "********", redact("apiKey", "secret"))
	assert.Equal(t, "${EBIRD_API_KEY}", redact("apiKey", "${EBIRD_API_KEY}"))
	assert.Equal(t, "en", redact("locale", "en"))
	assert.Equal(t, map[string]any{"apiKey": "********", "locale": "en"},
		redact("ebird", map[string]any{"apiKey": "k", "locale": "en"}))
}

func TestServeRequiresCredential(t *testing.T) {
	setupHome(t)
	_, err := run(t, "", "serve")
	assert.ErrorIs(t, err, config.ErrMissingCredential)
}

func TestServeRejectsUnknownTransport(t *testing.T) {
	setupHome(t)
	t.Setenv("EBIRD_API_KEY", "k")
	_, err := run(t, "", "serve", "--transport", "carrier-pigeon")
	assert.ErrorContains(t, err, "server.transport")
}

func TestChatRequiresCredential(t *testing.T) {
	setupHome(t)
	_, err := run(t, "", "chat")
	assert.ErrorIs(t, err, config.ErrMissingChatCredential)
}

// fakeEBird serves a tiny taxonomy and counts taxonomy downloads.
func fakeEBird(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("X-eBirdApiToken"))
		switch r.URL.Path {
		case "/ref/taxonomy/ebird":
			fetches.Add(1)
			_, _ = w.Write([]byte(`[
				{"speciesCode":"horlar","comName":"Horned Lark","sciName":"Eremophila alpestris"},
				{"speciesCode":"amerob","comName":"American Robin","sciName":"Turdus migratorius"}
			]`))
		case "/data/obs/US-NY/recent":
			_, _ = w.Write([]byte(`[{"speciesCode":"amerob","howMany":3}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &fetches
}

func configureUpstream(t *testing.T, home, baseURL string) string {
	t.Helper()
	snapshot := filepath.Join(home, "cache", "ebird_taxonomy.json")
	t.Setenv("EBIRD_API_KEY", "k")
	_, err := run(t, "", "config", "set", "ebird.baseUrl", baseURL)
	require.NoError(t, err)
	_, err = run(t, "", "config", "set", "ebird.taxonomyCache", snapshot)
	require.NoError(t, err)
	return snapshot
}

func TestTaxonomyCommands(t *testing.T) {
	home := setupHome(t)
	srv, fetches := fakeEBird(t)
	snapshot := configureUpstream(t, home, srv.URL)

	out, err := run(t, "", "taxonomy", "code", "horned", "LARK")
	require.NoError(t, err)
	assert.Equal(t, "horlar\n", out)
	assert.FileExists(t, snapshot)

	out, err = run(t, "", "taxonomy", "name", "amerob")
	require.NoError(t, err)
	assert.Equal(t, "American Robin\n", out)
	assert.Equal(t, int32(1), fetches.Load(), "second run should read the snapshot")

	_, err = run(t, "", "taxonomy", "code", "Dodo")
	assert.ErrorContains(t, err, `"Dodo" not found`)
}

func TestTaxonomyCorruptSnapshot(t *testing.T) {
	home := setupHome(t)
	srv, fetches := fakeEBird(t)
	snapshot := configureUpstream(t, home, srv.URL)
	require.NoError(t, os.MkdirAll(filepath.Dir(snapshot), 0o755))
	require.NoError(t, os.WriteFile(snapshot, []byte("{not json"), 0o644))

	_, err := run(t, "", "taxonomy", "code", "Horned Lark")
	assert.ErrorContains(t, err, "corrupt")
	assert.Equal(t, int32(0), fetches.Load())
}

func TestServeStdio(t *testing.T) {
	home := setupHome(t)
	srv, _ := fakeEBird(t)
	configureUpstream(t, home, srv.URL)

	stdin := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"t","version":"0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_ebird_species_code","arguments":{"common_name":"horned lark"}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_ebird_observations","arguments":{"region_code":"US-NY"}}}`,
	}, "\n") + "\n"

	out, err := run(t, stdin, "serve", "--warm")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)

	var init struct {
		Result struct {
			ServerInfo struct{ Name string } `json:"serverInfo"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &init))
	assert.Equal(t, "ebird-mcp", init.Result.ServerInfo.Name)

	assert.Contains(t, lines[1], `\"speciesCode\":\"horlar\"`)
	assert.Contains(t, lines[2], `\"howMany\":3`)
}
