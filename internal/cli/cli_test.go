package cli

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/johan-st/toolbox/internal/access"
	"github.com/johan-st/toolbox/internal/applet"
	"github.com/johan-st/toolbox/internal/config"
	"github.com/johan-st/toolbox/internal/history"
	"github.com/johan-st/toolbox/internal/namegen"
	"github.com/johan-st/toolbox/internal/server"
	"github.com/johan-st/toolbox/internal/testutil"
	"github.com/johan-st/toolbox/internal/toolbox"
	"github.com/johan-st/toolbox/internal/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv sets up a handler backed by a history store.
type testEnv struct {
	t         *testing.T
	manager   *toolbox.Manager
	store     *history.Store
	handler   *Handler
	adminUser *access.UserInfo
	plainUser *access.UserInfo
	anonUser  *access.UserInfo
	localUser *access.UserInfo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Hash.FileRoot = t.TempDir()
	cfg.AnonymousAccess = "none"
	cfg.Users = []config.User{
		{Name: "admin", Admin: true},
		{Name: "plain", Access: []config.AccessRule{{Pattern: "generator/*", Level: "use"}}},
	}

	manager, err := toolbox.NewManager(cfg)
	require.NoError(t, err)

	store, err := history.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &testEnv{
		t:         t,
		manager:   manager,
		store:     store,
		handler:   NewHandler(manager, store, "test"),
		adminUser: &access.UserInfo{Name: "admin"},
		plainUser: &access.UserInfo{Name: "plain"},
		anonUser:  &access.UserInfo{IsAnonymous: true, AnonymousName: "odd-yak-01"},
		localUser: &access.UserInfo{Name: "local", Local: true},
	}
}

type result struct {
	stdout   string
	stderr   string
	exitCode int
}

func (e *testEnv) run(ctx *CommandContext, stdin string, args ...string) result {
	e.t.Helper()

	var out testutil.OutputCapture
	ctx.In = strings.NewReader(stdin)
	ctx.Out = &out.Out
	ctx.Err = &out.Err

	code := e.handler.Execute(ctx, args)
	return result{stdout: out.Stdout(), stderr: out.Stderr(), exitCode: code}
}

// session registers a stored session so runs are recorded against it.
func (e *testEnv) session(user *access.UserInfo) *CommandContext {
	e.t.Helper()
	s := server.NewSession(user, "127.0.0.1:2222", history.ModeCLI)
	require.NoError(e.t, e.store.CreateSession(s.ToHistorySession()))
	return &CommandContext{User: user, SessionInfo: s}
}

// sshContext is an ssh.Context holding only middleware values.
type sshContext struct {
	ssh.Context
	values map[any]any
}

func (c *sshContext) Value(key any) any { return c.values[key] }
func (c *sshContext) SetValue(key, value any) { c.values[key] = value }

// sshSession is an ssh.Session that only carries a context.
type sshSession struct {
	ssh.Session
	ctx *sshContext
}

func (s *sshSession) Context() ssh.Context { return s.ctx }

func TestHandler_ForSessionPrefersMiddlewareValues(t *testing.T) {
	env := newTestEnv(t)
	shared := NewHandler(nil, nil, "test")

	var got *Handler
	chain := server.ManagerMiddleware(env.manager)(
		server.HistoryMiddleware(env.store)(func(s ssh.Session) {
			got = shared.forSession(s)
		}),
	)
	chain(&sshSession{ctx: &sshContext{values: map[any]any{}}})

	require.NotNil(t, got)
	assert.Same(t, env.manager, got.manager)
	assert.Same(t, env.store, got.historyStore)
	assert.Nil(t, shared.manager, "the shared handler is left alone")

	// Without middleware values the handler's own are kept
	bare := env.handler.forSession(&sshSession{ctx: &sshContext{values: map[any]any{}}})
	assert.Same(t, env.manager, bare.manager)
}

func fixedGenerator() *namegen.Generator {
	v := vocab.New(
		[]vocab.Animal{{Name: "fox", Emoji: "🦊"}, {Name: "yak"}},
		[]string{"big", "bold"},
	)
	return namegen.New(vocab.NewSampler(v, rand.NewPCG(7, 7)))
}

// --- generate ---

func TestGenerate_Plain(t *testing.T) {
	env := newTestEnv(t)

	ctx := &CommandContext{User: env.plainUser, Generator: fixedGenerator()}
	res := env.run(ctx, "", "generate", "--count=5", "--style=kebab", "--format=plain")
	require.Equal(t, 0, res.exitCode, res.stderr)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		assert.Regexp(t, `^b(ig|old)-(fox🦊|yak)$`, line)
	}
}

func TestGenerate_JSON(t *testing.T) {
	env := newTestEnv(t)

	ctx := &CommandContext{User: env.plainUser, Generator: fixedGenerator()}
	res := env.run(ctx, "", "generate", "-n", "30", "-a", "0", "--emoji", "-f", "json")
	require.Equal(t, 0, res.exitCode, res.stderr)

	var got struct {
		Names []string `json:"names"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	require.Len(t, got.Names, 30)
	for _, name := range got.Names {
		assert.Equal(t, "Fox🦊", name)
	}
}

func TestGenerate_Grid(t *testing.T) {
	env := newTestEnv(t)

	ctx := &CommandContext{User: env.plainUser, Generator: fixedGenerator()}
	res := env.run(ctx, "", "generate", "--count=6", "--adjectives=0", "--initial=y")
	require.Equal(t, 0, res.exitCode, res.stderr)

	assert.Equal(t, 6, strings.Count(res.stdout, "Yak"))
	// Two rows of names plus top and bottom borders
	assert.Len(t, strings.Split(strings.TrimSpace(res.stdout), "\n"), 4)
}

func TestGenerate_ZeroCount(t *testing.T) {
	env := newTestEnv(t)

	res := env.run(&CommandContext{User: env.plainUser}, "", "generate", "--count=0")
	assert.Equal(t, 0, res.exitCode)
	assert.Empty(t, res.stdout)
}

func TestGenerate_InvalidOptions(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"count too high", []string{"--count=31"}, "count: must be between 0 and 30"},
		{"too many adjectives", []string{"--adjectives=4"}, "adjectives: must be between 0 and 3"},
		{"bad style", []string{"--style=shouty"}, "style"},
		{"bad initial", []string{"--initial=7"}, "initial: must be a single letter"},
		{"bad format", []string{"--format=xml"}, "unknown format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.run(&CommandContext{User: env.plainUser}, "", append([]string{"generate"}, tt.args...)...)
			assert.Equal(t, 1, res.exitCode)
			assert.Contains(t, res.stderr, tt.want)
		})
	}
}

func TestGenerate_AccessDenied(t *testing.T) {
	env := newTestEnv(t)

	ctx := env.session(env.anonUser)
	res := env.run(ctx, "", "generate")
	assert.Equal(t, 1, res.exitCode)
	assert.Contains(t, res.stderr, "access denied")

	denied, err := env.store.ListAuditLog(ctx.GetSessionID(), history.ActionDenied, zeroTime, 0)
	require.NoError(t, err)
	assert.Len(t, denied, 1)
}

// --- hash ---

func TestHash_JSONGolden(t *testing.T) {
	env := newTestEnv(t)

	res := env.run(&CommandContext{User: env.plainUser}, "", "hash", "--format=json", "abc")
	require.Equal(t, 0, res.exitCode, res.stderr)

	testutil.GoldenJSON(t, "hash_abc_json", []byte(res.stdout))
}

func TestHash_InputTypes(t *testing.T) {
	env := newTestEnv(t)

	const sha256abc = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"text argument", "", []string{"abc"}},
		{"text stdin", "abc", nil},
		{"base64", "", []string{"--type=base64", "YWJj"}},
		{"base64 unpadded with spaces", "", []string{"-t", "Base64Binary", " YW Jj\n"}},
		{"hex", "", []string{"--type=hex", "616263"}},
		{"hex stdin", "61 62 63\n", []string{"--type=hex"}},
		{"file stdin", "abc", []string{"--type=file"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"hash", "--algorithm=sha256", "--format=plain"}, tt.args...)
			res := env.run(&CommandContext{User: env.plainUser}, tt.stdin, args...)
			require.Equal(t, 0, res.exitCode, res.stderr)
			assert.Equal(t, sha256abc+"\n", res.stdout)
		})
	}
}

func TestHash_Table(t *testing.T) {
	env := newTestEnv(t)

	res := env.run(&CommandContext{User: env.plainUser}, "", "hash", "")
	require.Equal(t, 0, res.exitCode, res.stderr)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "ALGORITHM\tDIGEST", lines[0])
	assert.Equal(t, "MD5\td41d8cd98f00b204e9800998ecf8427e", lines[1])
	assert.Equal(t, "SHA1\tda39a3ee5e6b4b0d3255bfef95601890afd80709", lines[2])
}

func TestHash_Malformed(t *testing.T) {
	env := newTestEnv(t)

	ctx := env.session(env.plainUser)
	res := env.run(ctx, "", "hash", "--type=hex", "abc")
	assert.Equal(t, 1, res.exitCode)
	assert.Contains(t, res.stderr, "malformed input")
	assert.Empty(t, res.stdout)

	records, err := env.store.ListActivity(ctx.GetSessionID(), applet.PathHashDigest, zeroTime, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Error, "malformed input")
}

func TestHash_LocalFile(t *testing.T) {
	env := newTestEnv(t)
	path := testutil.Fixture(t, "bytes.bin")

	res := env.run(&CommandContext{User: env.localUser}, "", "hash", "--type=file", "--algorithm=md5", "-f", "plain", path)
	require.Equal(t, 0, res.exitCode, res.stderr)
	assert.Equal(t, "e2c865db4162bed963bfaa9ef6ac18f0\n", res.stdout)

	// Same bytes through the stdin path
	stdin := string(testutil.ReadFixture(t, "bytes.bin"))
	res = env.run(&CommandContext{User: env.plainUser}, stdin, "hash", "--type=file", "--algorithm=md5", "-f", "plain")
	require.Equal(t, 0, res.exitCode, res.stderr)
	assert.Equal(t, "e2c865db4162bed963bfaa9ef6ac18f0\n", res.stdout)
}

func TestHash_FileNeedsFilesLevel(t *testing.T) {
	env := newTestEnv(t)

	res := env.run(&CommandContext{User: env.plainUser}, "", "hash", "--type=file", "bytes.bin")
	assert.Equal(t, 1, res.exitCode)
	assert.Contains(t, res.stderr, "access denied")
}

func TestHash_BadFlags(t *testing.T) {
	env := newTestEnv(t)

	res := env.run(&CommandContext{User: env.plainUser}, "", "hash", "--type=rot13", "abc")
	assert.Equal(t, 1, res.exitCode)
	assert.Contains(t, res.stderr, "unknown input type")

	res = env.run(&CommandContext{User: env.plainUser}, "", "hash", "--algorithm=crc32", "abc")
	assert.Equal(t, 1, res.exitCode)
	assert.Contains(t, res.stderr, "unknown algorithm")
}

// --- information ---

func TestStyles_Golden(t *testing.T) {
	env := newTestEnv(t)

	res := env.run(&CommandContext{User: env.anonUser}, "", "styles")
	require.Equal(t, 0, res.exitCode, res.stderr)
	testutil.Golden(t, "styles", []byte(res.stdout))
}

func TestApplets(t *testing.T) {
	env := newTestEnv(t)

	res := env.run(&CommandContext{User: env.plainUser}, "", "applets")
	require.Equal(t, 0, res.exitCode, res.stderr)
	assert.Contains(t, res.stdout, applet.PathNameGenerator+"\tAdjective Animal Generator\tuse")
	assert.Contains(t, res.stdout, applet.PathHashDigest+"\tHash Digest Generator\tuse")

	res = env.run(&CommandContext{User: env.anonUser}, "", "ls")
	assert.Equal(t, "No applets available\n", res.stdout)
}

func TestWhoami(t *testing.T) {
	env := newTestEnv(t)

	res := env.run(&CommandContext{User: env.adminUser}, "", "whoami", "--format=json")
	require.Equal(t, 0, res.exitCode, res.stderr)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Equal(t, "admin", info["name"])
	assert.Equal(t, true, info["admin"])

	res = env.run(&CommandContext{User: env.anonUser}, "", "whoami")
	assert.Contains(t, res.stdout, "User:\todd-yak-01")
	assert.Contains(t, res.stdout, "Anonymous:\ttrue")
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	res := env.run(&CommandContext{User: env.anonUser}, "", "version")
	assert.Equal(t, "toolbox test\n", res.stdout)
}

func TestUnknownCommand(t *testing.T) {
	env := newTestEnv(t)

	res := env.run(&CommandContext{User: env.plainUser}, "", "frobnicate")
	assert.Equal(t, 1, res.exitCode)
	assert.Contains(t, res.stderr, "unknown command")
}

// --- admin ---

func TestAdmin_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	for _, cmd := range []string{"sessions", "history", "audit", "reload-config"} {
		t.Run(cmd, func(t *testing.T) {
			res := env.run(&CommandContext{User: env.plainUser}, "", cmd)
			assert.Equal(t, 1, res.exitCode)
			assert.Contains(t, res.stderr, "admin access required")
		})
	}
}

func TestAdmin_History(t *testing.T) {
	env := newTestEnv(t)

	ctx := env.session(env.plainUser)
	ctx.Generator = fixedGenerator()
	require.Equal(t, 0, env.run(ctx, "", "generate", "--count=3").exitCode)
	require.Equal(t, 0, env.run(ctx, "", "hash", "--type=hex", "00ff").exitCode)

	admin := env.session(env.adminUser)
	res := env.run(admin, "", "history")
	require.Equal(t, 0, res.exitCode, res.stderr)
	assert.Contains(t, res.stdout, applet.PathNameGenerator+"\t3\t-")
	assert.Contains(t, res.stdout, applet.PathHashDigest+"\t5\t2 B")

	res = env.run(admin, "", "history", "--user=plain", "--format=json")
	require.Equal(t, 0, res.exitCode, res.stderr)
	var records []history.Activity
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &records))
	require.Len(t, records, 2)
	// Only the size of hash input is kept
	assert.NotContains(t, records[0].Params, "00ff")
}

func TestAdmin_LocalMode(t *testing.T) {
	env := newTestEnv(t)
	handler := NewHandler(env.manager, nil, "test")

	var out testutil.OutputCapture
	err := handler.HandleLocal(NewLocalContext(env.localUser, []string{"history"}, strings.NewReader(""), &out.Out, &out.Err))
	assert.Error(t, err)
	assert.Contains(t, out.Stderr(), "not available in local mode")

	out = testutil.OutputCapture{}
	err = handler.HandleLocal(NewLocalContext(env.localUser, []string{"sessions"}, strings.NewReader(""), &out.Out, &out.Err))
	assert.Error(t, err)
	assert.Contains(t, out.Stderr(), "only available in SSH server mode")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", formatDuration(42*1e9))
	assert.Equal(t, "2m5s", formatDuration(125*1e9))
	assert.Equal(t, "1h1m", formatDuration(3660*1e9))
}

var zeroTime time.Time
