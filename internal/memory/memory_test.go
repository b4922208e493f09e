package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxarchive/ctxarchive/internal/config"
	"github.com/ctxarchive/ctxarchive/internal/extract"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 5, 0, time.UTC)

type recordingRunner struct {
	calls [][]string
	err   error
	block bool
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	if r.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return r.err
}

func testConfig() config.MemoryConfig {
	return config.DefaultConfig("/srv/widgets").Memory
}

func TestBuildEntity_Shape(t *testing.T) {
	res := extract.Result{
		Timestamp:    fixedNow,
		CurrentState: "Refactoring the parser.",
		Decisions:    []string{"decided A"},
		Lessons:      []string{"learned B"},
	}

	e := BuildEntity(res, "widgets")

	assert.Equal(t, "session:widgets:20260314-0926", e.Name)
	assert.Equal(t, "session", e.EntityType)
	assert.Equal(t, []string{
		"Archived: 2026-03-14T09:26:05.000000",
		"State: Refactoring the parser.",
		"Decision: decided A",
		"Lesson: learned B",
	}, e.Observations)
}

func TestBuildEntity_Caps(t *testing.T) {
	res := extract.Result{Timestamp: fixedNow}
	for i := 0; i < 8; i++ {
		res.Decisions = append(res.Decisions, fmt.Sprintf("decided %d", i))
		res.Lessons = append(res.Lessons, fmt.Sprintf("learned %d", i))
	}

	e := BuildEntity(res, "widgets")

	var decisions, lessons int
	for _, o := range e.Observations {
		switch {
		case strings.HasPrefix(o, "Decision: "):
			decisions++
		case strings.HasPrefix(o, "Lesson: "):
			lessons++
		}
	}
	assert.Equal(t, 5, decisions)
	assert.Equal(t, 3, lessons)
	assert.Contains(t, e.Observations, "Decision: decided 4")
	assert.NotContains(t, e.Observations, "Decision: decided 5")
}

func TestBuildEntity_Truncation(t *testing.T) {
	res := extract.Result{
		Timestamp:    fixedNow,
		CurrentState: strings.Repeat("s", 500),
		Decisions:    []string{strings.Repeat("d", 200)},
	}

	e := BuildEntity(res, "widgets")
	assert.Equal(t, "State: "+strings.Repeat("s", 200), e.Observations[1])
	assert.Equal(t, "Decision: "+strings.Repeat("d", 100), e.Observations[2])
}

func TestBuildEntity_EmptyState(t *testing.T) {
	e := BuildEntity(extract.Result{Timestamp: fixedNow}, "widgets")
	assert.Equal(t, []string{"Archived: 2026-03-14T09:26:05.000000", "State: Working session"}, e.Observations)
}

func TestEncode(t *testing.T) {
	payload, err := Encode(Entity{Name: "n", EntityType: "session", Observations: []string{"o"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"entities":[{"name":"n","entityType":"session","observations":["o"]}]}`, payload)
}

func TestBridge_Save_InvokesCommand(t *testing.T) {
	runner := &recordingRunner{}
	res := extract.Result{Timestamp: fixedNow, Decisions: []string{"decided X"}}

	err := NewBridge(testConfig(), runner).Save(context.Background(), res, "widgets")
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	require.Len(t, call, 4)
	assert.Equal(t, []string{"mcp-cli", "call", "memory/create_entities"}, call[:3])

	var p Payload
	require.NoError(t, json.Unmarshal([]byte(call[3]), &p))
	require.Len(t, p.Entities, 1)
	assert.Equal(t, "session:widgets:20260314-0926", p.Entities[0].Name)
	assert.Contains(t, p.Entities[0].Observations, "Decision: decided X")
}

func TestBridge_Save_RunnerError(t *testing.T) {
	runner := &recordingRunner{err: errors.New("exit status 1")}

	err := NewBridge(testConfig(), runner).Save(context.Background(), extract.Result{Timestamp: fixedNow}, "w")
	assert.Error(t, err)
}

func TestBridge_Save_Timeout(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	runner := &recordingRunner{block: true}

	err := NewBridge(cfg, runner).Save(context.Background(), extract.Result{Timestamp: fixedNow}, "w")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestBridge_ConfigArgsNotAliased(t *testing.T) {
	cfg := testConfig()
	b := NewBridge(cfg, &recordingRunner{})
	cfg.Args[0] = "changed"
	assert.Equal(t, "call", b.args[0])
}

func TestExecRunner(t *testing.T) {
	ctx := context.Background()
	r := ExecRunner{}

	assert.NoError(t, r.Run(ctx, "sh", "-c", "exit 0"))

	err := r.Run(ctx, "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code 3")
	assert.Contains(t, err.Error(), "boom")

	err = r.Run(ctx, filepath.Join(t.TempDir(), "no-such-binary"))
	assert.Error(t, err)
}

func TestExecRunner_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := ExecRunner{}.Run(ctx, "sleep", "5")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBridge_Save_TimeoutWithLingeringGrandchild(t *testing.T) {
	cfg := testConfig()
	cfg.Command = "sh"
	cfg.Args = []string{"-c", "sleep 4; true"}
	cfg.Timeout = 300 * time.Millisecond

	start := time.Now()
	err := NewBridge(cfg, ExecRunner{}).Save(context.Background(), extract.Result{Timestamp: fixedNow}, "w")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out after 300ms")
	assert.Less(t, elapsed, cfg.Timeout+pipeWaitDelay+time.Second)
}

func TestExecRunner_StderrTruncatedByCharacter(t *testing.T) {
	// 199 ASCII bytes followed by multi-byte runes straddle the byte limit.
	script := `printf '%199s' '' | tr ' ' a >&2; printf 'ééééé' >&2; exit 1`

	err := ExecRunner{}.Run(context.Background(), "sh", "-c", script)
	require.Error(t, err)

	msg := err.Error()
	assert.True(t, utf8.ValidString(msg), "stderr excerpt must not split a character")
	assert.True(t, strings.HasSuffix(msg, strings.Repeat("a", 199)+"é..."), msg)
}
