package graph

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langagent/store"
)

func appendNode(name string) func(ctx context.Context, state any) (any, error) {
	return func(ctx context.Context, state any) (any, error) {
		return append(state.([]string), name), nil
	}
}

func TestLinearExecution(t *testing.T) {
	g := NewStateGraph()
	g.AddNode("a", "", appendNode("a"))
	g.AddNode("b", "", appendNode("b"))
	g.AddNode("c", "", appendNode("c"))
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", END)
	g.SetEntryPoint("a")

	runnable, err := g.Compile()
	require.NoError(t, err)

	result, err := runnable.Invoke(context.Background(), []string{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, result)
}

func TestCompileErrors(t *testing.T) {
	g := NewStateGraph()
	g.AddNode("a", "", appendNode("a"))

	_, err := g.Compile()
	assert.ErrorIs(t, err, ErrEntryPointNotSet)

	g.SetEntryPoint("missing")
	_, err = g.Compile()
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestMissingOutgoingEdge(t *testing.T) {
	g := NewStateGraph()
	g.AddNode("a", "", appendNode("a"))
	g.SetEntryPoint("a")

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), []string{})
	assert.ErrorIs(t, err, ErrNoOutgoingEdge)
}

func TestFanOutFanInWithMerger(t *testing.T) {
	var mu sync.Mutex
	var ran []string
	record := func(name string) func(ctx context.Context, state any) (any, error) {
		return func(ctx context.Context, state any) (any, error) {
			mu.Lock()
			ran = append(ran, name)
			mu.Unlock()
			return map[string]bool{name: true}, nil
		}
	}

	g := NewStateGraph()
	g.AddNode("start", "", record("start"))
	g.AddNode("left", "", record("left"))
	g.AddNode("right", "", record("right"))
	g.AddNode("join", "", record("join"))
	g.AddEdge("start", "left")
	g.AddEdge("start", "right")
	g.AddEdge("left", "join")
	g.AddEdge("right", "join")
	g.AddEdge("join", END)
	g.SetEntryPoint("start")
	g.SetStateMerger(func(ctx context.Context, current any, newStates []any) (any, error) {
		merged := map[string]bool{}
		if m, ok := current.(map[string]bool); ok {
			for k := range m {
				merged[k] = true
			}
		}
		for _, ns := range newStates {
			for k := range ns.(map[string]bool) {
				merged[k] = true
			}
		}
		return merged, nil
	})

	runnable, err := g.Compile()
	require.NoError(t, err)

	result, err := runnable.Invoke(context.Background(), map[string]bool{})
	require.NoError(t, err)

	merged := result.(map[string]bool)
	for _, name := range []string{"start", "left", "right", "join"} {
		assert.True(t, merged[name], "missing contribution from %s", name)
	}

	// left and right run in the same lockstep, join runs exactly once after both.
	sort.Strings(ran[1:3])
	assert.Equal(t, []string{"start", "left", "right", "join"}, ran)
}

func TestConditionalEdgeRouting(t *testing.T) {
	g := NewStateGraph()
	g.AddNode("start", "", func(ctx context.Context, state any) (any, error) {
		return state, nil
	})
	g.AddNode("high", "", appendNode("high"))
	g.AddNode("low", "", appendNode("low"))
	g.AddConditionalEdge("start", func(ctx context.Context, state any) string {
		if len(state.([]string)) > 0 {
			return "high"
		}
		return "low"
	})
	g.AddEdge("high", END)
	g.AddEdge("low", END)
	g.SetEntryPoint("start")

	runnable, err := g.Compile()
	require.NoError(t, err)

	result, err := runnable.Invoke(context.Background(), []string{})
	require.NoError(t, err)
	assert.Equal(t, []string{"low"}, result)

	result, err = runnable.Invoke(context.Background(), []string{"seed"})
	require.NoError(t, err)
	assert.Equal(t, []string{"seed", "high"}, result)
}

func TestConditionalEdgeEmptyTarget(t *testing.T) {
	g := NewStateGraph()
	g.AddNode("start", "", appendNode("start"))
	g.AddConditionalEdge("start", func(ctx context.Context, state any) string {
		return ""
	})
	g.SetEntryPoint("start")

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), []string{})
	assert.ErrorContains(t, err, "conditional edge returned empty next node")
}

func TestNodeErrorStopsExecution(t *testing.T) {
	boom := errors.New("boom")

	g := NewStateGraph()
	g.AddNode("a", "", appendNode("a"))
	g.AddNode("b", "", func(ctx context.Context, state any) (any, error) {
		return nil, boom
	})
	g.AddEdge("a", "b")
	g.AddEdge("b", END)
	g.SetEntryPoint("a")

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), []string{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "error in node b")
}

func TestNodePanicIsRecovered(t *testing.T) {
	g := NewStateGraph()
	g.AddNode("a", "", func(ctx context.Context, state any) (any, error) {
		panic("unexpected")
	})
	g.AddEdge("a", END)
	g.SetEntryPoint("a")

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "panic in node a")
}

func TestRetryPolicyRetriesUntilSuccess(t *testing.T) {
	attempts := 0

	g := NewStateGraph()
	g.AddNode("flaky", "", func(ctx context.Context, state any) (any, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("rate limit exceeded")
		}
		return "ok", nil
	})
	g.AddEdge("flaky", END)
	g.SetEntryPoint("flaky")
	g.SetRetryPolicy(&RetryPolicy{
		MaxRetries:      3,
		BackoffStrategy: FixedBackoff,
		BaseDelay:       time.Millisecond,
		RetryableErrors: []string{"rate limit"},
	})

	runnable, err := g.Compile()
	require.NoError(t, err)

	result, err := runnable.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestRetryPolicySkipsNonRetryable(t *testing.T) {
	attempts := 0

	g := NewStateGraph()
	g.AddNode("fatal", "", func(ctx context.Context, state any) (any, error) {
		attempts++
		return nil, errors.New("invalid api key")
	})
	g.AddEdge("fatal", END)
	g.SetEntryPoint("fatal")
	g.SetRetryPolicy(&RetryPolicy{
		MaxRetries:      3,
		BaseDelay:       time.Millisecond,
		RetryableErrors: []string{"rate limit"},
	})

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicyEmptyListRetriesEverything(t *testing.T) {
	attempts := 0

	g := NewStateGraph()
	g.AddNode("flaky", "", func(ctx context.Context, state any) (any, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("anything goes")
		}
		return "ok", nil
	})
	g.AddEdge("flaky", END)
	g.SetEntryPoint("flaky")
	g.SetRetryPolicy(&RetryPolicy{MaxRetries: 1, BaseDelay: time.Millisecond})

	runnable, err := g.Compile()
	require.NoError(t, err)

	result, err := runnable.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, attempts)
}

func TestBackoffDelay(t *testing.T) {
	base := 10 * time.Millisecond

	tests := []struct {
		strategy BackoffStrategy
		attempt  int
		want     time.Duration
	}{
		{FixedBackoff, 0, base},
		{FixedBackoff, 3, base},
		{LinearBackoff, 0, base},
		{LinearBackoff, 2, 3 * base},
		{ExponentialBackoff, 0, base},
		{ExponentialBackoff, 3, 8 * base},
	}

	for _, tt := range tests {
		r := &StateRunnable{graph: &StateGraph{
			retryPolicy: &RetryPolicy{BackoffStrategy: tt.strategy, BaseDelay: base},
		}}
		assert.Equal(t, tt.want, r.backoffDelay(tt.attempt), "strategy %v attempt %d", tt.strategy, tt.attempt)
	}
}

func TestCheckpointsSavedPerStep(t *testing.T) {
	cs := store.NewMemoryCheckpointStore()

	g := NewStateGraph()
	g.AddNode("a", "", appendNode("a"))
	g.AddNode("b", "", appendNode("b"))
	g.AddEdge("a", "b")
	g.AddEdge("b", END)
	g.SetEntryPoint("a")
	g.SetCheckpointStore(cs)

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.InvokeWithConfig(context.Background(), []string{}, &Config{ExecutionID: "exec-1"})
	require.NoError(t, err)

	cps, err := cs.List(context.Background(), "exec-1")
	require.NoError(t, err)
	require.Len(t, cps, 2)

	assert.Equal(t, "a", cps[0].NodeName)
	assert.Equal(t, 1, cps[0].Version)
	assert.Equal(t, []string{"a"}, cps[0].State)

	assert.Equal(t, "b", cps[1].NodeName)
	assert.Equal(t, 2, cps[1].Version)
	assert.Equal(t, []string{"a", "b"}, cps[1].State)
}

func TestResumeFromSkipsEarlierNodes(t *testing.T) {
	g := NewStateGraph()
	g.AddNode("a", "", appendNode("a"))
	g.AddNode("b", "", appendNode("b"))
	g.AddNode("c", "", appendNode("c"))
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", END)
	g.SetEntryPoint("a")

	runnable, err := g.Compile()
	require.NoError(t, err)

	result, err := runnable.InvokeWithConfig(context.Background(), []string{"a"}, &Config{
		ResumeFrom: []string{"b"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, result)
}

func TestUnknownNodeInStep(t *testing.T) {
	g := NewStateGraph()
	g.AddNode("a", "", appendNode("a"))
	g.AddEdge("a", "ghost")
	g.SetEntryPoint("a")

	runnable, err := g.Compile()
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), []string{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.ErrorContains(t, err, "ghost")
}
