package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"langagent/store"
)

// StateGraph represents a state-based workflow graph. Nodes hold functions
// operating on an opaque state value; edges and conditional edges decide which
// nodes run in the next lockstep.
type StateGraph struct {
	// nodes is a map of node names to their corresponding Node objects
	nodes map[string]Node

	// edges is a slice of Edge objects representing the connections between nodes
	edges []Edge

	// conditionalEdges maps a "From" node to a function deriving the "To" node at runtime
	conditionalEdges map[string]func(ctx context.Context, state any) string

	// entryPoint is the name of the entry point node in the graph
	entryPoint string

	// retryPolicy defines retry behavior for failed nodes
	retryPolicy *RetryPolicy

	// stateMerger merges states when multiple nodes run in one step
	stateMerger StateMerger

	// checkpoints receives a checkpoint after every completed step when set
	checkpoints store.CheckpointStore
}

// NewStateGraph creates a new, empty StateGraph.
func NewStateGraph() *StateGraph {
	return &StateGraph{
		nodes:            make(map[string]Node),
		conditionalEdges: make(map[string]func(ctx context.Context, state any) string),
	}
}

// AddNode adds a new node to the state graph with the given name, description and function.
func (g *StateGraph) AddNode(name string, description string, fn func(ctx context.Context, state any) (any, error)) {
	g.nodes[name] = Node{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds a new edge to the state graph between the "from" and "to" nodes.
func (g *StateGraph) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// AddConditionalEdge adds a conditional edge where the target node is determined at runtime.
func (g *StateGraph) AddConditionalEdge(from string, condition func(ctx context.Context, state any) string) {
	g.conditionalEdges[from] = condition
}

// SetEntryPoint sets the entry point node name for the state graph.
func (g *StateGraph) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetRetryPolicy sets the retry policy applied to every node.
func (g *StateGraph) SetRetryPolicy(policy *RetryPolicy) {
	g.retryPolicy = policy
}

// SetStateMerger sets the state merger function for the state graph.
func (g *StateGraph) SetStateMerger(merger StateMerger) {
	g.stateMerger = merger
}

// SetCheckpointStore enables checkpointing after every step.
func (g *StateGraph) SetCheckpointStore(cs store.CheckpointStore) {
	g.checkpoints = cs
}

// StateRunnable represents a compiled state graph that can be invoked.
type StateRunnable struct {
	graph *StateGraph
}

// Compile validates the state graph and returns a StateRunnable instance.
func (g *StateGraph) Compile() (*StateRunnable, error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, g.entryPoint)
	}
	return &StateRunnable{graph: g}, nil
}

// Invoke executes the compiled state graph with the given input state.
func (r *StateRunnable) Invoke(ctx context.Context, initialState any) (any, error) {
	return r.InvokeWithConfig(ctx, initialState, nil)
}

// InvokeWithConfig executes the compiled state graph with the given input state and config.
func (r *StateRunnable) InvokeWithConfig(ctx context.Context, initialState any, config *Config) (any, error) {
	state := initialState
	currentNodes := []string{r.graph.entryPoint}

	executionID := ""
	if config != nil {
		if len(config.ResumeFrom) > 0 {
			currentNodes = config.ResumeFrom
		}
		executionID = config.ExecutionID
	}
	if executionID == "" {
		executionID = uuid.New().String()
	}

	version := 0
	for len(currentNodes) > 0 {
		// Filter out END nodes
		activeNodes := make([]string, 0, len(currentNodes))
		for _, node := range currentNodes {
			if node != END {
				activeNodes = append(activeNodes, node)
			}
		}
		currentNodes = activeNodes

		if len(currentNodes) == 0 {
			break
		}

		results, errs := r.executeNodesParallel(ctx, currentNodes, state)
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}

		var err error
		state, err = r.mergeState(ctx, state, results)
		if err != nil {
			return nil, err
		}

		version++
		if r.graph.checkpoints != nil {
			if err := r.saveCheckpoint(ctx, executionID, currentNodes, state, version); err != nil {
				return nil, err
			}
		}

		currentNodes, err = r.determineNextNodes(ctx, currentNodes, state)
		if err != nil {
			return nil, err
		}
	}

	return state, nil
}

func (r *StateRunnable) saveCheckpoint(ctx context.Context, executionID string, nodes []string, state any, version int) error {
	cp := &store.Checkpoint{
		ID:        uuid.New().String(),
		NodeName:  strings.Join(nodes, ","),
		State:     state,
		Timestamp: time.Now(),
		Version:   version,
		Metadata: map[string]any{
			"execution_id": executionID,
		},
	}
	if err := r.graph.checkpoints.Save(ctx, cp); err != nil {
		return fmt.Errorf("failed to save checkpoint after %s: %w", cp.NodeName, err)
	}
	return nil
}

// executeNodesParallel runs the given nodes concurrently and returns their results or errors.
func (r *StateRunnable) executeNodesParallel(ctx context.Context, nodes []string, state any) ([]any, []error) {
	var wg sync.WaitGroup
	results := make([]any, len(nodes))
	errs := make([]error, len(nodes))

	for i, nodeName := range nodes {
		node, ok := r.graph.nodes[nodeName]
		if !ok {
			errs[i] = fmt.Errorf("%w: %s", ErrNodeNotFound, nodeName)
			continue
		}

		idx := i
		n := node
		name := nodeName

		safeGo(&wg, func() {
			res, err := r.executeNodeWithRetry(ctx, n, state)
			if err != nil {
				errs[idx] = fmt.Errorf("error in node %s: %w", name, err)
				return
			}
			results[idx] = res
		}, func(panicVal any) {
			errs[idx] = fmt.Errorf("panic in node %s: %v", name, panicVal)
		})
	}
	wg.Wait()
	return results, errs
}

// executeNodeWithRetry executes a node, retrying per the graph's retry policy.
func (r *StateRunnable) executeNodeWithRetry(ctx context.Context, node Node, state any) (any, error) {
	var lastErr error

	maxAttempts := 1
	if r.graph.retryPolicy != nil {
		maxAttempts = r.graph.retryPolicy.MaxRetries + 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := node.Function(ctx, state)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if r.graph.retryPolicy == nil || attempt == maxAttempts-1 || !r.isRetryableError(err) {
			break
		}

		if delay := r.backoffDelay(attempt); delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, lastErr
}

// isRetryableError checks if an error is retryable based on the retry policy.
// An empty RetryableErrors list retries everything.
func (r *StateRunnable) isRetryableError(err error) bool {
	policy := r.graph.retryPolicy
	if policy == nil {
		return false
	}
	if len(policy.RetryableErrors) == 0 {
		return true
	}

	msg := err.Error()
	for _, pattern := range policy.RetryableErrors {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// backoffDelay calculates the delay before the next retry attempt.
func (r *StateRunnable) backoffDelay(attempt int) time.Duration {
	policy := r.graph.retryPolicy
	if policy == nil {
		return 0
	}

	baseDelay := policy.BaseDelay
	if baseDelay == 0 {
		baseDelay = time.Second
	}

	switch policy.BackoffStrategy {
	case ExponentialBackoff:
		return baseDelay * time.Duration(1<<attempt)
	case LinearBackoff:
		return baseDelay * time.Duration(attempt+1)
	default:
		return baseDelay
	}
}

// mergeState merges the step results into the current state.
func (r *StateRunnable) mergeState(ctx context.Context, currentState any, results []any) (any, error) {
	if r.graph.stateMerger != nil {
		state, err := r.graph.stateMerger(ctx, currentState, results)
		if err != nil {
			return nil, fmt.Errorf("state merge failed: %w", err)
		}
		return state, nil
	}
	if len(results) > 0 {
		return results[len(results)-1], nil
	}
	return currentState, nil
}

// determineNextNodes computes the next lockstep from conditional edges first, then static edges.
// Fan-out is allowed (multiple edges from one node); fan-in targets are deduplicated.
func (r *StateRunnable) determineNextNodes(ctx context.Context, currentNodes []string, state any) ([]string, error) {
	nextNodesSet := make(map[string]bool)
	var nextNodes []string

	add := func(name string) {
		if !nextNodesSet[name] {
			nextNodesSet[name] = true
			nextNodes = append(nextNodes, name)
		}
	}

	for _, nodeName := range currentNodes {
		if condition, ok := r.graph.conditionalEdges[nodeName]; ok {
			next := condition(ctx, state)
			if next == "" {
				return nil, fmt.Errorf("conditional edge returned empty next node from %s", nodeName)
			}
			add(next)
			continue
		}

		found := false
		for _, edge := range r.graph.edges {
			if edge.From == nodeName {
				add(edge.To)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrNoOutgoingEdge, nodeName)
		}
	}

	return nextNodes, nil
}

// safeGo runs fn in a goroutine tracked by wg, routing panics to onPanic.
func safeGo(wg *sync.WaitGroup, fn func(), onPanic func(any)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				onPanic(r)
			}
		}()
		fn()
	}()
}
