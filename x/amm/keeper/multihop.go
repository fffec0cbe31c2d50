package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/swapforge/swapforge/x/amm/types"
)

// Route discovery over the pool graph. Assets are vertices and pools are
// edges; paths are bounded by MaxPathLength so enumeration stays cheap even
// on dense registries.

// assetGraph builds an adjacency map from the current pool set.
func (k *Keeper) assetGraph() map[string][]string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	graph := make(map[string][]string)
	for _, pool := range k.pools {
		if pool.ShareSupply.IsZero() {
			continue
		}
		graph[pool.AssetA] = append(graph[pool.AssetA], pool.AssetB)
		graph[pool.AssetB] = append(graph[pool.AssetB], pool.AssetA)
	}
	return graph
}

// FindRoute returns the shortest path (fewest hops) from assetIn to assetOut
// through funded pools, found by breadth-first search.
func (k *Keeper) FindRoute(_ context.Context, assetIn, assetOut string) ([]string, error) {
	if assetIn == assetOut {
		return nil, types.ErrInvalidPath.Wrap("route endpoints must differ")
	}
	graph := k.assetGraph()
	maxLen := k.GetParams().MaxPathLength

	prev := map[string]string{assetIn: assetIn}
	queue := []string{assetIn}
	depth := map[string]int{assetIn: 1}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if depth[current] >= maxLen {
			continue
		}
		for _, next := range graph[current] {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = current
			depth[next] = depth[current] + 1
			if next == assetOut {
				return rebuildPath(prev, assetIn, assetOut), nil
			}
			queue = append(queue, next)
		}
	}
	return nil, types.ErrInvalidPath.Wrapf("no route from %s to %s", assetIn, assetOut)
}

func rebuildPath(prev map[string]string, from, to string) []string {
	var reversed []string
	for at := to; at != from; at = prev[at] {
		reversed = append(reversed, at)
	}
	reversed = append(reversed, from)
	path := make([]string, len(reversed))
	for i, asset := range reversed {
		path[len(reversed)-1-i] = asset
	}
	return path
}

// FindBestRoute enumerates all simple paths from assetIn to assetOut up to
// MaxPathLength and returns the one quoting the highest output for amountIn,
// together with its per-hop quote.
func (k *Keeper) FindBestRoute(ctx context.Context, amountIn math.Int, assetIn, assetOut string) ([]string, []math.Int, error) {
	if assetIn == assetOut {
		return nil, nil, types.ErrInvalidPath.Wrap("route endpoints must differ")
	}
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return nil, nil, types.ErrInsufficientInputAmount.Wrap("input amount must be positive")
	}
	graph := k.assetGraph()
	maxLen := k.GetParams().MaxPathLength

	var (
		bestPath    []string
		bestAmounts []math.Int
	)
	visited := map[string]bool{assetIn: true}
	var walk func(path []string)
	walk = func(path []string) {
		current := path[len(path)-1]
		if current == assetOut {
			amounts, err := k.GetAmountsOut(ctx, amountIn, path)
			if err != nil {
				return
			}
			out := amounts[len(amounts)-1]
			if bestAmounts == nil || out.GT(bestAmounts[len(bestAmounts)-1]) {
				bestPath = append([]string(nil), path...)
				bestAmounts = amounts
			}
			return
		}
		if len(path) >= maxLen {
			return
		}
		for _, next := range graph[current] {
			if visited[next] {
				continue
			}
			visited[next] = true
			walk(append(path, next))
			visited[next] = false
		}
	}
	walk([]string{assetIn})

	if bestPath == nil {
		return nil, nil, types.ErrInvalidPath.Wrapf("no route from %s to %s", assetIn, assetOut)
	}
	return bestPath, bestAmounts, nil
}
