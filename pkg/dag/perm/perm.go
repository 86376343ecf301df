// Package perm enumerates permutations of small index sets.
//
// The layout orderer uses it to try every arrangement of short rows after
// the barycentric sweeps have settled, which is cheap for the two to six
// siblings a typical family row holds.
package perm

import "slices"

// Seq returns [0, 1, ..., n-1]. It returns an empty slice for n <= 0.
func Seq(n int) []int {
	if n <= 0 {
		return []int{}
	}
	result := make([]int, n)
	for i := range result {
		result[i] = i
	}
	return result
}

// Factorial returns n!, or 1 for n <= 1.
func Factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		result *= i
	}
	return result
}

// Each calls fn with every permutation of [0, n) using Heap's algorithm and
// returns the number of permutations visited. The slice passed to fn is
// reused between calls; clone it to keep it. Enumeration stops early when fn
// returns false.
func Each(n int, fn func([]int) bool) int {
	p := Seq(n)
	if !fn(p) {
		return 1
	}
	visited := 1
	state := make([]int, n)
	for i := 0; i < n; {
		if state[i] < i {
			if i&1 == 0 {
				p[0], p[i] = p[i], p[0]
			} else {
				p[state[i]], p[i] = p[i], p[state[i]]
			}
			visited++
			if !fn(p) {
				return visited
			}
			state[i]++
			i = 0
		} else {
			state[i] = 0
			i++
		}
	}
	return visited
}

// Generate returns up to limit permutations of [0, n); limit <= 0 means all
// n! of them. Every returned slice is a separate allocation.
func Generate(n, limit int) [][]int {
	capacity := limit
	if capacity <= 0 {
		capacity = Factorial(min(max(n, 0), 12))
	}
	result := make([][]int, 0, capacity)
	Each(n, func(p []int) bool {
		result = append(result, slices.Clone(p))
		return limit <= 0 || len(result) < limit
	})
	return result
}
