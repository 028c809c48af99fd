package util

import (
	"reflect"
	"sort"
)

// CopyInts copies a slice of ints.
func CopyInts(input []int) []int {
	results := make([]int, len(input))
	copy(results, input)
	return results
}

// SameElements determines whether two int slices have the
// same elements (in any order).
func SameElements(slice1 []int, slice2 []int) bool {
	if len(slice1) != len(slice2) {
		return false
	}

	slice1Counts := map[int]int{}
	for _, s := range slice1 {
		slice1Counts[s]++
	}

	slice2Counts := map[int]int{}
	for _, s := range slice2 {
		slice2Counts[s]++
	}

	return reflect.DeepEqual(slice1Counts, slice2Counts)
}

// DistinctSorted returns the distinct values in the input, sorted ascending.
func DistinctSorted(input []int) []int {
	seen := map[int]struct{}{}
	results := []int{}

	for _, value := range input {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		results = append(results, value)
	}

	sort.Ints(results)
	return results
}

// Subtract returns the values in slice1 that do not appear in slice2,
// preserving the order of slice1.
func Subtract(slice1 []int, slice2 []int) []int {
	inSlice2 := map[int]struct{}{}
	for _, s := range slice2 {
		inSlice2[s] = struct{}{}
	}

	results := []int{}
	for _, s := range slice1 {
		if _, ok := inSlice2[s]; !ok {
			results = append(results, s)
		}
	}
	return results
}

// SortedStringKeys returns the keys of the argument map, sorted.
func SortedStringKeys(input map[string]struct{}) []string {
	keys := []string{}
	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
