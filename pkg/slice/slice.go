// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice holds the generic helpers the screens use to turn backend rows
into view models.
*/
package slice

// Map converts every element. A nil input stays nil.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}
	return result
}

// FilterMap converts each element and keeps those reported as valid.
// Order is preserved and the result is never nil, so an all-dropped input
// still renders as an empty list.
func FilterMap[T any, U any](input []T, transform func(T) (U, bool)) []U {
	result := make([]U, 0, len(input))
	for _, v := range input {
		if mapped, keep := transform(v); keep {
			result = append(result, mapped)
		}
	}
	return result
}
