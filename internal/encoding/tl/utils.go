// Copyright (c) 2024 RoseLoverX

package tl

// padding4 returns how many zero bytes bring n up to a multiple of WordLen.
func padding4(n int) int {
	if n%WordLen == 0 {
		return 0
	}
	return WordLen - n%WordLen
}
