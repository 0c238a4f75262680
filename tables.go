package md5trace

import "math"

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.
// The constant tables consumed by the compression function. They are derived once, when the
// package is initialized, and are never written to afterwards; every computation shares them.

const (
	rounds        = 4
	stepsPerRound = 16
	StepsPerBlock = rounds * stepsPerRound
	wordsPerBlock = BlockSize / 4
)

// Table holds the 64 additive constants and the per-round rotation amounts of MD5.
type Table struct {
	T [StepsPerBlock]uint32
	S [rounds][4]int
}

// Constants is the process-wide table used by every hash computation.
var Constants = newTable()

func newTable() *Table {
	tab := &Table{S: [rounds][4]int{
		{7, 12, 17, 22},
		{5, 9, 14, 20},
		{4, 11, 16, 23},
		{6, 10, 15, 21},
	}}
	/* T[i] is the integer part of 2^32 * |sin(i+1)|, i in radians. */
	for i := range tab.T {
		tab.T[i] = uint32(math.Floor(math.Abs(math.Sin(float64(i+1))) * (1 << 32)))
	}
	return tab
}

// Shift returns the rotation amount of step i of round r.
func (tab *Table) Shift(r, i int) int { return tab.S[r][i&3] }

// schedule returns the index of the message word consumed by step i of round r.
func schedule(r, i int) int {
	switch r {
	case 0:
		return i
	case 1:
		return (5*i + 1) & 15
	case 2:
		return (3*i + 5) & 15
	default:
		return (7 * i) & 15
	}
}
