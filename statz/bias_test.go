package main

import (
	"testing"

	"github.com/p7r0x7/md5trace"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

func TestMeanBias(t *testing.T) {
	var ones md5trace.Digest
	for i := range ones {
		ones[i] = 0xff
	}
	/* Every bit always set is as biased as it gets. */
	if got := meanBias([]md5trace.Digest{ones, ones, ones, ones}); got != 100 {
		t.Errorf("bias %v", got)
	}
	if got := meanBias([]md5trace.Digest{ones, {}, ones, {}}); got != 0 {
		t.Errorf("bias %v", got)
	}
}

func TestAvalanche(t *testing.T) {
	if got := avalanche(2000); got < 60 || got > 68 {
		t.Errorf("mean flipped bits %v", got)
	}
}

func TestAgree(t *testing.T) {
	if !agree(200) {
		t.Error("digests disagree")
	}
}

func TestCorpus(t *testing.T) {
	a, b := corpus(100, 1), corpus(100, 1)
	if string(a) != string(b) || string(a) == string(corpus(100, 2)) {
		t.Error("corpus is not keyed by its seed alone")
	}
}
