// Package render prints md5trace traces for people. A trace is first arranged into a tree of
// tagged nodes (trace, block, round, step) and each kind of node has exactly one function that
// prints it, in whichever style the Renderer was built with.
package render

import (
	"strconv"

	"github.com/p7r0x7/md5trace"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Kind tags the payload of a Node.
type Kind uint8

const (
	KindTrace Kind = iota
	KindBlock
	KindRound
	KindStep
)

func (k Kind) String() string {
	switch k {
	case KindTrace:
		return "trace"
	case KindBlock:
		return "block"
	case KindRound:
		return "round"
	default:
		return "step"
	}
}

// Node is one entry of a collapsible trace. Trace is set for every kind, Block for blocks and
// everything beneath them, Round for rounds and steps, Step only for steps.
type Node struct {
	Kind     Kind
	Label    string
	Trace    *md5trace.FullTrace
	Block    *md5trace.BlockTrace
	Round    int
	Step     *md5trace.Step
	Children []*Node
}

// Tree arranges tr as trace → blocks → rounds → steps. Labels count from 1.
func Tree(tr *md5trace.FullTrace) *Node {
	root := &Node{Kind: KindTrace, Label: "MD5 " + tr.Digest.String(), Trace: tr}
	for bi := range tr.Blocks {
		b := &tr.Blocks[bi]
		bn := &Node{Kind: KindBlock, Label: "Block " + strconv.Itoa(b.Index+1), Trace: tr, Block: b}
		for r := 0; r < 4; r++ {
			rn := &Node{
				Kind:  KindRound,
				Label: "Round " + strconv.Itoa(r+1) + " (" + md5trace.RoundFunc(r).String() + ")",
				Trace: tr, Block: b, Round: r}
			steps := b.Round(r)
			for i := range steps {
				rn.Children = append(rn.Children, &Node{
					Kind: KindStep, Label: "Step " + strconv.Itoa(i+1),
					Trace: tr, Block: b, Round: r, Step: &steps[i]})
			}
			bn.Children = append(bn.Children, rn)
		}
		root.Children = append(root.Children, bn)
	}
	return root
}

// Walk visits n and its descendants depth-first, stopping early when fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Steps returns the step nodes beneath n in execution order.
func (n *Node) Steps() []*Node {
	var steps []*Node
	n.Walk(func(c *Node) bool {
		if c.Kind == KindStep {
			steps = append(steps, c)
		}
		return true
	})
	return steps
}
