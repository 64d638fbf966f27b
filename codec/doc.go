// Package codec compresses the geometry and connectivity of one mesh node.
//
// An indexed node is encoded by walking its faces from a front of open edges.
// Each front edge produces one connectivity symbol:
//
//	VERTEX    the face across the edge brings a new vertex
//	LEFT      the face closes against the previous front edge
//	RIGHT     the face closes against the next front edge
//	END       the face closes both sides, retiring three edges
//	BOUNDARY  there is no face across the edge
//	DELAY     the far vertex is already known; retry the edge later
//
// Ready edges come from a FIFO queue. Delayed edges go to a stack that is only
// drained once the queue is empty; an edge taken from the stack is never
// delayed again and, if nothing else applies, references its far vertex by
// index. When both are empty the lowest unvisited face seeds a new component.
//
// New vertices are predicted with the parallelogram rule from the face across
// the edge, and their residuals are written as a width symbol followed by
// biased fixed width values. Normals are estimated from the decoded geometry so
// only open boundary vertices carry a residual. Colors are differenced in a
// luma/chroma space. Point clouds are sorted along a Morton curve, duplicates
// dropped, and their keys delta coded.
//
// Symbols and widths go to per-channel tunstall dictionaries; the remaining
// bits go to a packed bitstream following the channels of each record:
//
//	position grid [texture grid]
//	indexed:      clers, position widths, [texture widths], bitstream
//	point cloud:  key magnitudes, bitstream
//	[normals]     bits, magnitudes, signs, bitstream
//	[colors]      4 × bits, 4 × magnitudes, bitstream
//
// Encoder and Decoder keep no state between calls and are safe for concurrent
// use on different nodes.
package codec
