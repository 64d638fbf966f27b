// Package tunstall implements a variable-to-fixed entropy coder over byte symbols.
//
// A Tunstall dictionary maps variable-length runs of input symbols to fixed
// 8-bit codes. The dictionary is grown from a probability table by repeatedly
// splitting the most probable word into its one-symbol extensions, so that
// frequent runs collapse into a single output byte. Probabilities are kept in
// integer fixed point, which makes the dictionary identical on every platform.
//
// Channel records carry their own probability table so a reader can rebuild
// the dictionary:
//
//	w := stream.NewByteWriter(endian.GetLittleEndianEngine())
//	stats, err := tunstall.WriteChannel(w, residuals)
//	...
//	r := stream.NewByteReader(w.Bytes(), endian.GetLittleEndianEngine())
//	residuals, err = tunstall.ReadChannel(r, maxLen)
//
// Encoding walks precomputed tables that resolve several input symbols per
// step (see WithLookupSize), and decoding is a single table copy per code.
package tunstall
