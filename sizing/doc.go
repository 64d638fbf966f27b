// Package sizing estimates payload sizes of nodes before they are encoded.
//
// Compression improves as a node grows: per-channel headers and probability
// tables are amortized over more elements, and prediction residuals shrink on
// denser meshes. Given samples of encoded nodes, Analyze fits several
// bytes-per-element curves and picks the one with the best coefficient of
// determination:
//
//	samples := make([]sizing.Sample, 0, len(results))
//	for _, res := range results {
//	    samples = append(samples, sizing.SampleOf(res))
//	}
//	result, err := sizing.Analyze(samples)
//	...
//	bytes := result.BestFit.EstimateSize(20000) // payload bytes for 20000 faces
//
// An element is a face for indexed nodes and a vertex for point clouds.
// Models fitted offline can be recreated with NewModel.
package sizing
