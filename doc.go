// Package marlinpipe implements an NNUE-style chess training-data
// pipeline: a 32-byte packed-board codec, a family of sparse input
// feature projectors, a fixed-capacity columnar batch container, a
// parallel streaming batch reader, a JSON-weights quantizer, and
// out-of-core dataset utilities (interleave, shuffle).
//
// Basic usage for streaming training batches:
//
//	r, err := marlinpipe.OpenReader("train.bin", 16384, marlinpipe.Board768, marlinpipe.PieceCount)
//	if err != nil {
//		// ...
//	}
//	defer r.Close()
//	for {
//		b, err := r.ReadBatch()
//		if err != nil {
//			// ...
//		}
//		if b == nil {
//			break // stream exhausted
//		}
//		// feed b.CP(), b.WDL(), b.LaneFeatureIDs(0), ... into training code
//	}
package marlinpipe
