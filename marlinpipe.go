package marlinpipe

import (
	"io"

	"github.com/nnuepipe/marlinpipe/internal/batch"
	"github.com/nnuepipe/marlinpipe/internal/bucket"
	"github.com/nnuepipe/marlinpipe/internal/chess"
	"github.com/nnuepipe/marlinpipe/internal/dataset"
	"github.com/nnuepipe/marlinpipe/internal/features"
	"github.com/nnuepipe/marlinpipe/internal/legacytext"
	"github.com/nnuepipe/marlinpipe/internal/packed"
	"github.com/nnuepipe/marlinpipe/internal/quantize"
	"github.com/nnuepipe/marlinpipe/internal/reader"
)

// FeatureSet identifies one of the input feature projectors.
type FeatureSet = features.Set

const (
	Board768          = features.Board768
	HalfKp            = features.HalfKp
	HalfKa            = features.HalfKa
	HmStmBoard192     = features.HmStmBoard192
	PhasedStmBoard384 = features.PhasedStmBoard384
	Ice4              = features.Ice4
)

// BucketScheme identifies one of the board-to-bucket schemes.
type BucketScheme = bucket.Scheme

const (
	NoBucketing      = bucket.NoBucketing
	ModifiedMaterial = bucket.ModifiedMaterial
	PieceCount       = bucket.PieceCount
)

// Board is a decoded chess position.
type Board = chess.Board

// Batch is a filled, feature-projected training batch.
type Batch = batch.Batch

// Reader streams a packed-board dataset into feature-projected batches.
type Reader = reader.Reader

// OpenReader opens path and starts streaming batch_size-entry batches
// projected under set and bucketed under scheme, using the reference
// defaults for buffered generations and decode parallelism.
func OpenReader(path string, batchSize int, set FeatureSet, scheme BucketScheme) (*Reader, error) {
	return reader.New(reader.DefaultConfig(path, batchSize, set, scheme))
}

// PackedSize is the fixed length, in bytes, of one packed board record.
const PackedSize = packed.Size

// PackBoard encodes b plus its training annotations into a 32-byte
// packed record (spec.md §3/§4.A).
func PackBoard(b *Board, eval int16, wdl uint8, extra uint8) [PackedSize]byte {
	return packed.Pack(b, eval, wdl, extra)
}

// ParseFEN parses Forsyth-Edwards Notation into a Board.
func ParseFEN(fen string) (*Board, error) {
	return chess.ParseFEN(fen)
}

// Architecture is a pluggable weights-quantizer variant.
type Architecture = quantize.Architecture

// Board768SingleBucketArchitecture is the single-output-head quantizer
// variant (spec.md §4.G).
func Board768SingleBucketArchitecture() Architecture { return quantize.Board768SingleBucket() }

// HalfKpBucketedArchitecture is the bucketed-output-head quantizer
// variant (spec.md §4.G).
func HalfKpBucketedArchitecture() Architecture { return quantize.HalfKpBucketed() }

// QuantizeWeights parses a weights JSON document and quantizes it under
// arch into the little-endian binary format of spec.md §4.G.
func QuantizeWeights(arch Architecture, weightsJSON []byte) ([]byte, error) {
	params, err := quantize.ParseParams(weightsJSON)
	if err != nil {
		return nil, err
	}
	return quantize.Convert(arch, params)
}

// Interleave merges the packed-board files named by paths into output,
// drawing records with probability proportional to each file's
// remaining count (spec.md §4.H).
func Interleave(paths []string, output string, progress func(written, total uint64)) error {
	return dataset.Interleave(paths, output, dataset.Progress(progress))
}

// ShuffleConfig configures Shuffle.
type ShuffleConfig = dataset.ShuffleConfig

// DefaultShuffleConfig returns a ShuffleConfig with the reference block
// and group sizes.
func DefaultShuffleConfig(input, output string) ShuffleConfig {
	return dataset.DefaultShuffleConfig(input, output)
}

// Shuffle randomizes a packed-board dataset too large to sort in memory
// (spec.md §4.H).
func Shuffle(cfg ShuffleConfig) error {
	return dataset.Shuffle(cfg)
}

// ConvertLegacyText reads "<FEN> | <cp> | <wdl>" lines from r and writes
// packed-board records to w, returning the number of records written
// (spec.md §6's txt_to_data).
func ConvertLegacyText(r io.Reader, w io.Writer) (int, error) {
	return legacytext.Convert(r, w)
}
