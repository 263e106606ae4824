package quantize

// Board768SingleBucket is the simplest supported architecture: a single
// feature-transformer plus one output layer, no bucketed output head,
// fusing an optional `fft.*` factorizer table.
func Board768SingleBucket() Architecture {
	return Architecture{
		Name: "board768-single-bucket",
		Header: []HeaderField{
			{Param: "ft.weight", Axis: 0}, // input_dim
			{Param: "ft.weight", Axis: 1}, // hidden_dim
			{Param: "out.weight", Axis: 0}, // output_dim
		},
		Layers: []LayerSpec{
			{Name: "ft.weight", Scale: 255, Width: Int16},
			{Name: "ft.bias", Scale: 255, Width: Int16},
			{Name: "out.weight", Scale: 64, Width: Int8},
			{Name: "out.bias", Scale: 64 * 64, Width: Int32},
		},
		Fusion: &FusionSpec{
			PrimaryWeight:   "ft.weight",
			PrimaryBias:     "ft.bias",
			SecondaryWeight: "fft.weight",
			SecondaryBias:   "fft.bias",
		},
	}
}

// HalfKpBucketed is the bucketed-output-head architecture: a
// feature-transformer, a per-bucket output layer, and a residual
// int-32-scale layer, fusing an optional `v_*`-named factorizer table.
func HalfKpBucketed() Architecture {
	return Architecture{
		Name: "halfkp-bucketed",
		Header: []HeaderField{
			{Param: "ft.weight", Axis: 0}, // input_dim
			{Param: "ft.weight", Axis: 1}, // hidden_dim
			{Param: "out.weight", Axis: 0}, // output_dim (bucket count * 1)
		},
		Layers: []LayerSpec{
			{Name: "ft.weight", Scale: 255, Width: Int16},
			{Name: "ft.bias", Scale: 255, Width: Int16},
			{Name: "out.weight", Scale: 64, Width: Int8},
			{Name: "out.bias", Scale: 64 * 64, Width: Int32},
			{Name: "res_t.weight", Scale: 64, Width: Int8},
			{Name: "res_t.bias", Scale: 64 * 64, Width: Int32},
		},
		Fusion: &FusionSpec{
			PrimaryWeight:   "ft.weight",
			PrimaryBias:     "ft.bias",
			SecondaryWeight: "v_weight",
			SecondaryBias:   "v_bias",
		},
	}
}
