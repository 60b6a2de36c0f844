// Copyright 2025 Primer ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides dense float32 tensors for the primer library.
//
// # Overview
//
// Tensors are the fundamental data structure in primer. This package
// provides:
//   - Dense float32 tensors with row-major layout
//   - Shape arithmetic and validation
//   - Zero-copy reshaping
//
// # Basic Usage
//
//	import "github.com/primer-ml/primer/tensor"
//
//	func main() {
//	    x := tensor.Zeros(tensor.Shape{2, 3})
//	    y := tensor.Full(tensor.Shape{2, 3}, 1.0)
//
//	    flat := x.Reshape(6) // shares the buffer
//	    _ = flat
//	    _ = y
//	}
package tensor
