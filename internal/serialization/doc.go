// Package serialization reads and writes tensors in the SafeTensors format,
// the file format the ndindex command takes its operands from.
//
//	Format Structure:
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON object, name -> {dtype, shape, data_offsets}]
//	  [Tensor data: raw little-endian bytes]
//
// Supported dtypes: F32, F64, I32, I64, U8, BOOL.
//
// Example usage:
//
//	err := serialization.WriteSafeTensors("operands.safetensors", map[string]*tensor.RawTensor{
//	    "indices": indices,
//	    "updates": updates,
//	}, nil)
//
//	tensors, metadata, err := serialization.ReadSafeTensorsFile("operands.safetensors")
package serialization
