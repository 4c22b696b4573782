// Package session runs ONNX classifiers through the Born inference engine
// and discovers expert models on disk.
//
// A Session wraps a compiled Born onnx.Model and exposes the plain
// float32-in, float32-out contract the dispatcher needs:
//
//	backend, release, err := session.NewBackend(false, 0)
//	defer release()
//	router, err := session.Load("router.onnx", backend, session.DefaultOptions())
//	logits, err := router.Run(pixels)
//
// Discover loads every *.onnx file in a directory and keys it by its
// file name without extension, so "experts/5_23.onnx" becomes "5_23".
package session
